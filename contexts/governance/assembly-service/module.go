package assemblyservice

import (
	"log/slog"

	httpadapter "asamblea/contexts/governance/assembly-service/adapters/http"
	"asamblea/contexts/governance/assembly-service/adapters/memory"
	"asamblea/contexts/governance/assembly-service/application"
	"asamblea/contexts/governance/assembly-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Shareholders ports.ShareholderRepository
	Attendance   ports.AttendanceRepository
	Proxies      ports.ProxyRepository
	Persons      ports.PersonRepository
	Elections    ports.ElectionRepository
	Authorizer   identity.Authorizer
	Audit        audit.Recorder
	Broadcaster  broadcast.Broadcaster
	Clock        ports.Clock
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	quorumService := application.QuorumService{
		Shareholders: deps.Shareholders,
		Attendance:   deps.Attendance,
		Proxies:      deps.Proxies,
		Persons:      deps.Persons,
		Clock:        deps.Clock,
	}
	electionService := application.ElectionService{
		Elections:  deps.Elections,
		Quorum:     quorumService,
		Authorizer: deps.Authorizer,
		Audit:      deps.Audit,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	attendanceService := application.AttendanceService{
		Shareholders: deps.Shareholders,
		Attendance:   deps.Attendance,
		Proxies:      deps.Proxies,
		Elections:    deps.Elections,
		Quorum:       quorumService,
		Authorizer:   deps.Authorizer,
		Broadcaster:  deps.Broadcaster,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	proxyService := application.ProxyService{
		Proxies:      deps.Proxies,
		Persons:      deps.Persons,
		Shareholders: deps.Shareholders,
		Elections:    deps.Elections,
		Quorum:       quorumService,
		Authorizer:   deps.Authorizer,
		Audit:        deps.Audit,
		Broadcaster:  deps.Broadcaster,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	shareholderService := application.ShareholderService{
		Shareholders: deps.Shareholders,
		Authorizer:   deps.Authorizer,
		Audit:        deps.Audit,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections:    electionService,
			Attendance:   attendanceService,
			Proxies:      proxyService,
			Shareholders: shareholderService,
			Quorum:       quorumService,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(authorizer identity.Authorizer, broadcaster broadcast.Broadcaster, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Shareholders: store,
		Attendance:   store,
		Proxies:      store,
		Persons:      store,
		Elections:    store,
		Authorizer:   authorizer,
		Audit:        audit.NewMemoryRecorder(),
		Broadcaster:  broadcaster,
		Clock:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
