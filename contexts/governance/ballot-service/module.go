package ballotservice

import (
	"log/slog"

	httpadapter "asamblea/contexts/governance/ballot-service/adapters/http"
	"asamblea/contexts/governance/ballot-service/adapters/memory"
	"asamblea/contexts/governance/ballot-service/application"
	"asamblea/contexts/governance/ballot-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ballots     ports.BallotRepository
	Attendees   ports.AttendeeRepository
	Votes       ports.VoteRepository
	Gate        ports.ElectionGate
	Authorizer  identity.Authorizer
	Audit       audit.Recorder
	Broadcaster broadcast.Broadcaster
	Clock       ports.Clock
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ballotService := application.BallotService{
		Ballots:     deps.Ballots,
		Votes:       deps.Votes,
		Gate:        deps.Gate,
		Authorizer:  deps.Authorizer,
		Audit:       deps.Audit,
		Broadcaster: deps.Broadcaster,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	voteService := application.VoteService{
		Ballots:     deps.Ballots,
		Attendees:   deps.Attendees,
		Votes:       deps.Votes,
		Gate:        deps.Gate,
		Authorizer:  deps.Authorizer,
		Broadcaster: deps.Broadcaster,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	attendeeService := application.AttendeeService{
		Attendees:  deps.Attendees,
		Gate:       deps.Gate,
		Authorizer: deps.Authorizer,
		Audit:      deps.Audit,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballots:   ballotService,
			Votes:     voteService,
			Attendees: attendeeService,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(gate ports.ElectionGate, authorizer identity.Authorizer, broadcaster broadcast.Broadcaster, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ballots:     store,
		Attendees:   store,
		Votes:       store,
		Gate:        gate,
		Authorizer:  authorizer,
		Audit:       audit.NewMemoryRecorder(),
		Broadcaster: broadcaster,
		Clock:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
