package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	assemblyservice "asamblea/contexts/governance/assembly-service"
	assemblymemory "asamblea/contexts/governance/assembly-service/adapters/memory"
	assemblypg "asamblea/contexts/governance/assembly-service/adapters/postgres"
	"asamblea/contexts/governance/assembly-service/application"
	ballotservice "asamblea/contexts/governance/ballot-service"
	ballotmemory "asamblea/contexts/governance/ballot-service/adapters/memory"
	ballotpg "asamblea/contexts/governance/ballot-service/adapters/postgres"
	"asamblea/internal/platform/auth"
	"asamblea/internal/platform/config"
	"asamblea/internal/platform/db"
	"asamblea/internal/platform/httpserver"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	hub := broadcast.NewHub(logger)

	var (
		postgres       *db.Postgres
		roleStore      identity.ElectionRoleStore
		auditRecorder  audit.Recorder
		auditReader    audit.Reader
		assemblyModule assemblyservice.Module
		ballotModule   ballotservice.Module
	)

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		postgres = pg

		models := assemblypg.Models()
		models = append(models, ballotpg.Models()...)
		models = append(models, db.PlatformModels()...)
		if err := pg.Migrate(models...); err != nil {
			return nil, err
		}

		roleStore = db.NewElectionRoleStore(pg.DB)
		recorder := db.NewAuditRecorder(pg.DB)
		auditRecorder = recorder
		auditReader = recorder
		authorizer := identity.RoleAuthorizer{Roles: roleStore}

		assemblyRepo := assemblypg.NewRepository(pg.DB, logger)
		assemblyModule = assemblyservice.NewModule(assemblyservice.Dependencies{
			Shareholders: assemblyRepo,
			Attendance:   assemblyRepo,
			Proxies:      assemblyRepo,
			Persons:      assemblyRepo,
			Elections:    assemblyRepo,
			Authorizer:   authorizer,
			Audit:        auditRecorder,
			Broadcaster:  hub,
			Clock:        assemblypg.SystemClock{},
			Logger:       logger,
		})

		ballotRepo := ballotpg.NewRepository(pg.DB, logger)
		ballotModule = ballotservice.NewModule(ballotservice.Dependencies{
			Ballots:   ballotRepo,
			Attendees: ballotRepo,
			Votes:     ballotRepo,
			Gate: assemblyGate{
				elections: assemblyModule.Handler.Elections,
				quorum:    assemblyModule.Handler.Quorum,
			},
			Authorizer:  authorizer,
			Audit:       auditRecorder,
			Broadcaster: hub,
			Clock:       ballotpg.SystemClock{},
			Logger:      logger,
		})
	} else {
		logger.Info("no POSTGRES_DSN set, using in-memory storage",
			"event", "bootstrap_memory_storage",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)

		roleStore = identity.NewMemoryRoleStore()
		recorder := audit.NewMemoryRecorder()
		auditRecorder = recorder
		auditReader = recorder
		authorizer := identity.RoleAuthorizer{Roles: roleStore}

		assemblyStore := assemblymemory.NewStore()
		assemblyModule = assemblyservice.NewModule(assemblyservice.Dependencies{
			Shareholders: assemblyStore,
			Attendance:   assemblyStore,
			Proxies:      assemblyStore,
			Persons:      assemblyStore,
			Elections:    assemblyStore,
			Authorizer:   authorizer,
			Audit:        auditRecorder,
			Broadcaster:  hub,
			Clock:        assemblyStore,
			Logger:       logger,
		})
		assemblyModule.Store = assemblyStore

		ballotStore := ballotmemory.NewStore()
		ballotModule = ballotservice.NewModule(ballotservice.Dependencies{
			Ballots:   ballotStore,
			Attendees: ballotStore,
			Votes:     ballotStore,
			Gate: assemblyGate{
				elections: assemblyModule.Handler.Elections,
				quorum:    assemblyModule.Handler.Quorum,
			},
			Authorizer:  authorizer,
			Audit:       auditRecorder,
			Broadcaster: hub,
			Clock:       ballotStore,
			Logger:      logger,
		})
		ballotModule.Store = ballotStore
	}

	if cfg.DemoMode {
		seedDemo(context.Background(), assemblyModule, logger)
	}

	server := httpserver.New(httpserver.Options{
		Assembly: assemblyModule,
		Ballots:  ballotModule,
		Tokens:   auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Credentials: auth.Credentials{
			"admin":       {Password: cfg.AdminPassword, Role: identity.RoleAdmin},
			"registrador": {Password: cfg.RegistrarPassword, Role: identity.RoleRegistrar},
			"observador":  {Password: cfg.ObserverPassword, Role: identity.RoleObservador},
		},
		Roles:    roleStore,
		AuditLog: auditReader,
		Hub:      hub,
		Logger:   logger,
		Addr:     normalizeAddr(cfg.HTTPPort),
	})

	return &APIApp{
		server:   server,
		postgres: postgres,
		logger:   logger,
	}, nil
}

// seedDemo provisions a demo election with a small cap table so the API is
// exercisable without any setup. Failures are logged and ignored.
func seedDemo(ctx context.Context, module assemblyservice.Module, logger *slog.Logger) {
	actor := identity.Principal{Username: "system", Role: identity.RoleAdmin}
	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(24 * time.Hour)

	election, err := module.Handler.Elections.Create(ctx, application.CreateElectionCommand{
		Name:              "Asamblea Demo",
		Date:              now,
		RegistrationStart: &start,
		RegistrationEnd:   &end,
		IsDemo:            true,
		Actor:             actor,
	})
	if err != nil {
		logger.Warn("demo election seed failed",
			"event", "bootstrap_demo_seed_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}

	rows := []application.ShareholderCreate{
		{Code: "ACC-001", Name: "Inversiones Andinas S.A.", Document: "0990012345001", Actions: decimal.NewFromInt(5000)},
		{Code: "ACC-002", Name: "Maria Fernanda Paredes", Document: "0912345678", Actions: decimal.NewFromInt(2500)},
		{Code: "ACC-003", Name: "Holding Pacifico C.A.", Document: "0990054321001", Actions: decimal.NewFromInt(1500)},
		{Code: "ACC-004", Name: "Jorge Luis Mendoza", Document: "0923456789", Actions: decimal.NewFromInt(1000)},
	}
	if _, err := module.Handler.Shareholders.Import(ctx, election.ID, rows, actor); err != nil {
		logger.Warn("demo shareholder seed failed",
			"event", "bootstrap_demo_seed_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"election_id", election.ID,
			"error", err.Error(),
		)
		return
	}

	logger.Info("demo election seeded",
		"event", "bootstrap_demo_seeded",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"election_id", election.ID,
	)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
