package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/adapters/memory"
	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/identity"
)

func TestElectionStatusMachine(t *testing.T) {
	store := memory.NewStore()
	service := newElectionService(store, nil)

	election, err := service.Create(context.Background(), CreateElectionCommand{
		Name:  "Junta General",
		Date:  time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		Actor: adminActor,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if election.Status != entities.ElectionDraft {
		t.Fatalf("new election must start DRAFT, got %s", election.Status)
	}

	if _, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionClosed, adminActor); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("DRAFT -> CLOSED must be rejected, got %v", err)
	}

	opened, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionOpen, adminActor)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened.Status != entities.ElectionOpen {
		t.Fatalf("expected OPEN, got %s", opened.Status)
	}

	closed, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionClosed, adminActor)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != entities.ElectionClosed || closed.ClosedAt == nil {
		t.Fatalf("close must stamp closed_at, got %+v", closed)
	}

	if _, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionOpen, adminActor); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("CLOSED must be terminal, got %v", err)
	}
}

func TestOpenElectionQuorumGate(t *testing.T) {
	store := memory.NewStore()
	service := newElectionService(store, nil)

	min := decimal.RequireFromString("0.5")
	election, err := service.Create(context.Background(), CreateElectionCommand{
		Name:      "Junta con quorum",
		Date:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		MinQuorum: &min,
		Actor:     adminActor,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	seedShareholder(t, store, "ACC-001", 100)

	if _, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionOpen, adminActor); !errors.Is(err, domainerrors.ErrQuorumNotMet) {
		t.Fatalf("open below minimum must fail, got %v", err)
	}

	attendance := newAttendanceService(store, nil)
	if _, err := attendance.Mark(context.Background(), MarkAttendanceCommand{
		ElectionID: election.ID,
		Code:       "ACC-001",
		Mode:       entities.ModePresencial,
		Actor:      adminActor,
	}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	if _, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionOpen, adminActor); err != nil {
		t.Fatalf("open at full quorum failed: %v", err)
	}
}

func TestVotingWindowOneShot(t *testing.T) {
	store := memory.NewStore()
	service := newElectionService(store, nil)
	election := seedElection(t, store, nil)

	opened, err := service.StartVoting(context.Background(), election.ID, adminActor)
	if err != nil {
		t.Fatalf("start voting failed: %v", err)
	}
	if !opened.VotingOpen || opened.VotingOpenedAt == nil || opened.VotingOpenedBy != "admin" {
		t.Fatalf("voting open not stamped: %+v", opened)
	}

	again, err := service.StartVoting(context.Background(), election.ID, adminActor)
	if err != nil {
		t.Fatalf("repeated start must be a no-op, got %v", err)
	}
	if !again.VotingOpen {
		t.Fatalf("repeated start lost the open window")
	}

	closed, err := service.CloseVoting(context.Background(), election.ID, adminActor)
	if err != nil {
		t.Fatalf("close voting failed: %v", err)
	}
	if closed.VotingOpen || closed.VotingClosedAt == nil {
		t.Fatalf("voting close not stamped: %+v", closed)
	}

	if _, err := service.StartVoting(context.Background(), election.ID, adminActor); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("reopening a closed window must fail, got %v", err)
	}
	if _, err := service.CloseVoting(context.Background(), election.ID, adminActor); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("double close must fail, got %v", err)
	}
}

func TestStartVotingRequiresOpenElection(t *testing.T) {
	store := memory.NewStore()
	service := newElectionService(store, nil)
	election := seedElection(t, store, func(e *entities.Election) {
		e.Status = entities.ElectionDraft
	})

	if _, err := service.StartVoting(context.Background(), election.ID, adminActor); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on DRAFT, got %v", err)
	}
}

func TestStartVotingGatesSkippedForDemo(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, time.March, 12, 8, 0, 0, 0, time.UTC)
	store.NowFunc = func() time.Time { return now }
	service := newElectionService(store, nil)

	future := now.Add(2 * time.Hour)
	min := decimal.RequireFromString("0.5")
	election := seedElection(t, store, func(e *entities.Election) {
		e.RegistrationStart = &future
		e.MinQuorum = &min
		e.IsDemo = true
	})
	seedShareholder(t, store, "ACC-001", 100)

	if _, err := service.StartVoting(context.Background(), election.ID, adminActor); err != nil {
		t.Fatalf("demo election must skip voting gates, got %v", err)
	}

	regular := seedElection(t, store, func(e *entities.Election) {
		e.RegistrationStart = &future
	})
	if _, err := service.StartVoting(context.Background(), regular.ID, adminActor); !errors.Is(err, domainerrors.ErrVotingNotStarted) {
		t.Fatalf("expected ErrVotingNotStarted before registration, got %v", err)
	}
}

func TestCreateElectionValidation(t *testing.T) {
	store := memory.NewStore()
	service := newElectionService(store, nil)

	if _, err := service.Create(context.Background(), CreateElectionCommand{
		Name:  "  ",
		Date:  time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		Actor: adminActor,
	}); !errors.Is(err, domainerrors.ErrInvalidElectionData) {
		t.Fatalf("blank name must be rejected, got %v", err)
	}

	tooHigh := decimal.RequireFromString("1.5")
	if _, err := service.Create(context.Background(), CreateElectionCommand{
		Name:      "Junta",
		Date:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		MinQuorum: &tooHigh,
		Actor:     adminActor,
	}); !errors.Is(err, domainerrors.ErrInvalidCapital) {
		t.Fatalf("quorum above 1 must be rejected, got %v", err)
	}

	plain := identity.Principal{Username: "alguien", Role: identity.RoleObservador}
	if _, err := service.Create(context.Background(), CreateElectionCommand{
		Name:  "Junta",
		Date:  time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		Actor: plain,
	}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("observer must not create elections, got %v", err)
	}
}

func TestCloseElectionWritesAudit(t *testing.T) {
	store := memory.NewStore()
	recorder := audit.NewMemoryRecorder()
	service := newElectionService(store, recorder)
	election := seedElection(t, store, nil)

	if _, err := service.UpdateStatus(context.Background(), election.ID, entities.ElectionClosed, adminActor); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	entries, err := recorder.List(context.Background(), election.ID)
	if err != nil {
		t.Fatalf("list audit failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "election_closed" {
		t.Fatalf("expected one election_closed entry, got %+v", entries)
	}
}

func newElectionService(store *memory.Store, recorder audit.Recorder) ElectionService {
	return ElectionService{
		Elections:  store,
		Quorum:     newQuorumService(store),
		Authorizer: identity.RoleAuthorizer{},
		Audit:      recorder,
		Clock:      store,
	}
}
