package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/adapters/memory"
	"asamblea/contexts/governance/ballot-service/domain/entities"
	domainerrors "asamblea/contexts/governance/ballot-service/domain/errors"
	"asamblea/contexts/governance/ballot-service/ports"
	"asamblea/internal/shared/identity"
)

var adminActor = identity.Principal{Username: "admin", Role: identity.RoleAdmin}

// stubGate is a canned election projection.
type stubGate struct {
	view ports.ElectionGateView
	err  error
}

func (g stubGate) Gate(context.Context, int64) (ports.ElectionGateView, error) {
	return g.view, g.err
}

func openGate() stubGate {
	return stubGate{view: ports.ElectionGateView{Status: "OPEN", VotingOpen: true}}
}

type captureBroadcaster struct {
	payloads []any
}

func (b *captureBroadcaster) Broadcast(_ int64, payload any) {
	b.payloads = append(b.payloads, payload)
}

func newBallotService(store *memory.Store, gate ports.ElectionGate, broadcaster *captureBroadcaster) BallotService {
	service := BallotService{
		Ballots:    store,
		Votes:      store,
		Gate:       gate,
		Authorizer: identity.RoleAuthorizer{},
		Clock:      store,
	}
	if broadcaster != nil {
		service.Broadcaster = broadcaster
	}
	return service
}

func seedOpenBallot(t *testing.T, service BallotService, electionID int64, title string) entities.Ballot {
	t.Helper()
	ballot, err := service.Create(context.Background(), electionID, title, adminActor)
	if err != nil {
		t.Fatalf("seed ballot: %v", err)
	}
	return ballot
}

func seedOption(t *testing.T, service BallotService, ballotID int64, text string) entities.BallotOption {
	t.Helper()
	option, err := service.CreateOption(context.Background(), ballotID, text, adminActor)
	if err != nil {
		t.Fatalf("seed option: %v", err)
	}
	return option
}

func TestCreateBallotAssignsOrder(t *testing.T) {
	store := memory.NewStore()
	service := newBallotService(store, openGate(), nil)

	first := seedOpenBallot(t, service, 1, "Punto uno")
	second := seedOpenBallot(t, service, 1, "Punto dos")
	if first.Order != 1 || second.Order != 2 {
		t.Fatalf("orders must be sequential, got %d and %d", first.Order, second.Order)
	}
	if first.Status != entities.BallotOpen {
		t.Fatalf("new ballots start OPEN, got %s", first.Status)
	}

	// Another election keeps its own sequence.
	other := seedOpenBallot(t, service, 2, "Otro punto")
	if other.Order != 1 {
		t.Fatalf("order must be per election, got %d", other.Order)
	}
}

func TestCreateBallotValidation(t *testing.T) {
	store := memory.NewStore()
	service := newBallotService(store, openGate(), nil)

	if _, err := service.Create(context.Background(), 1, "   ", adminActor); !errors.Is(err, domainerrors.ErrInvalidBallotData) {
		t.Fatalf("blank title must fail, got %v", err)
	}

	observer := identity.Principal{Username: "mirador", Role: identity.RoleObservador}
	if _, err := service.Create(context.Background(), 1, "Punto", observer); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("observer must not create ballots, got %v", err)
	}

	missing := newBallotService(store, stubGate{err: domainerrors.ErrElectionNotFound}, nil)
	if _, err := missing.Create(context.Background(), 9, "Punto", adminActor); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("gate error must surface, got %v", err)
	}
}

func TestCreateOptionOnClosedBallot(t *testing.T) {
	store := memory.NewStore()
	service := newBallotService(store, openGate(), nil)
	ballot := seedOpenBallot(t, service, 1, "Punto uno")

	if _, err := service.Close(context.Background(), ballot.ID, adminActor); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := service.CreateOption(context.Background(), ballot.ID, "A favor", adminActor); !errors.Is(err, domainerrors.ErrBallotClosed) {
		t.Fatalf("option on closed ballot must fail, got %v", err)
	}
}

func TestBallotCloseReopenCycle(t *testing.T) {
	store := memory.NewStore()
	broadcaster := &captureBroadcaster{}
	service := newBallotService(store, openGate(), broadcaster)
	ballot := seedOpenBallot(t, service, 1, "Punto uno")
	seedOption(t, service, ballot.ID, "A favor")

	closed, err := service.Close(context.Background(), ballot.ID, adminActor)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != entities.BallotClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
	if len(broadcaster.payloads) != 1 {
		t.Fatalf("close must broadcast the tally once, got %d payloads", len(broadcaster.payloads))
	}
	if _, err := service.Close(context.Background(), ballot.ID, adminActor); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("double close must fail, got %v", err)
	}

	reopened, err := service.Reopen(context.Background(), ballot.ID, adminActor)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Status != entities.BallotOpen {
		t.Fatalf("expected OPEN, got %s", reopened.Status)
	}
	if len(broadcaster.payloads) != 1 {
		t.Fatalf("reopen must not broadcast, got %d payloads", len(broadcaster.payloads))
	}
	if _, err := service.Reopen(context.Background(), ballot.ID, adminActor); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("reopening an open ballot must fail, got %v", err)
	}
}

func TestResultsIncludeZeroVoteOptions(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	contra := seedOption(t, ballots, ballot.ID, "En contra")

	attendee, err := store.SaveAttendee(context.Background(), entities.Attendee{
		ElectionID: 1,
		Identifier: "ACC-001",
		Accionista: "Uno",
		Acciones:   decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("seed attendee: %v", err)
	}
	votes := newVoteService(store, gate, nil)
	if _, err := votes.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: adminActor,
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	results, err := ballots.Results(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both options in results, got %d", len(results))
	}
	if results[0].OptionID != favor.ID || results[0].Count != 1 || !results[0].Weight.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected tally for voted option: %+v", results[0])
	}
	if results[1].OptionID != contra.ID || results[1].Count != 0 || !results[1].Weight.IsZero() {
		t.Fatalf("zero-vote option must appear with zeroes: %+v", results[1])
	}
}
