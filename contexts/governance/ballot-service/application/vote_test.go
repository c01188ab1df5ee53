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

func newVoteService(store *memory.Store, gate ports.ElectionGate, broadcaster *captureBroadcaster) VoteService {
	service := VoteService{
		Ballots:    store,
		Attendees:  store,
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

func seedAttendee(t *testing.T, store *memory.Store, electionID int64, identifier string, acciones int64) entities.Attendee {
	t.Helper()
	attendee, err := store.SaveAttendee(context.Background(), entities.Attendee{
		ElectionID: electionID,
		Identifier: identifier,
		Accionista: "Accionista " + identifier,
		Acciones:   decimal.NewFromInt(acciones),
	})
	if err != nil {
		t.Fatalf("seed attendee: %v", err)
	}
	return attendee
}

func TestCastVoteUpsertsByAttendee(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	contra := seedOption(t, ballots, ballot.ID, "En contra")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)

	service := newVoteService(store, gate, nil)
	first, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: adminActor,
	})
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	// A re-vote replaces the option and re-snapshots the weight.
	attendee.Acciones = decimal.NewFromInt(250)
	if _, err := store.SaveAttendee(context.Background(), attendee); err != nil {
		t.Fatalf("update attendee: %v", err)
	}
	second, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: contra.ID, AttendeeID: attendee.ID, Actor: adminActor,
	})
	if err != nil {
		t.Fatalf("re-vote failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-vote must keep the vote id, got %d and %d", first.ID, second.ID)
	}
	if second.OptionID != contra.ID || !second.Weight.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("re-vote must replace option and weight: %+v", second)
	}

	all, err := store.ListVotesByBallot(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("one attendee means one vote, got %d", len(all))
	}
}

func TestCastVoteElectionGates(t *testing.T) {
	store := memory.NewStore()
	ballots := newBallotService(store, openGate(), nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)

	cmd := CastVoteCommand{BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: adminActor}

	cases := []struct {
		name string
		view ports.ElectionGateView
		want error
	}{
		{"election not open", ports.ElectionGateView{Status: "DRAFT"}, domainerrors.ErrElectionNotOpen},
		{"voting not open", ports.ElectionGateView{Status: "OPEN"}, domainerrors.ErrVotingNotOpen},
		{
			"quorum not met",
			ports.ElectionGateView{
				Status:     "OPEN",
				VotingOpen: true,
				MinQuorum:  decimalPtr("0.5"),
				Quorum:     decimal.RequireFromString("0.25"),
			},
			domainerrors.ErrQuorumNotMet,
		},
	}
	for _, tc := range cases {
		service := newVoteService(store, stubGate{view: tc.view}, nil)
		if _, err := service.Cast(context.Background(), cmd); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCastVoteDemoBypassesGates(t *testing.T) {
	store := memory.NewStore()
	demo := stubGate{view: ports.ElectionGateView{Status: "DRAFT", IsDemo: true}}
	ballots := newBallotService(store, demo, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto demo")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)

	service := newVoteService(store, demo, nil)
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: adminActor,
	}); err != nil {
		t.Fatalf("demo election must accept votes regardless of gates: %v", err)
	}
}

func TestCastVoteMismatches(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	other := seedOpenBallot(t, ballots, 1, "Punto dos")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	otherOption := seedOption(t, ballots, other.ID, "A favor")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)
	foreign := seedAttendee(t, store, 2, "ACC-XX", 100)

	service := newVoteService(store, gate, nil)
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: otherOption.ID, AttendeeID: attendee.ID, Actor: adminActor,
	}); !errors.Is(err, domainerrors.ErrOptionMismatch) {
		t.Fatalf("foreign option must fail, got %v", err)
	}
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: foreign.ID, Actor: adminActor,
	}); !errors.Is(err, domainerrors.ErrAttendeeMismatch) {
		t.Fatalf("foreign attendee must fail, got %v", err)
	}
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: 99, Actor: adminActor,
	}); !errors.Is(err, domainerrors.ErrAttendeeNotFound) {
		t.Fatalf("unknown attendee must fail, got %v", err)
	}
}

func TestCastVoteClosedBallot(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)
	if _, err := ballots.Close(context.Background(), ballot.ID, adminActor); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	service := newVoteService(store, gate, nil)
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: adminActor,
	}); !errors.Is(err, domainerrors.ErrBallotClosed) {
		t.Fatalf("closed ballot must reject votes, got %v", err)
	}
}

func TestCastAllVotesOnceForEveryAttendee(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	broadcaster := &captureBroadcaster{}
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	seedAttendee(t, store, 1, "ACC-001", 100)
	seedAttendee(t, store, 1, "ACC-002", 200)
	seedAttendee(t, store, 2, "ACC-XX", 999)

	service := newVoteService(store, gate, broadcaster)
	count, err := service.CastAll(context.Background(), ballot.ID, favor.ID, adminActor)
	if err != nil {
		t.Fatalf("cast all failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected votes for the election's 2 attendees, got %d", count)
	}
	if len(broadcaster.payloads) != 1 {
		t.Fatalf("batch must broadcast once, got %d payloads", len(broadcaster.payloads))
	}

	results, err := ballots.Results(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results[0].Count != 2 || !results[0].Weight.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected tally after batch: %+v", results[0])
	}
}

func TestCastAllWithoutAttendees(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	broadcaster := &captureBroadcaster{}
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")

	service := newVoteService(store, gate, broadcaster)
	count, err := service.CastAll(context.Background(), ballot.ID, favor.ID, adminActor)
	if err != nil {
		t.Fatalf("cast all failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero votes, got %d", count)
	}
	if len(broadcaster.payloads) != 0 {
		t.Fatalf("empty batch must not broadcast, got %d payloads", len(broadcaster.payloads))
	}
}

func TestCastVoteForbiddenRole(t *testing.T) {
	store := memory.NewStore()
	gate := openGate()
	ballots := newBallotService(store, gate, nil)
	ballot := seedOpenBallot(t, ballots, 1, "Punto uno")
	favor := seedOption(t, ballots, ballot.ID, "A favor")
	attendee := seedAttendee(t, store, 1, "ACC-001", 100)

	service := newVoteService(store, gate, nil)
	registrar := identity.Principal{Username: "mesa1", Role: identity.RoleRegistrar}
	if _, err := service.Cast(context.Background(), CastVoteCommand{
		BallotID: ballot.ID, OptionID: favor.ID, AttendeeID: attendee.ID, Actor: registrar,
	}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("registrar without a VOTE grant must not vote, got %v", err)
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
