package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/contexts/governance/assembly-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/identity"
)

// CreateElectionCommand carries the fields a registrar may set at
// creation time. Status always starts at DRAFT.
type CreateElectionCommand struct {
	Name              string
	Date              time.Time
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	MinQuorum         *decimal.Decimal
	IsDemo            bool
	Actor             identity.Principal
}

// ElectionService owns the DRAFT -> OPEN -> CLOSED status machine and the
// one-shot voting window inside OPEN.
type ElectionService struct {
	Elections  ports.ElectionRepository
	Quorum     QuorumService
	Authorizer identity.Authorizer
	Audit      audit.Recorder
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (s ElectionService) Create(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	allowed, err := s.Authorizer.Can(ctx, cmd.Actor, identity.ActionManageElection, 0)
	if err != nil {
		return entities.Election{}, err
	}
	if !allowed {
		return entities.Election{}, domainerrors.ErrForbidden
	}
	if strings.TrimSpace(cmd.Name) == "" || cmd.Date.IsZero() {
		return entities.Election{}, domainerrors.ErrInvalidElectionData
	}
	if cmd.MinQuorum != nil && (cmd.MinQuorum.IsNegative() || cmd.MinQuorum.GreaterThan(decimal.NewFromInt(1))) {
		return entities.Election{}, domainerrors.ErrInvalidCapital
	}
	election := entities.Election{
		Name:              strings.TrimSpace(cmd.Name),
		Date:              cmd.Date,
		Status:            entities.ElectionDraft,
		RegistrationStart: cmd.RegistrationStart,
		RegistrationEnd:   cmd.RegistrationEnd,
		MinQuorum:         cmd.MinQuorum,
		IsDemo:            cmd.IsDemo,
	}
	return s.Elections.SaveElection(ctx, election)
}

func (s ElectionService) Get(ctx context.Context, electionID int64) (entities.Election, error) {
	election, found, err := s.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !found {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s ElectionService) List(ctx context.Context) ([]entities.Election, error) {
	return s.Elections.ListElections(ctx)
}

// UpdateStatus fires one edge of the status machine. DRAFT may only open,
// OPEN may only close, CLOSED accepts nothing. Opening is quorum-gated
// when the election carries a minimum.
func (s ElectionService) UpdateStatus(ctx context.Context, electionID int64, next entities.ElectionStatus, actor identity.Principal) (entities.Election, error) {
	logger := ResolveLogger(s.Logger)
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionManageElection, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !allowed {
		return entities.Election{}, domainerrors.ErrForbidden
	}

	election, err := s.Get(ctx, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !election.CanTransition(next) {
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}

	if next == entities.ElectionOpen && election.MinQuorum != nil {
		if err := s.requireQuorum(ctx, election); err != nil {
			return entities.Election{}, err
		}
	}

	now := s.now()
	election.Status = next
	if next == entities.ElectionClosed {
		election.ClosedAt = &now
	}

	saved, err := s.Elections.SaveElection(ctx, election)
	if err != nil {
		return entities.Election{}, fmt.Errorf("save election: %w", err)
	}

	if next == entities.ElectionClosed && s.Audit != nil {
		entry := audit.NewEntry(electionID, actor.Username, "election_closed", "")
		entry.At = now
		if err := s.Audit.Record(ctx, entry); err != nil {
			return entities.Election{}, fmt.Errorf("record election close: %w", err)
		}
	}

	logger.Info("election status updated",
		"event", "assembly_election_status_updated",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", electionID,
		"status", string(next),
		"actor", actor.Username,
	)
	return saved, nil
}

// StartVoting opens the one-shot voting window. Calling it while already
// open is a no-op returning current state; calling it after the window was
// closed is a conflict.
func (s ElectionService) StartVoting(ctx context.Context, electionID int64, actor identity.Principal) (entities.Election, error) {
	election, err := s.votingGate(ctx, electionID, actor)
	if err != nil {
		return entities.Election{}, err
	}
	if election.VotingOpen {
		return election, nil
	}
	if election.VotingClosedAt != nil {
		return entities.Election{}, domainerrors.ErrVotingClosed
	}

	now := s.now()
	if !election.IsDemo {
		if election.RegistrationStart != nil && now.Before(*election.RegistrationStart) {
			return entities.Election{}, domainerrors.ErrVotingNotStarted
		}
		if election.MinQuorum != nil {
			if err := s.requireQuorum(ctx, election); err != nil {
				return entities.Election{}, err
			}
		}
	}

	election.VotingOpen = true
	election.VotingOpenedAt = &now
	election.VotingOpenedBy = actor.Username
	saved, err := s.Elections.SaveElection(ctx, election)
	if err != nil {
		return entities.Election{}, fmt.Errorf("save election: %w", err)
	}
	if err := s.record(ctx, electionID, actor, "voting_opened", now); err != nil {
		return entities.Election{}, err
	}

	ResolveLogger(s.Logger).Info("voting opened",
		"event", "assembly_voting_opened",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", electionID,
		"actor", actor.Username,
	)
	return saved, nil
}

// CloseVoting is the symmetric one-shot closer. Once closed the window
// never reopens.
func (s ElectionService) CloseVoting(ctx context.Context, electionID int64, actor identity.Principal) (entities.Election, error) {
	election, err := s.votingGate(ctx, electionID, actor)
	if err != nil {
		return entities.Election{}, err
	}
	if election.VotingClosedAt != nil {
		return entities.Election{}, domainerrors.ErrVotingClosed
	}
	if !election.VotingOpen {
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}

	now := s.now()
	election.VotingOpen = false
	election.VotingClosedAt = &now
	election.VotingClosedBy = actor.Username
	saved, err := s.Elections.SaveElection(ctx, election)
	if err != nil {
		return entities.Election{}, fmt.Errorf("save election: %w", err)
	}
	if err := s.record(ctx, electionID, actor, "voting_closed", now); err != nil {
		return entities.Election{}, err
	}

	ResolveLogger(s.Logger).Info("voting closed",
		"event", "assembly_voting_closed",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", electionID,
		"actor", actor.Username,
	)
	return saved, nil
}

func (s ElectionService) votingGate(ctx context.Context, electionID int64, actor identity.Principal) (entities.Election, error) {
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionOpenVoting, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !allowed {
		return entities.Election{}, domainerrors.ErrForbidden
	}
	election, err := s.Get(ctx, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	switch election.Status {
	case entities.ElectionOpen:
		return election, nil
	case entities.ElectionClosed:
		return entities.Election{}, domainerrors.ErrElectionClosed
	default:
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}
}

func (s ElectionService) requireQuorum(ctx context.Context, election entities.Election) error {
	summary, err := s.Quorum.Summary(ctx, election.ID)
	if err != nil {
		return err
	}
	if !summary.Meets(*election.MinQuorum) {
		return domainerrors.ErrQuorumNotMet
	}
	return nil
}

func (s ElectionService) record(ctx context.Context, electionID int64, actor identity.Principal, action string, at time.Time) error {
	if s.Audit == nil {
		return nil
	}
	entry := audit.NewEntry(electionID, actor.Username, action, "")
	entry.At = at
	if err := s.Audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

func (s ElectionService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
