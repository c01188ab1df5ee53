package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"asamblea/contexts/governance/ballot-service/domain/entities"
	domainerrors "asamblea/contexts/governance/ballot-service/domain/errors"
	"asamblea/contexts/governance/ballot-service/domain/services"
	"asamblea/contexts/governance/ballot-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

// BallotWithOptions is the read shape for ballot listings.
type BallotWithOptions struct {
	Ballot  entities.Ballot
	Options []entities.BallotOption
}

// BallotService owns ballot lifecycle and tallies. Votes are cast through
// VoteService; this service only reads them for results.
type BallotService struct {
	Ballots     ports.BallotRepository
	Votes       ports.VoteRepository
	Gate        ports.ElectionGate
	Authorizer  identity.Authorizer
	Audit       audit.Recorder
	Broadcaster broadcast.Broadcaster
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Create appends a ballot to the election's agenda. Order is the next
// free slot, starting at 1.
func (s BallotService) Create(ctx context.Context, electionID int64, title string, actor identity.Principal) (entities.Ballot, error) {
	if err := s.manageGate(ctx, electionID, actor); err != nil {
		return entities.Ballot{}, err
	}
	if strings.TrimSpace(title) == "" {
		return entities.Ballot{}, domainerrors.ErrInvalidBallotData
	}
	if _, err := s.Gate.Gate(ctx, electionID); err != nil {
		return entities.Ballot{}, err
	}
	existing, err := s.Ballots.ListBallots(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}
	ballot := entities.Ballot{
		ElectionID: electionID,
		Title:      strings.TrimSpace(title),
		Order:      len(existing) + 1,
		Status:     entities.BallotOpen,
	}
	saved, err := s.Ballots.SaveBallot(ctx, ballot)
	if err != nil {
		return entities.Ballot{}, fmt.Errorf("save ballot: %w", err)
	}
	ResolveLogger(s.Logger).Info("ballot created",
		"event", "ballot_created",
		"module", "governance/ballot-service",
		"layer", "application",
		"election_id", electionID,
		"ballot_id", saved.ID,
		"order", saved.Order,
	)
	return saved, nil
}

func (s BallotService) List(ctx context.Context, electionID int64) ([]BallotWithOptions, error) {
	ballots, err := s.Ballots.ListBallots(ctx, electionID)
	if err != nil {
		return nil, err
	}
	out := make([]BallotWithOptions, 0, len(ballots))
	for _, ballot := range ballots {
		options, err := s.Ballots.ListOptions(ctx, ballot.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, BallotWithOptions{Ballot: ballot, Options: options})
	}
	return out, nil
}

// CreateOption adds a choice to an open ballot.
func (s BallotService) CreateOption(ctx context.Context, ballotID int64, text string, actor identity.Principal) (entities.BallotOption, error) {
	ballot, err := s.load(ctx, ballotID)
	if err != nil {
		return entities.BallotOption{}, err
	}
	if err := s.manageGate(ctx, ballot.ElectionID, actor); err != nil {
		return entities.BallotOption{}, err
	}
	if strings.TrimSpace(text) == "" {
		return entities.BallotOption{}, domainerrors.ErrInvalidBallotData
	}
	if ballot.Status != entities.BallotOpen {
		return entities.BallotOption{}, domainerrors.ErrBallotClosed
	}
	saved, err := s.Ballots.SaveOption(ctx, entities.BallotOption{
		BallotID: ballotID,
		Text:     strings.TrimSpace(text),
	})
	if err != nil {
		return entities.BallotOption{}, fmt.Errorf("save ballot option: %w", err)
	}
	return saved, nil
}

// Close stops voting on the ballot and broadcasts the final tally.
func (s BallotService) Close(ctx context.Context, ballotID int64, actor identity.Principal) (entities.Ballot, error) {
	ballot, err := s.transition(ctx, ballotID, entities.BallotOpen, entities.BallotClosed, actor, "ballot_closed")
	if err != nil {
		return entities.Ballot{}, err
	}
	s.notifyResults(ctx, ballot)
	return ballot, nil
}

// Reopen reverses a close so a mis-closed ballot can continue. No
// broadcast: observers learn about it from the next vote.
func (s BallotService) Reopen(ctx context.Context, ballotID int64, actor identity.Principal) (entities.Ballot, error) {
	return s.transition(ctx, ballotID, entities.BallotClosed, entities.BallotOpen, actor, "ballot_reopened")
}

// Results tallies the ballot. Options with no votes appear with zeroes.
func (s BallotService) Results(ctx context.Context, ballotID int64) ([]services.OptionResult, error) {
	ballot, err := s.load(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	options, err := s.Ballots.ListOptions(ctx, ballot.ID)
	if err != nil {
		return nil, err
	}
	votes, err := s.Votes.ListVotesByBallot(ctx, ballot.ID)
	if err != nil {
		return nil, err
	}
	return services.ComputeResults(options, votes), nil
}

func (s BallotService) transition(
	ctx context.Context,
	ballotID int64,
	from entities.BallotStatus,
	to entities.BallotStatus,
	actor identity.Principal,
	action string,
) (entities.Ballot, error) {
	ballot, err := s.load(ctx, ballotID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if err := s.manageGate(ctx, ballot.ElectionID, actor); err != nil {
		return entities.Ballot{}, err
	}
	if ballot.Status != from {
		return entities.Ballot{}, domainerrors.ErrInvalidTransition
	}
	ballot.Status = to
	saved, err := s.Ballots.SaveBallot(ctx, ballot)
	if err != nil {
		return entities.Ballot{}, fmt.Errorf("save ballot: %w", err)
	}
	if s.Audit != nil {
		entry := audit.NewEntry(ballot.ElectionID, actor.Username, action, fmt.Sprintf("ballot %d (%s)", ballot.ID, ballot.Title))
		entry.At = s.now()
		if err := s.Audit.Record(ctx, entry); err != nil {
			return entities.Ballot{}, fmt.Errorf("record %s: %w", action, err)
		}
	}
	ResolveLogger(s.Logger).Info("ballot status changed",
		"event", "ballot_status_changed",
		"module", "governance/ballot-service",
		"layer", "application",
		"election_id", ballot.ElectionID,
		"ballot_id", ballot.ID,
		"status", string(to),
		"actor", actor.Username,
	)
	return saved, nil
}

func (s BallotService) manageGate(ctx context.Context, electionID int64, actor identity.Principal) error {
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionManageElection, electionID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (s BallotService) load(ctx context.Context, ballotID int64) (entities.Ballot, error) {
	ballot, found, err := s.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !found {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

// notifyResults pushes the current tally. Broadcast failures stay inside
// the hub.
func (s BallotService) notifyResults(ctx context.Context, ballot entities.Ballot) {
	if s.Broadcaster == nil {
		return
	}
	results, err := s.Results(ctx, ballot.ID)
	if err != nil {
		ResolveLogger(s.Logger).Warn("results for broadcast failed",
			"event", "ballot_broadcast_results_failed",
			"module", "governance/ballot-service",
			"layer", "application",
			"ballot_id", ballot.ID,
			"error", err.Error(),
		)
		return
	}
	s.Broadcaster.Broadcast(ballot.ElectionID, map[string]any{
		"ballot": map[string]any{
			"id":      ballot.ID,
			"title":   ballot.Title,
			"status":  string(ballot.Status),
			"results": results,
		},
	})
}

func (s BallotService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
