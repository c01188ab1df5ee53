package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"asamblea/contexts/governance/ballot-service/domain/entities"
	domainerrors "asamblea/contexts/governance/ballot-service/domain/errors"
	"asamblea/contexts/governance/ballot-service/domain/services"
	"asamblea/contexts/governance/ballot-service/ports"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

// CastVoteCommand carries one attendee's choice.
type CastVoteCommand struct {
	BallotID   int64
	OptionID   int64
	AttendeeID int64
	Actor      identity.Principal
}

// VoteService casts votes under the election gates. A re-vote replaces
// the previous option and re-snapshots the weight.
type VoteService struct {
	Ballots     ports.BallotRepository
	Attendees   ports.AttendeeRepository
	Votes       ports.VoteRepository
	Gate        ports.ElectionGate
	Authorizer  identity.Authorizer
	Broadcaster broadcast.Broadcaster
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (s VoteService) Cast(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	ballot, option, err := s.gate(ctx, cmd.BallotID, cmd.OptionID, cmd.Actor)
	if err != nil {
		return entities.Vote{}, err
	}
	attendee, found, err := s.Attendees.GetAttendee(ctx, cmd.AttendeeID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrAttendeeNotFound
	}
	if attendee.ElectionID != ballot.ElectionID {
		return entities.Vote{}, domainerrors.ErrAttendeeMismatch
	}

	saved, err := s.Votes.SaveVotes(ctx, []entities.Vote{{
		BallotID:   ballot.ID,
		OptionID:   option.ID,
		AttendeeID: attendee.ID,
		Weight:     attendee.Acciones,
		CreatedBy:  cmd.Actor.Username,
		CreatedAt:  s.now(),
	}})
	if err != nil {
		return entities.Vote{}, fmt.Errorf("save vote: %w", err)
	}

	ResolveLogger(s.Logger).Info("vote cast",
		"event", "ballot_vote_cast",
		"module", "governance/ballot-service",
		"layer", "application",
		"ballot_id", ballot.ID,
		"option_id", option.ID,
		"attendee_id", attendee.ID,
		"actor", cmd.Actor.Username,
	)
	s.notifyResults(ctx, ballot)
	return saved[0], nil
}

// CastAll applies the same option for every attendee of the election in
// one batch, returning how many votes were written. One broadcast.
func (s VoteService) CastAll(ctx context.Context, ballotID, optionID int64, actor identity.Principal) (int, error) {
	ballot, option, err := s.gate(ctx, ballotID, optionID, actor)
	if err != nil {
		return 0, err
	}
	attendees, err := s.Attendees.ListAttendees(ctx, ballot.ElectionID)
	if err != nil {
		return 0, err
	}
	if len(attendees) == 0 {
		return 0, nil
	}

	now := s.now()
	votes := make([]entities.Vote, 0, len(attendees))
	for _, attendee := range attendees {
		votes = append(votes, entities.Vote{
			BallotID:   ballot.ID,
			OptionID:   option.ID,
			AttendeeID: attendee.ID,
			Weight:     attendee.Acciones,
			CreatedBy:  actor.Username,
			CreatedAt:  now,
		})
	}
	saved, err := s.Votes.SaveVotes(ctx, votes)
	if err != nil {
		return 0, fmt.Errorf("save vote batch: %w", err)
	}

	ResolveLogger(s.Logger).Info("bulk vote cast",
		"event", "ballot_vote_all_cast",
		"module", "governance/ballot-service",
		"layer", "application",
		"ballot_id", ballot.ID,
		"option_id", option.ID,
		"votes", len(saved),
		"actor", actor.Username,
	)
	s.notifyResults(ctx, ballot)
	return len(saved), nil
}

// gate runs the shared preconditions: the actor may vote, the ballot is
// open, the option belongs to it, and the owning election is open with an
// open voting window and quorum when it carries a minimum. Demo elections
// skip the election-level gates.
func (s VoteService) gate(ctx context.Context, ballotID, optionID int64, actor identity.Principal) (entities.Ballot, entities.BallotOption, error) {
	ballot, found, err := s.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return entities.Ballot{}, entities.BallotOption{}, err
	}
	if !found {
		return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrBallotNotFound
	}
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionCastVote, ballot.ElectionID)
	if err != nil {
		return entities.Ballot{}, entities.BallotOption{}, err
	}
	if !allowed {
		return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrForbidden
	}
	if ballot.Status != entities.BallotOpen {
		return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrBallotClosed
	}

	view, err := s.Gate.Gate(ctx, ballot.ElectionID)
	if err != nil {
		return entities.Ballot{}, entities.BallotOption{}, err
	}
	if !view.IsDemo {
		if view.Status != "OPEN" {
			return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrElectionNotOpen
		}
		if !view.VotingOpen {
			return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrVotingNotOpen
		}
		if view.MinQuorum != nil && view.Quorum.LessThan(*view.MinQuorum) {
			return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrQuorumNotMet
		}
	}

	option, found, err := s.Ballots.GetOption(ctx, optionID)
	if err != nil {
		return entities.Ballot{}, entities.BallotOption{}, err
	}
	if !found {
		return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrOptionNotFound
	}
	if option.BallotID != ballot.ID {
		return entities.Ballot{}, entities.BallotOption{}, domainerrors.ErrOptionMismatch
	}
	return ballot, option, nil
}

func (s VoteService) notifyResults(ctx context.Context, ballot entities.Ballot) {
	if s.Broadcaster == nil {
		return
	}
	options, err := s.Ballots.ListOptions(ctx, ballot.ID)
	if err == nil {
		var votes []entities.Vote
		if votes, err = s.Votes.ListVotesByBallot(ctx, ballot.ID); err == nil {
			s.Broadcaster.Broadcast(ballot.ElectionID, map[string]any{
				"ballot": map[string]any{
					"id":      ballot.ID,
					"title":   ballot.Title,
					"status":  string(ballot.Status),
					"results": services.ComputeResults(options, votes),
				},
			})
			return
		}
	}
	ResolveLogger(s.Logger).Warn("results for broadcast failed",
		"event", "ballot_broadcast_results_failed",
		"module", "governance/ballot-service",
		"layer", "application",
		"ballot_id", ballot.ID,
		"error", err.Error(),
	)
}

func (s VoteService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
