package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type BallotRepository interface {
	SaveBallot(ctx context.Context, ballot entities.Ballot) (entities.Ballot, error)
	GetBallot(ctx context.Context, ballotID int64) (entities.Ballot, bool, error)
	ListBallots(ctx context.Context, electionID int64) ([]entities.Ballot, error)
	SaveOption(ctx context.Context, option entities.BallotOption) (entities.BallotOption, error)
	GetOption(ctx context.Context, optionID int64) (entities.BallotOption, bool, error)
	ListOptions(ctx context.Context, ballotID int64) ([]entities.BallotOption, error)
}

type AttendeeRepository interface {
	SaveAttendee(ctx context.Context, attendee entities.Attendee) (entities.Attendee, error)
	GetAttendee(ctx context.Context, attendeeID int64) (entities.Attendee, bool, error)
	GetAttendeeByIdentifier(ctx context.Context, electionID int64, identifier string) (entities.Attendee, bool, error)
	ListAttendees(ctx context.Context, electionID int64) ([]entities.Attendee, error)
}

type VoteRepository interface {
	// SaveVotes upserts by (ballot_id, attendee_id), all changes or none.
	// Returned votes carry assigned ids, in input order.
	SaveVotes(ctx context.Context, votes []entities.Vote) ([]entities.Vote, error)
	GetVoteByBallotAttendee(ctx context.Context, ballotID, attendeeID int64) (entities.Vote, bool, error)
	ListVotesByBallot(ctx context.Context, ballotID int64) ([]entities.Vote, error)
}

// ElectionGateView is the projection of the owning election that voting
// decisions need. Quorum carries the current percentage, already computed.
type ElectionGateView struct {
	Status     string
	VotingOpen bool
	IsDemo     bool
	MinQuorum  *decimal.Decimal
	Quorum     decimal.Decimal
}

// ElectionGate projects election lifecycle state from the assembly side.
type ElectionGate interface {
	Gate(ctx context.Context, electionID int64) (ElectionGateView, error)
}
