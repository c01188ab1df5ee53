package errors

import "errors"

var (
	ErrBallotNotFound   = errors.New("ballot not found")
	ErrOptionNotFound   = errors.New("ballot option not found")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrElectionNotFound = errors.New("election not found")

	ErrBallotClosed      = errors.New("ballot is closed")
	ErrInvalidTransition = errors.New("invalid ballot status transition")
	ErrElectionNotOpen   = errors.New("election is not open")
	ErrVotingNotOpen     = errors.New("voting window is not open")
	ErrQuorumNotMet      = errors.New("quorum has not been met")

	ErrOptionMismatch   = errors.New("option does not belong to ballot")
	ErrAttendeeMismatch = errors.New("attendee does not belong to election")

	ErrInvalidBallotData  = errors.New("invalid ballot data")
	ErrInvalidAttendeeRow = errors.New("invalid attendee row")
	ErrNegativeAcciones   = errors.New("acciones must not be negative")
	ErrForbidden          = errors.New("actor is not allowed to perform this action")
)
