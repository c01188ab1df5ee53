package errors

import "errors"

var (
	ErrElectionNotFound    = errors.New("election not found")
	ErrShareholderNotFound = errors.New("shareholder not found")
	ErrProxyNotFound       = errors.New("proxy not found")
	ErrPersonNotFound      = errors.New("person not found")

	ErrInvalidAttendanceMode = errors.New("invalid attendance mode")
	ErrAttendanceUnchanged   = errors.New("attendance already in requested state")
	ErrShareholderHasProxy   = errors.New("shareholder has active proxy")

	ErrInvalidTransition = errors.New("invalid election status transition")
	ErrElectionClosed    = errors.New("election is closed")
	ErrVotingClosed      = errors.New("voting window is closed")
	ErrVotingNotStarted  = errors.New("registration has not started")
	ErrQuorumNotMet      = errors.New("quorum not met")

	ErrRegistrationClosed = errors.New("registration window closed")
	ErrForbidden          = errors.New("not authorized")

	ErrInvalidProxyWindow    = errors.New("proxy dates incompatible with election date")
	ErrProxyNotValid         = errors.New("proxy is not valid")
	ErrDuplicateProxyNumDoc  = errors.New("proxy document already registered")
	ErrDuplicateCode         = errors.New("shareholder code already registered")
	ErrInvalidCapital        = errors.New("capital value must be a non-negative number")
	ErrInvalidElectionData   = errors.New("election requires a name and a date")
	ErrInvalidPersonData     = errors.New("person requires a name and a document")
	ErrInvalidShareholderRow = errors.New("shareholder row missing required fields")
)
