package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type ElectionStatus string

const (
	ElectionDraft  ElectionStatus = "DRAFT"
	ElectionOpen   ElectionStatus = "OPEN"
	ElectionClosed ElectionStatus = "CLOSED"
)

// Election is one shareholder meeting. Status only ever moves
// DRAFT -> OPEN -> CLOSED. VotingOpen toggles within OPEN but becomes
// terminal once VotingClosedAt is set.
type Election struct {
	ID                int64
	Name              string
	Date              time.Time
	Status            ElectionStatus
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	MinQuorum         *decimal.Decimal
	VotingOpen        bool
	VotingOpenedAt    *time.Time
	VotingOpenedBy    string
	VotingClosedAt    *time.Time
	VotingClosedBy    string
	ClosedAt          *time.Time
	IsDemo            bool
}

// CanTransition reports whether the one-directional status machine allows
// the edge. It does not evaluate quorum gates.
func (e Election) CanTransition(next ElectionStatus) bool {
	switch e.Status {
	case ElectionDraft:
		return next == ElectionOpen
	case ElectionOpen:
		return next == ElectionClosed
	}
	return false
}

// RegistrationWindowOpen reports whether now falls inside the registration
// window. Missing bounds leave that side unbounded.
func (e Election) RegistrationWindowOpen(now time.Time) bool {
	if e.RegistrationStart != nil && now.Before(*e.RegistrationStart) {
		return false
	}
	if e.RegistrationEnd != nil && now.After(*e.RegistrationEnd) {
		return false
	}
	return true
}
