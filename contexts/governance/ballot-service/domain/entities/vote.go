package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vote is one attendee's choice on one ballot. The (BallotID, AttendeeID)
// pair is unique; re-voting replaces the option and re-snapshots the
// weight from the attendee's current acciones.
type Vote struct {
	ID         int64
	BallotID   int64
	OptionID   int64
	AttendeeID int64
	Weight     decimal.Decimal
	CreatedBy  string
	CreatedAt  time.Time
}
