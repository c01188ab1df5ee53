package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type PersonType string

const (
	PersonAccionista PersonType = "ACCIONISTA"
	PersonTercero    PersonType = "TERCERO"
)

// Person is a natural person who may act as apoderado. Independent of the
// cap table.
type Person struct {
	ID       int64
	Type     PersonType
	Name     string
	Document string
	Email    string
}

type ProxyStatus string

const (
	ProxyValid   ProxyStatus = "VALID"
	ProxyInvalid ProxyStatus = "INVALID"
	ProxyExpired ProxyStatus = "EXPIRED"
)

// Proxy is a power-of-attorney document scoped to one election. Status
// moves VALID->EXPIRED (date driven) or VALID->INVALID (revocation);
// EXPIRED and INVALID are terminal.
type Proxy struct {
	ID            int64
	ElectionID    int64
	ProxyPersonID int64
	TipoDoc       string
	NumDoc        string
	FechaOtorg    time.Time
	FechaVigencia *time.Time
	PdfURL        string
	Status        ProxyStatus
	Mode          AttendanceMode
	MarkedBy      string
	MarkedAt      time.Time
}

// Present reports whether the proxy-holder currently counts toward quorum.
// A non-VALID proxy is never present, whatever its mode says.
func (p Proxy) Present() bool {
	return p.Status == ProxyValid && p.Mode.Present()
}

// ProxyAssignment links a proxy to one represented shareholder. The weight
// snapshot, captured at assignment time, is what counts toward quorum;
// later edits to the shareholder's actions do not touch it.
type ProxyAssignment struct {
	ID                    int64
	ProxyID               int64
	ShareholderID         int64
	WeightActionsSnapshot decimal.Decimal
	ValidFrom             *time.Time
	ValidUntil            *time.Time
}
