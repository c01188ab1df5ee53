package entities

import "github.com/shopspring/decimal"

// Attendee is one voting seat in an election, imported from the
// registration desk. Identifier is unique per election; Acciones is the
// capital weight applied to every vote the seat casts.
type Attendee struct {
	ID            int64
	ElectionID    int64
	Identifier    string
	Accionista    string
	Representante string
	Apoderado     string
	Acciones      decimal.Decimal
}
