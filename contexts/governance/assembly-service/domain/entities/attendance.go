package entities

import "time"

type AttendanceMode string

const (
	ModePresencial AttendanceMode = "PRESENCIAL"
	ModeVirtual    AttendanceMode = "VIRTUAL"
	ModeAusente    AttendanceMode = "AUSENTE"
)

func (m AttendanceMode) Valid() bool {
	switch m {
	case ModePresencial, ModeVirtual, ModeAusente:
		return true
	}
	return false
}

// Present is derived from the mode. It is never an independently settable
// field; persistence keeps a present column only as a denormalization of
// this rule.
func (m AttendanceMode) Present() bool { return m != ModeAusente }

// Attendance is the single attendance row per (election, shareholder).
type Attendance struct {
	ID            int64
	ElectionID    int64
	ShareholderID int64
	Mode          AttendanceMode
	MarkedBy      string
	MarkedAt      time.Time
	Evidence      string
}

func (a Attendance) Present() bool { return a.Mode.Present() }

// AttendanceHistory is one append-only transition record. Insertion order
// is chronological order.
type AttendanceHistory struct {
	ID           int64
	AttendanceID int64
	FromMode     AttendanceMode
	ToMode       AttendanceMode
	FromPresent  bool
	ToPresent    bool
	ChangedBy    string
	ChangedAt    time.Time
	Reason       string
	IP           string
	UserAgent    string
}
