package postgresadapter

import (
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/domain/entities"
)

type ballotRow struct {
	ID         int64  `gorm:"primaryKey"`
	ElectionID int64  `gorm:"index;not null"`
	Title      string `gorm:"not null"`
	Order      int    `gorm:"column:position;not null"`
	Status     string `gorm:"not null;default:'OPEN'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ballotRow) TableName() string { return "ballots" }

type ballotOptionRow struct {
	ID       int64  `gorm:"primaryKey"`
	BallotID int64  `gorm:"index;not null"`
	Text     string `gorm:"not null"`
}

func (ballotOptionRow) TableName() string { return "ballot_options" }

type attendeeRow struct {
	ID            int64  `gorm:"primaryKey"`
	ElectionID    int64  `gorm:"index:idx_attendee_ident,unique;not null"`
	Identifier    string `gorm:"index:idx_attendee_ident,unique;not null"`
	Accionista    string `gorm:"not null"`
	Representante string
	Apoderado     string
	Acciones      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (attendeeRow) TableName() string { return "attendees" }

type voteRow struct {
	ID         int64           `gorm:"primaryKey"`
	BallotID   int64           `gorm:"index:idx_vote_key,unique;not null"`
	AttendeeID int64           `gorm:"index:idx_vote_key,unique;not null"`
	OptionID   int64           `gorm:"not null"`
	Weight     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedBy  string
	CreatedAt  time.Time
}

func (voteRow) TableName() string { return "ballot_votes" }

// Models lists every table this adapter owns, for AutoMigrate.
func Models() []any {
	return []any{
		&ballotRow{},
		&ballotOptionRow{},
		&attendeeRow{},
		&voteRow{},
	}
}

func (r ballotRow) toEntity() entities.Ballot {
	return entities.Ballot{
		ID:         r.ID,
		ElectionID: r.ElectionID,
		Title:      r.Title,
		Order:      r.Order,
		Status:     entities.BallotStatus(r.Status),
	}
}

func ballotFromEntity(ballot entities.Ballot) ballotRow {
	return ballotRow{
		ID:         ballot.ID,
		ElectionID: ballot.ElectionID,
		Title:      ballot.Title,
		Order:      ballot.Order,
		Status:     string(ballot.Status),
	}
}

func (r ballotOptionRow) toEntity() entities.BallotOption {
	return entities.BallotOption{
		ID:       r.ID,
		BallotID: r.BallotID,
		Text:     r.Text,
	}
}

func (r attendeeRow) toEntity() entities.Attendee {
	return entities.Attendee{
		ID:            r.ID,
		ElectionID:    r.ElectionID,
		Identifier:    r.Identifier,
		Accionista:    r.Accionista,
		Representante: r.Representante,
		Apoderado:     r.Apoderado,
		Acciones:      r.Acciones,
	}
}

func attendeeFromEntity(attendee entities.Attendee) attendeeRow {
	return attendeeRow{
		ID:            attendee.ID,
		ElectionID:    attendee.ElectionID,
		Identifier:    attendee.Identifier,
		Accionista:    attendee.Accionista,
		Representante: attendee.Representante,
		Apoderado:     attendee.Apoderado,
		Acciones:      attendee.Acciones,
	}
}

func (r voteRow) toEntity() entities.Vote {
	return entities.Vote{
		ID:         r.ID,
		BallotID:   r.BallotID,
		OptionID:   r.OptionID,
		AttendeeID: r.AttendeeID,
		Weight:     r.Weight,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
}
