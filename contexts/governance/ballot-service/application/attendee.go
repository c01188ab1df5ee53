package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/domain/entities"
	domainerrors "asamblea/contexts/governance/ballot-service/domain/errors"
	"asamblea/contexts/governance/ballot-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/identity"
)

// AttendeeCreate is one validated import row. Spreadsheet parsing stays
// in the transport adapter.
type AttendeeCreate struct {
	Identifier    string
	Accionista    string
	Representante string
	Apoderado     string
	Acciones      decimal.Decimal
}

type ImportRowFailure struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

type ImportAttendeesResult struct {
	Imported []entities.Attendee
	Failed   []ImportRowFailure
}

// AttendeeService imports and lists the voting seats of an election.
// Rows are upserted by identifier; malformed rows are reported per index.
type AttendeeService struct {
	Attendees  ports.AttendeeRepository
	Gate       ports.ElectionGate
	Authorizer identity.Authorizer
	Audit      audit.Recorder
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (s AttendeeService) Import(ctx context.Context, electionID int64, rows []AttendeeCreate, actor identity.Principal) (ImportAttendeesResult, error) {
	logger := ResolveLogger(s.Logger)
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionManageElection, electionID)
	if err != nil {
		return ImportAttendeesResult{}, err
	}
	if !allowed {
		return ImportAttendeesResult{}, domainerrors.ErrForbidden
	}
	if _, err := s.Gate.Gate(ctx, electionID); err != nil {
		return ImportAttendeesResult{}, err
	}

	var result ImportAttendeesResult
	for i, row := range rows {
		identifier := strings.TrimSpace(row.Identifier)
		if identifier == "" || strings.TrimSpace(row.Accionista) == "" {
			result.Failed = append(result.Failed, ImportRowFailure{Index: i, Identifier: identifier, Reason: domainerrors.ErrInvalidAttendeeRow.Error()})
			continue
		}
		if row.Acciones.IsNegative() {
			result.Failed = append(result.Failed, ImportRowFailure{Index: i, Identifier: identifier, Reason: domainerrors.ErrNegativeAcciones.Error()})
			continue
		}

		attendee := entities.Attendee{
			ElectionID:    electionID,
			Identifier:    identifier,
			Accionista:    strings.TrimSpace(row.Accionista),
			Representante: strings.TrimSpace(row.Representante),
			Apoderado:     strings.TrimSpace(row.Apoderado),
			Acciones:      row.Acciones,
		}
		if existing, found, err := s.Attendees.GetAttendeeByIdentifier(ctx, electionID, identifier); err != nil {
			return ImportAttendeesResult{}, err
		} else if found {
			attendee.ID = existing.ID
		}

		saved, err := s.Attendees.SaveAttendee(ctx, attendee)
		if err != nil {
			return ImportAttendeesResult{}, fmt.Errorf("save attendee %s: %w", identifier, err)
		}
		result.Imported = append(result.Imported, saved)
	}

	if s.Audit != nil && len(result.Imported) > 0 {
		entry := audit.NewEntry(electionID, actor.Username, "attendees_imported",
			fmt.Sprintf("%d imported, %d rejected", len(result.Imported), len(result.Failed)))
		if s.Clock != nil {
			entry.At = s.Clock.Now()
		}
		if err := s.Audit.Record(ctx, entry); err != nil {
			return ImportAttendeesResult{}, fmt.Errorf("record attendee import: %w", err)
		}
	}

	logger.Info("attendee import finished",
		"event", "ballot_attendees_imported",
		"module", "governance/ballot-service",
		"layer", "application",
		"election_id", electionID,
		"imported", len(result.Imported),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s AttendeeService) List(ctx context.Context, electionID int64) ([]entities.Attendee, error) {
	return s.Attendees.ListAttendees(ctx, electionID)
}
