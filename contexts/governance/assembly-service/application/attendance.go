package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"

	"asamblea/contexts/governance/assembly-service/ports"
)

// MarkAttendanceCommand carries one attendance mark request.
type MarkAttendanceCommand struct {
	ElectionID int64
	Code       string
	Mode       entities.AttendanceMode
	Evidence   string
	Reason     string
	Actor      identity.Principal
	IP         string
	UserAgent  string
}

// BulkMarkCommand applies the same mode to many shareholder codes,
// collecting per-code failures instead of aborting the batch.
type BulkMarkCommand struct {
	ElectionID int64
	Codes      []string
	Mode       entities.AttendanceMode
	Evidence   string
	Reason     string
	Actor      identity.Principal
	IP         string
	UserAgent  string
}

type BulkMarkFailure struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type BulkMarkResult struct {
	Updated []AttendanceRow
	Failed  []BulkMarkFailure
}

// AttendanceRow is the per-shareholder payload pushed to observers after
// a successful mark.
type AttendanceRow struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Mode     string    `json:"mode"`
	Present  bool      `json:"present"`
	MarkedBy string    `json:"marked_by"`
	MarkedAt time.Time `json:"marked_at"`
}

// AttendanceService owns per-shareholder attendance state and its
// append-only history.
type AttendanceService struct {
	Shareholders ports.ShareholderRepository
	Attendance   ports.AttendanceRepository
	Proxies      ports.ProxyRepository
	Elections    ports.ElectionRepository
	Quorum       QuorumService
	Authorizer   identity.Authorizer
	Broadcaster  broadcast.Broadcaster
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Mark transitions one shareholder's attendance mode. Re-marking the
// current state is rejected, not silently accepted, and a shareholder
// actively represented by a proxy cannot be sent back to AUSENTE.
func (s AttendanceService) Mark(ctx context.Context, cmd MarkAttendanceCommand) (entities.Attendance, error) {
	logger := ResolveLogger(s.Logger)
	if _, err := s.gate(ctx, cmd.ElectionID, cmd.Actor); err != nil {
		return entities.Attendance{}, err
	}

	change, shareholder, err := s.buildChange(ctx, cmd.ElectionID, cmd.Code, cmd.Mode, cmd.Evidence, cmd.Reason, cmd.Actor, cmd.IP, cmd.UserAgent)
	if err != nil {
		return entities.Attendance{}, err
	}

	saved, err := s.Attendance.SaveAttendanceChanges(ctx, []ports.AttendanceChange{change})
	if err != nil {
		return entities.Attendance{}, fmt.Errorf("save attendance: %w", err)
	}

	logger.Info("attendance marked",
		"event", "assembly_attendance_marked",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", cmd.ElectionID,
		"code", cmd.Code,
		"mode", string(cmd.Mode),
		"actor", cmd.Actor.Username,
	)
	s.notify(ctx, cmd.ElectionID, []AttendanceRow{attendanceRow(saved[0], shareholder)})
	return saved[0], nil
}

// BulkMark applies Mark semantics per code. Successful changes are
// persisted together; failures are reported per code.
func (s AttendanceService) BulkMark(ctx context.Context, cmd BulkMarkCommand) (BulkMarkResult, error) {
	logger := ResolveLogger(s.Logger)
	if _, err := s.gate(ctx, cmd.ElectionID, cmd.Actor); err != nil {
		return BulkMarkResult{}, err
	}

	var result BulkMarkResult
	changes := make([]ports.AttendanceChange, 0, len(cmd.Codes))
	shareholders := make([]entities.Shareholder, 0, len(cmd.Codes))
	// Later duplicates in the same batch must see the modes already queued,
	// so an identical re-mark within one request is still rejected.
	pendingModes := make(map[string]entities.AttendanceMode)

	for _, code := range cmd.Codes {
		if pending, ok := pendingModes[code]; ok && pending == cmd.Mode {
			result.Failed = append(result.Failed, BulkMarkFailure{Code: code, Reason: domainerrors.ErrAttendanceUnchanged.Error()})
			continue
		}
		change, shareholder, err := s.buildChange(ctx, cmd.ElectionID, code, cmd.Mode, cmd.Evidence, cmd.Reason, cmd.Actor, cmd.IP, cmd.UserAgent)
		if err != nil {
			result.Failed = append(result.Failed, BulkMarkFailure{Code: code, Reason: err.Error()})
			continue
		}
		pendingModes[code] = cmd.Mode
		changes = append(changes, change)
		shareholders = append(shareholders, shareholder)
	}

	if len(changes) > 0 {
		saved, err := s.Attendance.SaveAttendanceChanges(ctx, changes)
		if err != nil {
			return BulkMarkResult{}, fmt.Errorf("save attendance batch: %w", err)
		}
		rows := make([]AttendanceRow, 0, len(saved))
		for i, att := range saved {
			rows = append(rows, attendanceRow(att, shareholders[i]))
		}
		result.Updated = rows
		s.notify(ctx, cmd.ElectionID, rows)
	}

	logger.Info("attendance bulk mark finished",
		"event", "assembly_attendance_bulk_marked",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", cmd.ElectionID,
		"requested", len(cmd.Codes),
		"updated", len(result.Updated),
		"failed", len(result.Failed),
	)
	return result, nil
}

// History returns the chronological transition trail for one shareholder.
// A shareholder that was never marked has an empty history, not an error.
func (s AttendanceService) History(ctx context.Context, electionID int64, code string) ([]entities.AttendanceHistory, error) {
	shareholder, found, err := s.Shareholders.GetShareholderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrShareholderNotFound
	}
	attendance, found, err := s.Attendance.GetAttendance(ctx, electionID, shareholder.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []entities.AttendanceHistory{}, nil
	}
	return s.Attendance.ListAttendanceHistory(ctx, attendance.ID)
}

// gate runs the checks shared by every mutating attendance call: the actor
// must hold the attendance action, the election must exist and not be
// closed, and outside the registration window only an admin may proceed.
func (s AttendanceService) gate(ctx context.Context, electionID int64, actor identity.Principal) (entities.Election, error) {
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionMarkAttendance, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !allowed {
		return entities.Election{}, domainerrors.ErrForbidden
	}
	election, found, err := s.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Election{}, err
	}
	if !found {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	if election.Status == entities.ElectionClosed {
		return entities.Election{}, domainerrors.ErrElectionClosed
	}
	if !election.RegistrationWindowOpen(s.now()) && !actor.IsAdmin() {
		return entities.Election{}, domainerrors.ErrRegistrationClosed
	}
	return election, nil
}

func (s AttendanceService) buildChange(
	ctx context.Context,
	electionID int64,
	code string,
	mode entities.AttendanceMode,
	evidence string,
	reason string,
	actor identity.Principal,
	ip string,
	userAgent string,
) (ports.AttendanceChange, entities.Shareholder, error) {
	if !mode.Valid() {
		return ports.AttendanceChange{}, entities.Shareholder{}, domainerrors.ErrInvalidAttendanceMode
	}
	shareholder, found, err := s.Shareholders.GetShareholderByCode(ctx, code)
	if err != nil {
		return ports.AttendanceChange{}, entities.Shareholder{}, err
	}
	if !found {
		return ports.AttendanceChange{}, entities.Shareholder{}, domainerrors.ErrShareholderNotFound
	}

	if mode == entities.ModeAusente {
		active, err := s.Proxies.HasActiveProxy(ctx, electionID, shareholder.ID)
		if err != nil {
			return ports.AttendanceChange{}, entities.Shareholder{}, err
		}
		if active {
			return ports.AttendanceChange{}, entities.Shareholder{}, domainerrors.ErrShareholderHasProxy
		}
	}

	attendance, found, err := s.Attendance.GetAttendance(ctx, electionID, shareholder.ID)
	if err != nil {
		return ports.AttendanceChange{}, entities.Shareholder{}, err
	}
	if !found {
		attendance = entities.Attendance{
			ElectionID:    electionID,
			ShareholderID: shareholder.ID,
			Mode:          entities.ModeAusente,
		}
	}
	if attendance.Mode == mode && attendance.Present() == mode.Present() {
		return ports.AttendanceChange{}, entities.Shareholder{}, domainerrors.ErrAttendanceUnchanged
	}

	now := s.now()
	history := entities.AttendanceHistory{
		FromMode:    attendance.Mode,
		ToMode:      mode,
		FromPresent: attendance.Present(),
		ToPresent:   mode.Present(),
		ChangedBy:   actor.Username,
		ChangedAt:   now,
		Reason:      reason,
		IP:          ip,
		UserAgent:   userAgent,
	}
	attendance.Mode = mode
	attendance.MarkedBy = actor.Username
	attendance.MarkedAt = now
	attendance.Evidence = evidence

	return ports.AttendanceChange{Attendance: attendance, History: history}, shareholder, nil
}

func attendanceRow(att entities.Attendance, shareholder entities.Shareholder) AttendanceRow {
	return AttendanceRow{
		Code:     shareholder.Code,
		Name:     shareholder.Name,
		Mode:     string(att.Mode),
		Present:  att.Present(),
		MarkedBy: att.MarkedBy,
		MarkedAt: att.MarkedAt,
	}
}

// notify pushes one summary plus the affected rows. Failures inside the
// broadcaster never surface here.
func (s AttendanceService) notify(ctx context.Context, electionID int64, rows []AttendanceRow) {
	if s.Broadcaster == nil || len(rows) == 0 {
		return
	}
	summary, err := s.Quorum.Summary(ctx, electionID)
	if err != nil {
		ResolveLogger(s.Logger).Warn("summary for broadcast failed",
			"event", "assembly_broadcast_summary_failed",
			"module", "governance/assembly-service",
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return
	}
	if len(rows) == 1 {
		s.Broadcaster.Broadcast(electionID, map[string]any{"summary": summary, "row": rows[0]})
		return
	}
	s.Broadcaster.Broadcast(electionID, map[string]any{"summary": summary, "rows": rows})
}

func (s AttendanceService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
