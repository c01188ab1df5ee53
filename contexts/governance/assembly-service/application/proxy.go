package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/contexts/governance/assembly-service/domain/services"
	"asamblea/contexts/governance/assembly-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/broadcast"
	"asamblea/internal/shared/identity"
)

// ProxyAssignmentInput names one represented shareholder. The capital
// weight is snapshotted from the shareholder's current actions here, at
// assignment time, and never re-read.
type ProxyAssignmentInput struct {
	ShareholderID int64
	ValidFrom     *time.Time
	ValidUntil    *time.Time
}

type CreateProxyCommand struct {
	ElectionID    int64
	ProxyPersonID int64
	TipoDoc       string
	NumDoc        string
	FechaOtorg    time.Time
	FechaVigencia *time.Time
	PdfURL        string
	Assignments   []ProxyAssignmentInput
	Actor         identity.Principal
	IP            string
	UserAgent     string
}

// ProxyWithAssignments is the read shape for proxy listings.
type ProxyWithAssignments struct {
	Proxy       entities.Proxy
	Assignments []entities.ProxyAssignment
}

// ProxyService validates proxy temporal windows, applies the lazy expiry
// transition on reads, and owns the apoderado's own attendance state.
type ProxyService struct {
	Proxies      ports.ProxyRepository
	Persons      ports.PersonRepository
	Shareholders ports.ShareholderRepository
	Elections    ports.ElectionRepository
	Quorum       QuorumService
	Authorizer   identity.Authorizer
	Audit        audit.Recorder
	Broadcaster  broadcast.Broadcaster
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (s ProxyService) Create(ctx context.Context, cmd CreateProxyCommand) (ProxyWithAssignments, error) {
	logger := ResolveLogger(s.Logger)
	election, err := s.gate(ctx, cmd.ElectionID, cmd.Actor, identity.ActionManageElection)
	if err != nil {
		return ProxyWithAssignments{}, err
	}

	if strings.TrimSpace(cmd.NumDoc) == "" {
		return ProxyWithAssignments{}, domainerrors.ErrInvalidProxyWindow
	}
	if err := services.ValidateProxyWindow(cmd.FechaOtorg, cmd.FechaVigencia, election.Date); err != nil {
		return ProxyWithAssignments{}, err
	}
	if _, found, err := s.Persons.GetPerson(ctx, cmd.ProxyPersonID); err != nil {
		return ProxyWithAssignments{}, err
	} else if !found {
		return ProxyWithAssignments{}, domainerrors.ErrPersonNotFound
	}
	if _, found, err := s.Proxies.GetProxyByNumDoc(ctx, cmd.ElectionID, cmd.NumDoc); err != nil {
		return ProxyWithAssignments{}, err
	} else if found {
		return ProxyWithAssignments{}, domainerrors.ErrDuplicateProxyNumDoc
	}

	proxy := entities.Proxy{
		ElectionID:    cmd.ElectionID,
		ProxyPersonID: cmd.ProxyPersonID,
		TipoDoc:       cmd.TipoDoc,
		NumDoc:        strings.TrimSpace(cmd.NumDoc),
		FechaOtorg:    cmd.FechaOtorg,
		FechaVigencia: cmd.FechaVigencia,
		PdfURL:        cmd.PdfURL,
		Status:        entities.ProxyValid,
		Mode:          entities.ModeAusente,
	}
	saved, err := s.Proxies.SaveProxy(ctx, proxy)
	if err != nil {
		return ProxyWithAssignments{}, fmt.Errorf("save proxy: %w", err)
	}

	assignments := make([]entities.ProxyAssignment, 0, len(cmd.Assignments))
	for _, input := range cmd.Assignments {
		shareholder, found, err := s.Shareholders.GetShareholder(ctx, input.ShareholderID)
		if err != nil {
			return ProxyWithAssignments{}, err
		}
		if !found {
			return ProxyWithAssignments{}, domainerrors.ErrShareholderNotFound
		}
		assignments = append(assignments, entities.ProxyAssignment{
			ProxyID:               saved.ID,
			ShareholderID:         shareholder.ID,
			WeightActionsSnapshot: shareholder.Actions,
			ValidFrom:             input.ValidFrom,
			ValidUntil:            input.ValidUntil,
		})
	}
	if len(assignments) > 0 {
		if assignments, err = s.Proxies.SaveAssignments(ctx, assignments); err != nil {
			return ProxyWithAssignments{}, fmt.Errorf("save proxy assignments: %w", err)
		}
	}

	if err := s.record(ctx, cmd, saved, len(assignments)); err != nil {
		return ProxyWithAssignments{}, err
	}
	logger.Info("proxy created",
		"event", "assembly_proxy_created",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", cmd.ElectionID,
		"proxy_id", saved.ID,
		"num_doc", saved.NumDoc,
		"assignments", len(assignments),
	)
	return ProxyWithAssignments{Proxy: saved, Assignments: assignments}, nil
}

// List returns the election's proxies with the date-driven expiry applied.
// Transitions discovered here are persisted, so a later read sees EXPIRED
// without recomputation.
func (s ProxyService) List(ctx context.Context, electionID int64) ([]ProxyWithAssignments, error) {
	proxies, err := s.Proxies.ListProxies(ctx, electionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]ProxyWithAssignments, 0, len(proxies))
	for _, proxy := range proxies {
		refreshed, err := s.refresh(ctx, proxy, now)
		if err != nil {
			return nil, err
		}
		assignments, err := s.Proxies.ListAssignmentsByProxy(ctx, proxy.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ProxyWithAssignments{Proxy: refreshed, Assignments: assignments})
	}
	return out, nil
}

// Invalidate revokes a proxy unconditionally. Terminal and idempotent.
func (s ProxyService) Invalidate(ctx context.Context, electionID, proxyID int64, actor identity.Principal) (entities.Proxy, error) {
	if _, err := s.gate(ctx, electionID, actor, identity.ActionManageElection); err != nil {
		return entities.Proxy{}, err
	}
	proxy, err := s.load(ctx, electionID, proxyID)
	if err != nil {
		return entities.Proxy{}, err
	}

	if !services.InvalidateProxy(&proxy) {
		return proxy, nil
	}
	saved, err := s.Proxies.SaveProxy(ctx, proxy)
	if err != nil {
		return entities.Proxy{}, fmt.Errorf("save proxy: %w", err)
	}
	if s.Audit != nil {
		entry := audit.NewEntry(electionID, actor.Username, "proxy_invalidated", fmt.Sprintf("proxy %d (%s)", proxyID, proxy.NumDoc))
		entry.At = s.now()
		if err := s.Audit.Record(ctx, entry); err != nil {
			return entities.Proxy{}, fmt.Errorf("record proxy invalidation: %w", err)
		}
	}
	s.notifySummary(ctx, electionID)
	return saved, nil
}

// MarkAttendance updates the apoderado's own attendance mode. Only a
// currently VALID proxy can be marked, and re-marking the current mode is
// rejected like shareholder marks are.
func (s ProxyService) MarkAttendance(ctx context.Context, electionID, proxyID int64, mode entities.AttendanceMode, actor identity.Principal) (entities.Proxy, error) {
	if _, err := s.gate(ctx, electionID, actor, identity.ActionMarkAttendance); err != nil {
		return entities.Proxy{}, err
	}
	if !mode.Valid() {
		return entities.Proxy{}, domainerrors.ErrInvalidAttendanceMode
	}
	proxy, err := s.load(ctx, electionID, proxyID)
	if err != nil {
		return entities.Proxy{}, err
	}
	proxy, err = s.refresh(ctx, proxy, s.now())
	if err != nil {
		return entities.Proxy{}, err
	}
	if proxy.Status != entities.ProxyValid {
		return entities.Proxy{}, domainerrors.ErrProxyNotValid
	}
	if proxy.Mode == mode {
		return entities.Proxy{}, domainerrors.ErrAttendanceUnchanged
	}

	proxy.Mode = mode
	proxy.MarkedBy = actor.Username
	proxy.MarkedAt = s.now()
	saved, err := s.Proxies.SaveProxy(ctx, proxy)
	if err != nil {
		return entities.Proxy{}, fmt.Errorf("save proxy: %w", err)
	}
	s.notifySummary(ctx, electionID)
	return saved, nil
}

func (s ProxyService) CreatePerson(ctx context.Context, person entities.Person) (entities.Person, error) {
	if strings.TrimSpace(person.Name) == "" || strings.TrimSpace(person.Document) == "" {
		return entities.Person{}, domainerrors.ErrInvalidPersonData
	}
	if person.Type != entities.PersonAccionista && person.Type != entities.PersonTercero {
		person.Type = entities.PersonTercero
	}
	return s.Persons.SavePerson(ctx, person)
}

func (s ProxyService) ListPersons(ctx context.Context) ([]entities.Person, error) {
	return s.Persons.ListPersons(ctx)
}

// gate shields every proxy mutation: actor capability, election exists,
// not CLOSED, and the registration window unless the actor is an admin.
func (s ProxyService) gate(ctx context.Context, electionID int64, actor identity.Principal, action string) (entities.Election, error) {
	allowed, err := s.Authorizer.Can(ctx, actor, action, electionID)
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

func (s ProxyService) load(ctx context.Context, electionID, proxyID int64) (entities.Proxy, error) {
	proxy, found, err := s.Proxies.GetProxy(ctx, proxyID)
	if err != nil {
		return entities.Proxy{}, err
	}
	if !found || proxy.ElectionID != electionID {
		return entities.Proxy{}, domainerrors.ErrProxyNotFound
	}
	return proxy, nil
}

// refresh persists the EXPIRED transition when the vigencia date has
// passed. Idempotent on already-terminal proxies.
func (s ProxyService) refresh(ctx context.Context, proxy entities.Proxy, now time.Time) (entities.Proxy, error) {
	if !services.RefreshProxyStatus(&proxy, now) {
		return proxy, nil
	}
	saved, err := s.Proxies.SaveProxy(ctx, proxy)
	if err != nil {
		return entities.Proxy{}, fmt.Errorf("persist proxy expiry: %w", err)
	}
	ResolveLogger(s.Logger).Info("proxy expired",
		"event", "assembly_proxy_expired",
		"module", "governance/assembly-service",
		"layer", "application",
		"proxy_id", proxy.ID,
		"election_id", proxy.ElectionID,
	)
	return saved, nil
}

func (s ProxyService) record(ctx context.Context, cmd CreateProxyCommand, proxy entities.Proxy, assignments int) error {
	if s.Audit == nil {
		return nil
	}
	entry := audit.NewEntry(cmd.ElectionID, cmd.Actor.Username, "proxy_created",
		fmt.Sprintf("proxy %d (%s), %d assignments", proxy.ID, proxy.NumDoc, assignments))
	entry.IP = cmd.IP
	entry.UserAgent = cmd.UserAgent
	entry.At = s.now()
	if err := s.Audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record proxy creation: %w", err)
	}
	return nil
}

func (s ProxyService) notifySummary(ctx context.Context, electionID int64) {
	if s.Broadcaster == nil {
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
	s.Broadcaster.Broadcast(electionID, map[string]any{"summary": summary})
}

func (s ProxyService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
