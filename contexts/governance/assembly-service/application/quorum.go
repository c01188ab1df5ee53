package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	"asamblea/contexts/governance/assembly-service/domain/services"
	"asamblea/contexts/governance/assembly-service/ports"
)

// QuorumService exposes the quorum summary and the observer table. Both
// are pure reads; proxy expiry is evaluated in memory here and persisted
// only by the proxy read paths.
type QuorumService struct {
	Shareholders ports.ShareholderRepository
	Attendance   ports.AttendanceRepository
	Proxies      ports.ProxyRepository
	Persons      ports.PersonRepository
	Clock        ports.Clock
}

func (s QuorumService) Summary(ctx context.Context, electionID int64) (services.QuorumSummary, error) {
	input, err := s.loadInput(ctx, electionID)
	if err != nil {
		return services.QuorumSummary{}, err
	}
	return services.ComputeQuorum(input), nil
}

// ObserverRow is one line of the live observer table.
type ObserverRow struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	Estado                string `json:"estado"`
	Apoderado             string `json:"apoderado,omitempty"`
	AccionesPropias       string `json:"acciones_propias"`
	AccionesRepresentadas string `json:"acciones_representadas"`
	TotalQuorum           string `json:"total_quorum"`
}

func (s QuorumService) ObserverTable(ctx context.Context, electionID int64) ([]ObserverRow, error) {
	input, err := s.loadInput(ctx, electionID)
	if err != nil {
		return nil, err
	}

	attendanceByShareholder := make(map[int64]entities.Attendance, len(input.Attendances))
	for _, att := range input.Attendances {
		attendanceByShareholder[att.ShareholderID] = att
	}
	proxyByID := make(map[int64]entities.Proxy, len(input.Proxies))
	for _, proxy := range input.Proxies {
		proxyByID[proxy.ID] = proxy
	}

	represented := make(map[int64][]entities.ProxyAssignment)
	personByShareholder := make(map[int64]int64)
	for _, assignment := range input.Assignments {
		proxy, ok := proxyByID[assignment.ProxyID]
		if !ok || !proxy.Present() {
			continue
		}
		represented[assignment.ShareholderID] = append(represented[assignment.ShareholderID], assignment)
		personByShareholder[assignment.ShareholderID] = proxy.ProxyPersonID
	}

	rows := make([]ObserverRow, 0, len(input.Shareholders))
	for _, sh := range input.Shareholders {
		att, hasAttendance := attendanceByShareholder[sh.ID]
		mode := entities.ModeAusente
		if hasAttendance {
			mode = att.Mode
		}

		row := ObserverRow{
			Code:            sh.Code,
			Name:            sh.Name,
			Estado:          string(mode),
			AccionesPropias: sh.Actions.String(),
		}

		representadas := decimal.Zero
		for _, assignment := range represented[sh.ID] {
			representadas = representadas.Add(assignment.WeightActionsSnapshot)
		}
		if personID, ok := personByShareholder[sh.ID]; ok {
			if person, found, err := s.Persons.GetPerson(ctx, personID); err != nil {
				return nil, err
			} else if found {
				row.Apoderado = person.Name
			}
		}

		total := representadas
		if mode.Present() {
			total = total.Add(sh.Actions)
		}
		row.AccionesRepresentadas = representadas.String()
		row.TotalQuorum = total.String()
		rows = append(rows, row)
	}
	return rows, nil
}

func (s QuorumService) loadInput(ctx context.Context, electionID int64) (services.QuorumInput, error) {
	shareholders, err := s.Shareholders.ListShareholders(ctx)
	if err != nil {
		return services.QuorumInput{}, err
	}
	attendances, err := s.Attendance.ListAttendances(ctx, electionID)
	if err != nil {
		return services.QuorumInput{}, err
	}
	proxies, err := s.Proxies.ListProxies(ctx, electionID)
	if err != nil {
		return services.QuorumInput{}, err
	}
	assignments, err := s.Proxies.ListAssignmentsByElection(ctx, electionID)
	if err != nil {
		return services.QuorumInput{}, err
	}

	// Expired proxies must never count, even before a persisting read has
	// flipped their status.
	now := s.now()
	for i := range proxies {
		services.RefreshProxyStatus(&proxies[i], now)
	}

	return services.QuorumInput{
		Shareholders: shareholders,
		Attendances:  attendances,
		Proxies:      proxies,
		Assignments:  assignments,
	}, nil
}

func (s QuorumService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
