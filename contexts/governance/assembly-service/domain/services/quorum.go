package services

import (
	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
)

// QuorumSummary is the attendance/quorum snapshot broadcast to observers
// and used to gate lifecycle transitions.
type QuorumSummary struct {
	Total        int `json:"total"`
	Presencial   int `json:"presencial"`
	Virtual      int `json:"virtual"`
	Ausente      int `json:"ausente"`
	Representado int `json:"representado"`

	CapitalSuscrito             decimal.Decimal `json:"capital_suscrito"`
	CapitalPresenteDirecto      decimal.Decimal `json:"capital_presente_directo"`
	CapitalPresenteRepresentado decimal.Decimal `json:"capital_presente_representado"`
	PorcentajeQuorum            decimal.Decimal `json:"porcentaje_quorum"`
}

// Meets reports whether the computed quorum reaches the given minimum.
func (s QuorumSummary) Meets(min decimal.Decimal) bool {
	return s.PorcentajeQuorum.GreaterThanOrEqual(min)
}

// QuorumInput is the state slice the calculation runs over. Shareholders
// is the whole cap table; Attendances, Proxies and Assignments are scoped
// to one election by the caller.
type QuorumInput struct {
	Shareholders []entities.Shareholder
	Attendances  []entities.Attendance
	Proxies      []entities.Proxy
	Assignments  []entities.ProxyAssignment
}

// ComputeQuorum derives the quorum summary. Direct capital sums the live
// shareholder actions of present attendees, while represented capital sums
// the assignment-time snapshots under VALID and present proxies. The
// asymmetry is intentional: proxy capital is insulated from later edits to
// the cap table.
func ComputeQuorum(in QuorumInput) QuorumSummary {
	summary := QuorumSummary{
		CapitalSuscrito:             decimal.Zero,
		CapitalPresenteDirecto:      decimal.Zero,
		CapitalPresenteRepresentado: decimal.Zero,
		PorcentajeQuorum:            decimal.Zero,
	}

	actionsByShareholder := make(map[int64]decimal.Decimal, len(in.Shareholders))
	for _, sh := range in.Shareholders {
		actionsByShareholder[sh.ID] = sh.Actions
		summary.CapitalSuscrito = summary.CapitalSuscrito.Add(sh.Actions)
	}

	for _, att := range in.Attendances {
		summary.Total++
		switch att.Mode {
		case entities.ModePresencial:
			summary.Presencial++
		case entities.ModeVirtual:
			summary.Virtual++
		case entities.ModeAusente:
			summary.Ausente++
		}
		if att.Present() {
			summary.CapitalPresenteDirecto = summary.CapitalPresenteDirecto.Add(actionsByShareholder[att.ShareholderID])
		}
	}

	presentProxies := make(map[int64]bool, len(in.Proxies))
	for _, proxy := range in.Proxies {
		if proxy.Present() {
			presentProxies[proxy.ID] = true
		}
	}
	for _, assignment := range in.Assignments {
		if !presentProxies[assignment.ProxyID] {
			continue
		}
		summary.Representado++
		summary.CapitalPresenteRepresentado = summary.CapitalPresenteRepresentado.Add(assignment.WeightActionsSnapshot)
	}

	if summary.CapitalSuscrito.IsPositive() {
		present := summary.CapitalPresenteDirecto.Add(summary.CapitalPresenteRepresentado)
		summary.PorcentajeQuorum = present.Div(summary.CapitalSuscrito)
	}
	return summary
}
