package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
)

func TestComputeQuorumEmptyCapTable(t *testing.T) {
	summary := ComputeQuorum(QuorumInput{})
	if !summary.PorcentajeQuorum.IsZero() {
		t.Fatalf("empty input must yield zero quorum, got %s", summary.PorcentajeQuorum)
	}
	if summary.Total != 0 || summary.Representado != 0 {
		t.Fatalf("unexpected counters: %+v", summary)
	}
}

func TestComputeQuorumCountsModes(t *testing.T) {
	summary := ComputeQuorum(QuorumInput{
		Shareholders: []entities.Shareholder{
			{ID: 1, Actions: decimal.NewFromInt(100)},
			{ID: 2, Actions: decimal.NewFromInt(200)},
			{ID: 3, Actions: decimal.NewFromInt(700)},
		},
		Attendances: []entities.Attendance{
			{ShareholderID: 1, Mode: entities.ModePresencial},
			{ShareholderID: 2, Mode: entities.ModeVirtual},
			{ShareholderID: 3, Mode: entities.ModeAusente},
		},
	})
	if summary.Presencial != 1 || summary.Virtual != 1 || summary.Ausente != 1 || summary.Total != 3 {
		t.Fatalf("unexpected mode counters: %+v", summary)
	}
	if !summary.CapitalPresenteDirecto.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("AUSENTE capital must not count, got %s", summary.CapitalPresenteDirecto)
	}
	if !summary.PorcentajeQuorum.Equal(decimal.NewFromInt(300).Div(decimal.NewFromInt(1000))) {
		t.Fatalf("unexpected percentage: %s", summary.PorcentajeQuorum)
	}
}

func TestComputeQuorumUsesAssignmentSnapshots(t *testing.T) {
	// The cap table says 900 today, but the assignment froze 500.
	summary := ComputeQuorum(QuorumInput{
		Shareholders: []entities.Shareholder{{ID: 1, Actions: decimal.NewFromInt(900)}},
		Proxies:      []entities.Proxy{{ID: 7, Status: entities.ProxyValid, Mode: entities.ModePresencial}},
		Assignments: []entities.ProxyAssignment{
			{ProxyID: 7, ShareholderID: 1, WeightActionsSnapshot: decimal.NewFromInt(500)},
		},
	})
	if summary.Representado != 1 {
		t.Fatalf("expected one represented shareholder, got %d", summary.Representado)
	}
	if !summary.CapitalPresenteRepresentado.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("represented capital must come from the snapshot, got %s", summary.CapitalPresenteRepresentado)
	}
}

func TestComputeQuorumIgnoresNonPresentProxies(t *testing.T) {
	input := QuorumInput{
		Shareholders: []entities.Shareholder{{ID: 1, Actions: decimal.NewFromInt(100)}},
		Proxies: []entities.Proxy{
			{ID: 1, Status: entities.ProxyValid, Mode: entities.ModeAusente},
			{ID: 2, Status: entities.ProxyExpired, Mode: entities.ModePresencial},
			{ID: 3, Status: entities.ProxyInvalid, Mode: entities.ModeVirtual},
		},
		Assignments: []entities.ProxyAssignment{
			{ProxyID: 1, WeightActionsSnapshot: decimal.NewFromInt(10)},
			{ProxyID: 2, WeightActionsSnapshot: decimal.NewFromInt(20)},
			{ProxyID: 3, WeightActionsSnapshot: decimal.NewFromInt(30)},
		},
	}
	summary := ComputeQuorum(input)
	if summary.Representado != 0 || !summary.CapitalPresenteRepresentado.IsZero() {
		t.Fatalf("non-present proxies must contribute nothing, got %+v", summary)
	}
}

func TestQuorumSummaryMeets(t *testing.T) {
	summary := QuorumSummary{PorcentajeQuorum: decimal.RequireFromString("0.5")}
	if !summary.Meets(decimal.RequireFromString("0.5")) {
		t.Fatal("exact minimum must pass")
	}
	if summary.Meets(decimal.RequireFromString("0.51")) {
		t.Fatal("below minimum must fail")
	}
}
