package services

import (
	"errors"
	"testing"
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
)

func TestValidateProxyWindow(t *testing.T) {
	election := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	dayBefore := election.AddDate(0, 0, -1)
	dayAfter := election.AddDate(0, 0, 1)

	if err := ValidateProxyWindow(dayBefore, nil, election); err != nil {
		t.Fatalf("open-ended window must pass: %v", err)
	}
	if err := ValidateProxyWindow(dayBefore, &election, election); err != nil {
		t.Fatalf("vigencia on the election day must pass: %v", err)
	}
	// Same-day comparisons are date-only: the hour must not matter.
	lateOtorg := election.Add(23 * time.Hour)
	if err := ValidateProxyWindow(lateOtorg, nil, election); err != nil {
		t.Fatalf("same-day otorgamiento must pass: %v", err)
	}
	if err := ValidateProxyWindow(dayAfter, nil, election); !errors.Is(err, domainerrors.ErrInvalidProxyWindow) {
		t.Fatalf("otorgamiento after the election must fail, got %v", err)
	}
	if err := ValidateProxyWindow(dayBefore, &dayBefore, election); !errors.Is(err, domainerrors.ErrInvalidProxyWindow) {
		t.Fatalf("vigencia before the election must fail, got %v", err)
	}
}

func TestRefreshProxyStatus(t *testing.T) {
	today := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	proxy := entities.Proxy{Status: entities.ProxyValid, Mode: entities.ModePresencial, FechaVigencia: &yesterday}
	if !RefreshProxyStatus(&proxy, today) {
		t.Fatal("past vigencia must expire the proxy")
	}
	if proxy.Status != entities.ProxyExpired || proxy.Mode != entities.ModeAusente {
		t.Fatalf("unexpected state after expiry: %+v", proxy)
	}
	if RefreshProxyStatus(&proxy, today) {
		t.Fatal("refresh must be idempotent")
	}

	// Vigencia expiring today is still covered.
	sameDay := entities.Proxy{Status: entities.ProxyValid, Mode: entities.ModeVirtual, FechaVigencia: &today}
	if RefreshProxyStatus(&sameDay, today) {
		t.Fatal("vigencia today must not expire")
	}

	openEnded := entities.Proxy{Status: entities.ProxyValid, Mode: entities.ModeVirtual}
	if RefreshProxyStatus(&openEnded, today) {
		t.Fatal("nil vigencia never expires")
	}

	invalid := entities.Proxy{Status: entities.ProxyInvalid, Mode: entities.ModeAusente, FechaVigencia: &yesterday}
	if RefreshProxyStatus(&invalid, today) {
		t.Fatal("INVALID proxies are terminal")
	}
}

func TestInvalidateProxy(t *testing.T) {
	proxy := entities.Proxy{Status: entities.ProxyValid, Mode: entities.ModePresencial}
	if !InvalidateProxy(&proxy) {
		t.Fatal("first invalidation must change state")
	}
	if proxy.Status != entities.ProxyInvalid || proxy.Mode != entities.ModeAusente {
		t.Fatalf("unexpected state: %+v", proxy)
	}
	if InvalidateProxy(&proxy) {
		t.Fatal("second invalidation must be a no-op")
	}
}
