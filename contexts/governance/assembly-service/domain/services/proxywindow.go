package services

import (
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
)

// ValidateProxyWindow rejects a proxy whose temporal window cannot cover
// the election date: fecha_otorg must not be after the election, and a set
// fecha_vigencia must not be before it.
func ValidateProxyWindow(fechaOtorg time.Time, fechaVigencia *time.Time, electionDate time.Time) error {
	if dateOnly(fechaOtorg).After(dateOnly(electionDate)) {
		return domainerrors.ErrInvalidProxyWindow
	}
	if fechaVigencia != nil && dateOnly(electionDate).After(dateOnly(*fechaVigencia)) {
		return domainerrors.ErrInvalidProxyWindow
	}
	return nil
}

// RefreshProxyStatus applies the lazy VALID->EXPIRED transition: a VALID
// proxy with a vigencia date in the past expires and loses presence. The
// function is idempotent; EXPIRED and INVALID proxies are left untouched.
// It reports whether the proxy changed so callers know to persist it.
func RefreshProxyStatus(proxy *entities.Proxy, today time.Time) bool {
	if proxy.Status != entities.ProxyValid || proxy.FechaVigencia == nil {
		return false
	}
	if !dateOnly(today).After(dateOnly(*proxy.FechaVigencia)) {
		return false
	}
	proxy.Status = entities.ProxyExpired
	proxy.Mode = entities.ModeAusente
	return true
}

// InvalidateProxy is the explicit revocation: unconditional, terminal and
// idempotent. It reports whether anything changed.
func InvalidateProxy(proxy *entities.Proxy) bool {
	if proxy.Status == entities.ProxyInvalid && proxy.Mode == entities.ModeAusente {
		return false
	}
	proxy.Status = entities.ProxyInvalid
	proxy.Mode = entities.ModeAusente
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
