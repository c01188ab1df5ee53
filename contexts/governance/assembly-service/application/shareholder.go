package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/contexts/governance/assembly-service/ports"
	"asamblea/internal/shared/audit"
	"asamblea/internal/shared/identity"
)

// ShareholderCreate is one validated import row, produced by the upload
// adapter. The core never sees spreadsheet bytes.
type ShareholderCreate struct {
	Code     string
	Name     string
	Document string
	Email    string
	Actions  decimal.Decimal
}

type ImportRowFailure struct {
	Index  int    `json:"index"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ImportShareholdersResult struct {
	Imported []entities.Shareholder
	Failed   []ImportRowFailure
}

// ShareholderService imports and lists the cap table. Rows are upserted by
// code; malformed rows are reported per index, not fatal to the batch.
type ShareholderService struct {
	Shareholders ports.ShareholderRepository
	Authorizer   identity.Authorizer
	Audit        audit.Recorder
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (s ShareholderService) Import(ctx context.Context, electionID int64, rows []ShareholderCreate, actor identity.Principal) (ImportShareholdersResult, error) {
	logger := ResolveLogger(s.Logger)
	allowed, err := s.Authorizer.Can(ctx, actor, identity.ActionManageElection, electionID)
	if err != nil {
		return ImportShareholdersResult{}, err
	}
	if !allowed {
		return ImportShareholdersResult{}, domainerrors.ErrForbidden
	}

	var result ImportShareholdersResult
	for i, row := range rows {
		code := strings.TrimSpace(row.Code)
		if code == "" || strings.TrimSpace(row.Name) == "" {
			result.Failed = append(result.Failed, ImportRowFailure{Index: i, Code: code, Reason: domainerrors.ErrInvalidShareholderRow.Error()})
			continue
		}
		if row.Actions.IsNegative() {
			result.Failed = append(result.Failed, ImportRowFailure{Index: i, Code: code, Reason: domainerrors.ErrInvalidCapital.Error()})
			continue
		}

		shareholder := entities.Shareholder{
			Code:     code,
			Name:     strings.TrimSpace(row.Name),
			Document: strings.TrimSpace(row.Document),
			Email:    strings.TrimSpace(row.Email),
			Actions:  row.Actions,
			Status:   entities.ShareholderStatusActive,
		}
		if existing, found, err := s.Shareholders.GetShareholderByCode(ctx, code); err != nil {
			return ImportShareholdersResult{}, err
		} else if found {
			shareholder.ID = existing.ID
		}

		saved, err := s.Shareholders.SaveShareholder(ctx, shareholder)
		if err != nil {
			return ImportShareholdersResult{}, fmt.Errorf("save shareholder %s: %w", code, err)
		}
		result.Imported = append(result.Imported, saved)
	}

	if s.Audit != nil && len(result.Imported) > 0 {
		entry := audit.NewEntry(electionID, actor.Username, "shareholders_imported",
			fmt.Sprintf("%d imported, %d rejected", len(result.Imported), len(result.Failed)))
		if s.Clock != nil {
			entry.At = s.Clock.Now()
		}
		if err := s.Audit.Record(ctx, entry); err != nil {
			return ImportShareholdersResult{}, fmt.Errorf("record shareholder import: %w", err)
		}
	}

	logger.Info("shareholder import finished",
		"event", "assembly_shareholders_imported",
		"module", "governance/assembly-service",
		"layer", "application",
		"election_id", electionID,
		"imported", len(result.Imported),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s ShareholderService) List(ctx context.Context) ([]entities.Shareholder, error) {
	return s.Shareholders.ListShareholders(ctx)
}

func (s ShareholderService) Get(ctx context.Context, code string) (entities.Shareholder, error) {
	shareholder, found, err := s.Shareholders.GetShareholderByCode(ctx, code)
	if err != nil {
		return entities.Shareholder{}, err
	}
	if !found {
		return entities.Shareholder{}, domainerrors.ErrShareholderNotFound
	}
	return shareholder, nil
}
