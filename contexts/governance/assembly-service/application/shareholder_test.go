package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/adapters/memory"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/internal/shared/identity"
)

func TestImportShareholdersReportsRowFailures(t *testing.T) {
	store := memory.NewStore()
	service := ShareholderService{Shareholders: store, Authorizer: identity.RoleAuthorizer{}, Clock: store}

	result, err := service.Import(context.Background(), 1, []ShareholderCreate{
		{Code: "ACC-001", Name: "Uno", Actions: decimal.NewFromInt(100)},
		{Code: "", Name: "Sin codigo", Actions: decimal.NewFromInt(50)},
		{Code: "ACC-002", Name: "Dos", Actions: decimal.NewFromInt(-5)},
		{Code: "ACC-003", Name: "Tres", Actions: decimal.Zero},
	}, adminActor)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(result.Imported) != 2 {
		t.Fatalf("expected 2 imported, got %d", len(result.Imported))
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failed, got %+v", result.Failed)
	}
	if result.Failed[0].Index != 1 || result.Failed[0].Reason != domainerrors.ErrInvalidShareholderRow.Error() {
		t.Fatalf("unexpected first failure: %+v", result.Failed[0])
	}
	if result.Failed[1].Index != 2 || result.Failed[1].Reason != domainerrors.ErrInvalidCapital.Error() {
		t.Fatalf("unexpected second failure: %+v", result.Failed[1])
	}
}

func TestImportShareholdersUpsertsByCode(t *testing.T) {
	store := memory.NewStore()
	service := ShareholderService{Shareholders: store, Authorizer: identity.RoleAuthorizer{}, Clock: store}

	first, err := service.Import(context.Background(), 1, []ShareholderCreate{
		{Code: "ACC-001", Name: "Uno", Actions: decimal.NewFromInt(100)},
	}, adminActor)
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	second, err := service.Import(context.Background(), 1, []ShareholderCreate{
		{Code: "ACC-001", Name: "Uno Renombrado", Actions: decimal.NewFromInt(250)},
	}, adminActor)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if second.Imported[0].ID != first.Imported[0].ID {
		t.Fatalf("re-import must keep the id, got %d and %d", first.Imported[0].ID, second.Imported[0].ID)
	}

	all, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single shareholder, got %d", len(all))
	}
	if all[0].Name != "Uno Renombrado" || !all[0].Actions.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("row not updated: %+v", all[0])
	}
}

func TestImportShareholdersRequiresManageRole(t *testing.T) {
	store := memory.NewStore()
	service := ShareholderService{Shareholders: store, Authorizer: identity.RoleAuthorizer{}, Clock: store}

	observer := identity.Principal{Username: "mirador", Role: identity.RoleObservador}
	if _, err := service.Import(context.Background(), 1, []ShareholderCreate{
		{Code: "ACC-001", Name: "Uno", Actions: decimal.NewFromInt(10)},
	}, observer); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGetShareholderByCode(t *testing.T) {
	store := memory.NewStore()
	seedShareholder(t, store, "ACC-001", 100)
	service := ShareholderService{Shareholders: store, Authorizer: identity.RoleAuthorizer{}, Clock: store}

	got, err := service.Get(context.Background(), "ACC-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Code != "ACC-001" {
		t.Fatalf("unexpected shareholder: %+v", got)
	}

	if _, err := service.Get(context.Background(), "NOPE"); !errors.Is(err, domainerrors.ErrShareholderNotFound) {
		t.Fatalf("expected ErrShareholderNotFound, got %v", err)
	}
}
