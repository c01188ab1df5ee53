package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/ballot-service/adapters/memory"
	domainerrors "asamblea/contexts/governance/ballot-service/domain/errors"
	"asamblea/internal/shared/identity"
)

func newAttendeeService(store *memory.Store) AttendeeService {
	return AttendeeService{
		Attendees:  store,
		Gate:       openGate(),
		Authorizer: identity.RoleAuthorizer{},
		Clock:      store,
	}
}

func TestImportAttendeesReportsRowFailures(t *testing.T) {
	store := memory.NewStore()
	service := newAttendeeService(store)

	result, err := service.Import(context.Background(), 1, []AttendeeCreate{
		{Identifier: "ACC-001", Accionista: "Uno", Acciones: decimal.NewFromInt(100)},
		{Identifier: "", Accionista: "Sin identificador", Acciones: decimal.NewFromInt(50)},
		{Identifier: "ACC-002", Accionista: "", Acciones: decimal.NewFromInt(50)},
		{Identifier: "ACC-003", Accionista: "Tres", Acciones: decimal.NewFromInt(-1)},
	}, adminActor)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(result.Imported) != 1 {
		t.Fatalf("expected 1 imported, got %d", len(result.Imported))
	}
	if len(result.Failed) != 3 {
		t.Fatalf("expected 3 failed, got %+v", result.Failed)
	}
	if result.Failed[0].Index != 1 || result.Failed[0].Reason != domainerrors.ErrInvalidAttendeeRow.Error() {
		t.Fatalf("unexpected first failure: %+v", result.Failed[0])
	}
	if result.Failed[2].Index != 3 || result.Failed[2].Reason != domainerrors.ErrNegativeAcciones.Error() {
		t.Fatalf("unexpected third failure: %+v", result.Failed[2])
	}
}

func TestImportAttendeesUpsertsByIdentifier(t *testing.T) {
	store := memory.NewStore()
	service := newAttendeeService(store)

	first, err := service.Import(context.Background(), 1, []AttendeeCreate{
		{Identifier: "ACC-001", Accionista: "Uno", Acciones: decimal.NewFromInt(100)},
	}, adminActor)
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	second, err := service.Import(context.Background(), 1, []AttendeeCreate{
		{Identifier: "ACC-001", Accionista: "Uno Actualizado", Acciones: decimal.NewFromInt(400)},
	}, adminActor)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if second.Imported[0].ID != first.Imported[0].ID {
		t.Fatalf("re-import must keep the id, got %d and %d", first.Imported[0].ID, second.Imported[0].ID)
	}

	listed, err := service.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Accionista != "Uno Actualizado" || !listed[0].Acciones.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("row not updated: %+v", listed)
	}

	// The same identifier under another election is a distinct seat.
	other, err := service.Import(context.Background(), 2, []AttendeeCreate{
		{Identifier: "ACC-001", Accionista: "Uno", Acciones: decimal.NewFromInt(100)},
	}, adminActor)
	if err != nil {
		t.Fatalf("import for other election failed: %v", err)
	}
	if other.Imported[0].ID == first.Imported[0].ID {
		t.Fatal("attendees must be scoped per election")
	}
}

func TestImportAttendeesGates(t *testing.T) {
	store := memory.NewStore()
	rows := []AttendeeCreate{{Identifier: "ACC-001", Accionista: "Uno", Acciones: decimal.NewFromInt(10)}}

	observer := identity.Principal{Username: "mirador", Role: identity.RoleObservador}
	service := newAttendeeService(store)
	if _, err := service.Import(context.Background(), 1, rows, observer); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	service.Gate = stubGate{err: domainerrors.ErrElectionNotFound}
	if _, err := service.Import(context.Background(), 1, rows, adminActor); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("gate error must surface, got %v", err)
	}
}
