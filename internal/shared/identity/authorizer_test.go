package identity

import (
	"context"
	"testing"
)

func TestRoleAuthorizerGlobalRoles(t *testing.T) {
	authorizer := RoleAuthorizer{}
	ctx := context.Background()

	admin := Principal{Username: "admin", Role: RoleAdmin}
	for _, action := range []string{ActionMarkAttendance, ActionManageElection, ActionOpenVoting, ActionCastVote, ActionObserve} {
		if ok, err := authorizer.Can(ctx, admin, action, 1); err != nil || !ok {
			t.Fatalf("admin must be allowed %s, got %v %v", action, ok, err)
		}
	}

	registrar := Principal{Username: "mesa1", Role: RoleRegistrar}
	if ok, _ := authorizer.Can(ctx, registrar, ActionMarkAttendance, 1); !ok {
		t.Fatal("registrar must mark attendance")
	}
	if ok, _ := authorizer.Can(ctx, registrar, ActionObserve, 1); !ok {
		t.Fatal("registrar must observe")
	}
	if ok, _ := authorizer.Can(ctx, registrar, ActionCastVote, 1); ok {
		t.Fatal("registrar must not vote without a grant")
	}

	observer := Principal{Username: "mirador", Role: RoleObservador}
	if ok, _ := authorizer.Can(ctx, observer, ActionObserve, 1); !ok {
		t.Fatal("observer must observe")
	}
	if ok, _ := authorizer.Can(ctx, observer, ActionManageElection, 1); ok {
		t.Fatal("observer must not manage elections")
	}

	if ok, _ := authorizer.Can(ctx, admin, "unknown_action", 1); !ok {
		t.Fatal("admin bypasses the action switch")
	}
	if ok, _ := authorizer.Can(ctx, registrar, "unknown_action", 1); ok {
		t.Fatal("unknown actions are denied")
	}
}

func TestRoleAuthorizerElectionGrants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoleStore()
	authorizer := RoleAuthorizer{Roles: store}
	voter := Principal{Username: "delegado", Role: RoleObservador}

	if ok, _ := authorizer.Can(ctx, voter, ActionCastVote, 1); ok {
		t.Fatal("no grant means no vote")
	}
	if err := store.AssignElectionRole(ctx, 1, "delegado", ElectionRoleVote); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if ok, _ := authorizer.Can(ctx, voter, ActionCastVote, 1); !ok {
		t.Fatal("VOTE grant must allow voting")
	}
	// The grant is scoped to the election it was issued for.
	if ok, _ := authorizer.Can(ctx, voter, ActionCastVote, 2); ok {
		t.Fatal("grant must not leak into other elections")
	}

	// Re-assigning replaces the user's role for that election.
	if err := store.AssignElectionRole(ctx, 1, "delegado", ElectionRoleObserver); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	if ok, _ := authorizer.Can(ctx, voter, ActionCastVote, 1); ok {
		t.Fatal("replaced grant must revoke voting")
	}
	roles, err := store.ListElectionRoles(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(roles) != 1 || roles[0].Role != ElectionRoleObserver {
		t.Fatalf("expected a single OBSERVER grant, got %+v", roles)
	}

	if err := store.RemoveElectionRole(ctx, 1, "delegado"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if ok, _ := authorizer.Can(ctx, voter, ActionObserve, 1); !ok {
		t.Fatal("global observer role still observes after revocation")
	}
	roles, _ = store.ListElectionRoles(ctx, 1)
	if len(roles) != 0 {
		t.Fatalf("expected no grants left, got %+v", roles)
	}
}
