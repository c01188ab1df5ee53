package identity

import (
	"context"
	"sort"
	"sync"
)

// RoleAuthorizer resolves permissions from the global role plus the
// election-scoped assignments held in an ElectionRoleStore.
type RoleAuthorizer struct {
	Roles ElectionRoleStore
}

func (a RoleAuthorizer) Can(ctx context.Context, principal Principal, action string, electionID int64) (bool, error) {
	if principal.IsAdmin() {
		return true, nil
	}
	switch action {
	case ActionMarkAttendance, ActionManageElection:
		if principal.Role == RoleRegistrar {
			return true, nil
		}
		return a.hasRole(ctx, electionID, principal.Username, ElectionRoleAttendance)
	case ActionOpenVoting, ActionCastVote:
		return a.hasRole(ctx, electionID, principal.Username, ElectionRoleVote)
	case ActionObserve:
		if principal.Role == RoleObservador || principal.Role == RoleRegistrar {
			return true, nil
		}
		return a.hasRole(ctx, electionID, principal.Username, ElectionRoleObserver)
	}
	return false, nil
}

func (a RoleAuthorizer) hasRole(ctx context.Context, electionID int64, username, role string) (bool, error) {
	if a.Roles == nil {
		return false, nil
	}
	return a.Roles.HasElectionRole(ctx, electionID, username, role)
}

// MemoryRoleStore keeps election role assignments in memory.
type MemoryRoleStore struct {
	mu       sync.RWMutex
	sequence int64
	rows     map[int64]ElectionUserRole
}

func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{rows: make(map[int64]ElectionUserRole)}
}

func (s *MemoryRoleStore) AssignElectionRole(_ context.Context, electionID int64, username string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.ElectionID == electionID && row.Username == username {
			row.Role = role
			s.rows[id] = row
			return nil
		}
	}
	s.sequence++
	s.rows[s.sequence] = ElectionUserRole{
		ID:         s.sequence,
		ElectionID: electionID,
		Username:   username,
		Role:       role,
	}
	return nil
}

func (s *MemoryRoleStore) RemoveElectionRole(_ context.Context, electionID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.ElectionID == electionID && row.Username == username {
			delete(s.rows, id)
			return nil
		}
	}
	return nil
}

func (s *MemoryRoleStore) ListElectionRoles(_ context.Context, electionID int64) ([]ElectionUserRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ElectionUserRole, 0)
	for _, row := range s.rows {
		if row.ElectionID == electionID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryRoleStore) HasElectionRole(_ context.Context, electionID int64, username string, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.ElectionID == electionID && row.Username == username && row.Role == role {
			return true, nil
		}
	}
	return false, nil
}
