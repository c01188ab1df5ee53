package identity

import "context"

// Global platform roles carried inside the JWT.
const (
	RoleAdmin      = "ADMIN_BVG"
	RoleRegistrar  = "REGISTRADOR_BVG"
	RoleObservador = "OBSERVADOR_BVG"
)

// Per-election roles assigned through election user-role rows.
const (
	ElectionRoleAttendance = "ATTENDANCE"
	ElectionRoleVote       = "VOTE"
	ElectionRoleObserver   = "OBSERVER"
)

// Actions checked before every mutating core operation.
const (
	ActionMarkAttendance = "mark_attendance"
	ActionManageElection = "manage_election"
	ActionOpenVoting     = "open_voting"
	ActionCastVote       = "cast_vote"
	ActionObserve        = "observe"
)

// Principal is the acting user as resolved from the transport layer.
type Principal struct {
	Username string
	Role     string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Authorizer answers whether a principal may perform an action against an
// election. All services consume this single capability instead of
// duplicating role-list checks.
type Authorizer interface {
	Can(ctx context.Context, principal Principal, action string, electionID int64) (bool, error)
}

// ElectionRoleStore manages per-election role assignments.
type ElectionRoleStore interface {
	AssignElectionRole(ctx context.Context, electionID int64, username string, role string) error
	RemoveElectionRole(ctx context.Context, electionID int64, username string) error
	ListElectionRoles(ctx context.Context, electionID int64) ([]ElectionUserRole, error)
	HasElectionRole(ctx context.Context, electionID int64, username string, role string) (bool, error)
}

// ElectionUserRole links a username to a role inside one election.
type ElectionUserRole struct {
	ID         int64  `json:"id"`
	ElectionID int64  `json:"election_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}
