package ports

import (
	"context"
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

// AttendanceChange pairs an attendance upsert with its mandatory history
// row. Repositories persist each change transactionally, and a batch of
// changes atomically.
type AttendanceChange struct {
	Attendance entities.Attendance
	History    entities.AttendanceHistory
}

type ShareholderRepository interface {
	SaveShareholder(ctx context.Context, sh entities.Shareholder) (entities.Shareholder, error)
	GetShareholder(ctx context.Context, shareholderID int64) (entities.Shareholder, bool, error)
	GetShareholderByCode(ctx context.Context, code string) (entities.Shareholder, bool, error)
	ListShareholders(ctx context.Context) ([]entities.Shareholder, error)
}

type AttendanceRepository interface {
	GetAttendance(ctx context.Context, electionID, shareholderID int64) (entities.Attendance, bool, error)
	// SaveAttendanceChanges applies every change or none of them. Returned
	// attendances carry assigned ids, in input order.
	SaveAttendanceChanges(ctx context.Context, changes []AttendanceChange) ([]entities.Attendance, error)
	ListAttendances(ctx context.Context, electionID int64) ([]entities.Attendance, error)
	ListAttendanceHistory(ctx context.Context, attendanceID int64) ([]entities.AttendanceHistory, error)
}

type ProxyRepository interface {
	SaveProxy(ctx context.Context, proxy entities.Proxy) (entities.Proxy, error)
	GetProxy(ctx context.Context, proxyID int64) (entities.Proxy, bool, error)
	GetProxyByNumDoc(ctx context.Context, electionID int64, numDoc string) (entities.Proxy, bool, error)
	ListProxies(ctx context.Context, electionID int64) ([]entities.Proxy, error)
	SaveAssignments(ctx context.Context, assignments []entities.ProxyAssignment) ([]entities.ProxyAssignment, error)
	ListAssignmentsByProxy(ctx context.Context, proxyID int64) ([]entities.ProxyAssignment, error)
	// ListAssignmentsByElection returns every assignment whose proxy belongs
	// to the election, whatever the proxy status.
	ListAssignmentsByElection(ctx context.Context, electionID int64) ([]entities.ProxyAssignment, error)
	// HasActiveProxy reports whether a VALID and present proxy represents
	// the shareholder in this election.
	HasActiveProxy(ctx context.Context, electionID, shareholderID int64) (bool, error)
}

type PersonRepository interface {
	SavePerson(ctx context.Context, person entities.Person) (entities.Person, error)
	GetPerson(ctx context.Context, personID int64) (entities.Person, bool, error)
	ListPersons(ctx context.Context) ([]entities.Person, error)
}

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) (entities.Election, error)
	GetElection(ctx context.Context, electionID int64) (entities.Election, bool, error)
	ListElections(ctx context.Context) ([]entities.Election, error)
}
