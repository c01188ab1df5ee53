package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	"asamblea/contexts/governance/assembly-service/ports"
)

type attendanceKey struct {
	electionID    int64
	shareholderID int64
}

// Store is the in-memory implementation of every assembly repository port.
// A single mutex serializes writers, which also gives batch saves their
// all-or-nothing behavior.
type Store struct {
	mu sync.RWMutex

	shareholderSeq int64
	attendanceSeq  int64
	historySeq     int64
	proxySeq       int64
	assignmentSeq  int64
	personSeq      int64
	electionSeq    int64

	shareholders      map[int64]entities.Shareholder
	shareholderByCode map[string]int64
	attendances       map[int64]entities.Attendance
	attendanceByKey   map[attendanceKey]int64
	history           map[int64][]entities.AttendanceHistory
	proxies           map[int64]entities.Proxy
	assignments       map[int64]entities.ProxyAssignment
	persons           map[int64]entities.Person
	elections         map[int64]entities.Election

	// NowFunc lets tests pin the clock.
	NowFunc func() time.Time
}

func NewStore() *Store {
	return &Store{
		shareholders:      make(map[int64]entities.Shareholder),
		shareholderByCode: make(map[string]int64),
		attendances:       make(map[int64]entities.Attendance),
		attendanceByKey:   make(map[attendanceKey]int64),
		history:           make(map[int64][]entities.AttendanceHistory),
		proxies:           make(map[int64]entities.Proxy),
		assignments:       make(map[int64]entities.ProxyAssignment),
		persons:           make(map[int64]entities.Person),
		elections:         make(map[int64]entities.Election),
	}
}

func (s *Store) Now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// --- ShareholderRepository

func (s *Store) SaveShareholder(_ context.Context, sh entities.Shareholder) (entities.Shareholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh.ID == 0 {
		s.shareholderSeq++
		sh.ID = s.shareholderSeq
	}
	s.shareholders[sh.ID] = sh
	s.shareholderByCode[sh.Code] = sh.ID
	return sh, nil
}

func (s *Store) GetShareholder(_ context.Context, shareholderID int64) (entities.Shareholder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shareholders[shareholderID]
	return sh, ok, nil
}

func (s *Store) GetShareholderByCode(_ context.Context, code string) (entities.Shareholder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.shareholderByCode[code]
	if !ok {
		return entities.Shareholder{}, false, nil
	}
	return s.shareholders[id], true, nil
}

func (s *Store) ListShareholders(_ context.Context) ([]entities.Shareholder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Shareholder, 0, len(s.shareholders))
	for _, sh := range s.shareholders {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- AttendanceRepository

func (s *Store) GetAttendance(_ context.Context, electionID, shareholderID int64) (entities.Attendance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.attendanceByKey[attendanceKey{electionID, shareholderID}]
	if !ok {
		return entities.Attendance{}, false, nil
	}
	return s.attendances[id], true, nil
}

func (s *Store) SaveAttendanceChanges(_ context.Context, changes []ports.AttendanceChange) ([]entities.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Attendance, 0, len(changes))
	for _, change := range changes {
		att := change.Attendance
		key := attendanceKey{att.ElectionID, att.ShareholderID}
		if id, ok := s.attendanceByKey[key]; ok {
			att.ID = id
		} else {
			s.attendanceSeq++
			att.ID = s.attendanceSeq
			s.attendanceByKey[key] = att.ID
		}
		s.attendances[att.ID] = att

		hist := change.History
		s.historySeq++
		hist.ID = s.historySeq
		hist.AttendanceID = att.ID
		s.history[att.ID] = append(s.history[att.ID], hist)

		out = append(out, att)
	}
	return out, nil
}

func (s *Store) ListAttendances(_ context.Context, electionID int64) ([]entities.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Attendance, 0)
	for _, att := range s.attendances {
		if att.ElectionID == electionID {
			out = append(out, att)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListAttendanceHistory(_ context.Context, attendanceID int64) ([]entities.AttendanceHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.history[attendanceID]
	out := make([]entities.AttendanceHistory, len(items))
	copy(out, items)
	return out, nil
}

// --- ProxyRepository

func (s *Store) SaveProxy(_ context.Context, proxy entities.Proxy) (entities.Proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if proxy.ID == 0 {
		s.proxySeq++
		proxy.ID = s.proxySeq
	}
	s.proxies[proxy.ID] = proxy
	return proxy, nil
}

func (s *Store) GetProxy(_ context.Context, proxyID int64) (entities.Proxy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proxy, ok := s.proxies[proxyID]
	return proxy, ok, nil
}

func (s *Store) GetProxyByNumDoc(_ context.Context, electionID int64, numDoc string) (entities.Proxy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, proxy := range s.proxies {
		if proxy.ElectionID == electionID && proxy.NumDoc == numDoc {
			return proxy, true, nil
		}
	}
	return entities.Proxy{}, false, nil
}

func (s *Store) ListProxies(_ context.Context, electionID int64) ([]entities.Proxy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Proxy, 0)
	for _, proxy := range s.proxies {
		if proxy.ElectionID == electionID {
			out = append(out, proxy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveAssignments(_ context.Context, assignments []entities.ProxyAssignment) ([]entities.ProxyAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.ProxyAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.ID == 0 {
			s.assignmentSeq++
			assignment.ID = s.assignmentSeq
		}
		s.assignments[assignment.ID] = assignment
		out = append(out, assignment)
	}
	return out, nil
}

func (s *Store) ListAssignmentsByProxy(_ context.Context, proxyID int64) ([]entities.ProxyAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.ProxyAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.ProxyID == proxyID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListAssignmentsByElection(_ context.Context, electionID int64) ([]entities.ProxyAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.ProxyAssignment, 0)
	for _, assignment := range s.assignments {
		proxy, ok := s.proxies[assignment.ProxyID]
		if ok && proxy.ElectionID == electionID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) HasActiveProxy(_ context.Context, electionID, shareholderID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, assignment := range s.assignments {
		if assignment.ShareholderID != shareholderID {
			continue
		}
		proxy, ok := s.proxies[assignment.ProxyID]
		if ok && proxy.ElectionID == electionID && proxy.Present() {
			return true, nil
		}
	}
	return false, nil
}

// --- PersonRepository

func (s *Store) SavePerson(_ context.Context, person entities.Person) (entities.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if person.ID == 0 {
		s.personSeq++
		person.ID = s.personSeq
	}
	s.persons[person.ID] = person
	return person, nil
}

func (s *Store) GetPerson(_ context.Context, personID int64) (entities.Person, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.persons[personID]
	return person, ok, nil
}

func (s *Store) ListPersons(_ context.Context) ([]entities.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Person, 0, len(s.persons))
	for _, person := range s.persons {
		out = append(out, person)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ElectionRepository

func (s *Store) SaveElection(_ context.Context, election entities.Election) (entities.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if election.ID == 0 {
		s.electionSeq++
		election.ID = s.electionSeq
	}
	s.elections[election.ID] = election
	return election, nil
}

func (s *Store) GetElection(_ context.Context, electionID int64) (entities.Election, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[electionID]
	return election, ok, nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		out = append(out, election)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
