package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"asamblea/contexts/governance/ballot-service/domain/entities"
)

type voteKey struct {
	ballotID   int64
	attendeeID int64
}

type attendeeKey struct {
	electionID int64
	identifier string
}

// Store is the in-memory implementation of every ballot repository port.
// A single mutex serializes writers, which also gives batch saves their
// all-or-nothing behavior.
type Store struct {
	mu sync.RWMutex

	ballotSeq   int64
	optionSeq   int64
	attendeeSeq int64
	voteSeq     int64

	ballots         map[int64]entities.Ballot
	options         map[int64]entities.BallotOption
	attendees       map[int64]entities.Attendee
	attendeeByIdent map[attendeeKey]int64
	votes           map[int64]entities.Vote
	voteByKey       map[voteKey]int64

	// NowFunc lets tests pin the clock.
	NowFunc func() time.Time
}

func NewStore() *Store {
	return &Store{
		ballots:         make(map[int64]entities.Ballot),
		options:         make(map[int64]entities.BallotOption),
		attendees:       make(map[int64]entities.Attendee),
		attendeeByIdent: make(map[attendeeKey]int64),
		votes:           make(map[int64]entities.Vote),
		voteByKey:       make(map[voteKey]int64),
	}
}

func (s *Store) Now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// --- BallotRepository

func (s *Store) SaveBallot(_ context.Context, ballot entities.Ballot) (entities.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ballot.ID == 0 {
		s.ballotSeq++
		ballot.ID = s.ballotSeq
	}
	s.ballots[ballot.ID] = ballot
	return ballot, nil
}

func (s *Store) GetBallot(_ context.Context, ballotID int64) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[ballotID]
	return ballot, ok, nil
}

func (s *Store) ListBallots(_ context.Context, electionID int64) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Ballot, 0)
	for _, ballot := range s.ballots {
		if ballot.ElectionID == electionID {
			out = append(out, ballot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) SaveOption(_ context.Context, option entities.BallotOption) (entities.BallotOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if option.ID == 0 {
		s.optionSeq++
		option.ID = s.optionSeq
	}
	s.options[option.ID] = option
	return option, nil
}

func (s *Store) GetOption(_ context.Context, optionID int64) (entities.BallotOption, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.options[optionID]
	return option, ok, nil
}

func (s *Store) ListOptions(_ context.Context, ballotID int64) ([]entities.BallotOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.BallotOption, 0)
	for _, option := range s.options {
		if option.BallotID == ballotID {
			out = append(out, option)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- AttendeeRepository

func (s *Store) SaveAttendee(_ context.Context, attendee entities.Attendee) (entities.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attendee.ID == 0 {
		s.attendeeSeq++
		attendee.ID = s.attendeeSeq
	}
	s.attendees[attendee.ID] = attendee
	s.attendeeByIdent[attendeeKey{attendee.ElectionID, attendee.Identifier}] = attendee.ID
	return attendee, nil
}

func (s *Store) GetAttendee(_ context.Context, attendeeID int64) (entities.Attendee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attendee, ok := s.attendees[attendeeID]
	return attendee, ok, nil
}

func (s *Store) GetAttendeeByIdentifier(_ context.Context, electionID int64, identifier string) (entities.Attendee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.attendeeByIdent[attendeeKey{electionID, identifier}]
	if !ok {
		return entities.Attendee{}, false, nil
	}
	return s.attendees[id], true, nil
}

func (s *Store) ListAttendees(_ context.Context, electionID int64) ([]entities.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Attendee, 0)
	for _, attendee := range s.attendees {
		if attendee.ElectionID == electionID {
			out = append(out, attendee)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- VoteRepository

func (s *Store) SaveVotes(_ context.Context, votes []entities.Vote) ([]entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Vote, 0, len(votes))
	for _, vote := range votes {
		key := voteKey{vote.BallotID, vote.AttendeeID}
		if id, ok := s.voteByKey[key]; ok {
			vote.ID = id
		} else {
			s.voteSeq++
			vote.ID = s.voteSeq
			s.voteByKey[key] = vote.ID
		}
		s.votes[vote.ID] = vote
		out = append(out, vote)
	}
	return out, nil
}

func (s *Store) GetVoteByBallotAttendee(_ context.Context, ballotID, attendeeID int64) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.voteByKey[voteKey{ballotID, attendeeID}]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return s.votes[id], true, nil
}

func (s *Store) ListVotesByBallot(_ context.Context, ballotID int64) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.BallotID == ballotID {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
