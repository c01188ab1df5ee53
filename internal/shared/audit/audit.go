package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry documents one privileged state change. Entries are written
// synchronously alongside the mutation they describe and are never read
// back by core logic.
type Entry struct {
	ID         string    `json:"id"`
	ElectionID int64     `json:"election_id"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	At         time.Time `json:"at"`
}

// Recorder is the audit sink consumed by application services.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Reader lists recorded entries for the audit endpoint.
type Reader interface {
	List(ctx context.Context, electionID int64) ([]Entry, error)
}

// NewEntry stamps an id so callers only fill the business fields.
func NewEntry(electionID int64, username, action, details string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		ElectionID: electionID,
		Username:   username,
		Action:     action,
		Details:    details,
	}
}

// MemoryRecorder keeps entries in insertion order.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryRecorder) List(_ context.Context, electionID int64) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0)
	for _, entry := range r.entries {
		if entry.ElectionID == electionID {
			out = append(out, entry)
		}
	}
	return out, nil
}
