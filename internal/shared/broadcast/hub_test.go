package broadcast

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// chanSender hands every delivered frame to the test goroutine.
type chanSender struct {
	frames chan []byte
}

func newChanSender() *chanSender {
	return &chanSender{frames: make(chan []byte, 8)}
}

func (s *chanSender) Send(data []byte) error {
	s.frames <- data
	return nil
}

func (s *chanSender) next(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-s.frames:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func (s *chanSender) quiet(t *testing.T) {
	t.Helper()
	select {
	case data := <-s.frames:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastPartitionsByElection(t *testing.T) {
	hub := NewHub(nil)
	one := newChanSender()
	two := newChanSender()
	hub.Register(1, one)
	hub.Register(2, two)

	hub.Broadcast(1, map[string]any{"summary": map[string]int{"total": 3}})

	var decoded map[string]map[string]int
	if err := json.Unmarshal(one.next(t), &decoded); err != nil {
		t.Fatalf("frame is not json: %v", err)
	}
	if decoded["summary"]["total"] != 3 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
	two.quiet(t)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	sender := newChanSender()
	id := hub.Register(1, sender)

	hub.Broadcast(1, "hello")
	sender.next(t)

	hub.Unregister(id)
	hub.Unregister(id) // repeated unregister is safe
	hub.Broadcast(1, "gone")
	sender.quiet(t)
}

type failingSender struct {
	once sync.Once
	done chan struct{}
}

func (s *failingSender) Send([]byte) error {
	s.once.Do(func() { close(s.done) })
	return errors.New("connection reset")
}

func TestFailingSenderIsDropped(t *testing.T) {
	hub := NewHub(nil)
	failing := &failingSender{done: make(chan struct{})}
	hub.Register(1, failing)
	healthy := newChanSender()
	hub.Register(1, healthy)

	hub.Broadcast(1, "first")
	select {
	case <-failing.done:
	case <-time.After(time.Second):
		t.Fatal("failing sender never saw the frame")
	}
	healthy.next(t)

	// The failed client must be gone; the healthy one keeps receiving.
	hub.Broadcast(1, "second")
	healthy.next(t)
}
