package testutil

import (
	"sync"

	"github.com/roach88/socialgraph/internal/ir"
)

// RecordingSink captures every emitted event in order.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingSink struct {
	mu     sync.Mutex
	events []ir.Event
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Emit implements engine.EventSink.
func (s *RecordingSink) Emit(ev ir.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything recorded so far.
func (s *RecordingSink) Events() []ir.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ir.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Kinds returns the kind of each recorded event, in order.
func (s *RecordingSink) Kinds() []ir.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]ir.EventKind, len(s.events))
	for i, ev := range s.events {
		kinds[i] = ev.Kind()
	}
	return kinds
}

// Last returns the most recent event, or nil.
func (s *RecordingSink) Last() ir.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Reset discards recorded events.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
