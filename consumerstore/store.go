// Package consumerstore implements the main-thread-facing immutable
// state store: every applied event produces a new State snapshot and
// fans it out to subscribers synchronously.
package consumerstore

import (
	"fmt"
	"sync"

	"github.com/sneller-labs/coretable/backpressure"
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/orchestrator"
)

// Status is the store's coarse lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusStreaming
	StatusComplete
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// BackpressureInfo mirrors the fields of a BackpressureEvent for
// consumer display.
type BackpressureInfo struct {
	Strategy    backpressure.Strategy
	QueueDepth  int
	AvgRenderMs float64
}

// State is one immutable snapshot of consumer-visible store state.
// Store never mutates a State in place; Dispatch always builds a new
// one so that identity comparison (== on the pointer) answers "did
// anything change".
type State struct {
	Status        Status
	Layout        *coretable.ViewportLayout
	Window        *coretable.Window
	Backpressure  BackpressureInfo
	TotalRows     uint32
	Err           error
	Pitch         uint32 // consumer-measured row height; 0 means "unset"
}

// Store owns the current State and the set of subscribers to notify
// on every change. It is safe for concurrent use; Dispatch, Subscribe
// and the setters all take the same mutex guarding a single
// listener-set fan-out.
type Store struct {
	mu        sync.Mutex
	state     *State
	listeners map[int]func(*State)
	nextID    int
}

// New returns a Store in the idle state with zero totals.
func New() *Store {
	return &Store{
		state:     &State{Status: StatusIdle},
		listeners: make(map[int]func(*State)),
	}
}

// GetState returns the current snapshot. The returned pointer is
// never mutated in place; a later Dispatch replaces it wholesale.
func (s *Store) GetState() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers listener to be called, synchronously, after
// every state mutation. It returns an unsubscribe function.
func (s *Store) Subscribe(listener func(*State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SetStatus transitions the store's status, optionally attaching an
// error message (formatted as "Batch {seq}: {message}" by callers
// that have a seq to report).
func (s *Store) SetStatus(status Status, errorMessage string) {
	s.mutate(func(next *State) {
		next.Status = status
		if errorMessage != "" {
			next.Err = fmt.Errorf("%s", errorMessage)
		} else {
			next.Err = nil
		}
	})
}

// SetPitch records the consumer-measured row height in pixels; 0
// means "unset, use layout.RowHeight".
func (s *Store) SetPitch(pixels uint32) {
	s.mutate(func(next *State) { next.Pitch = pixels })
}

// Dispatch applies one orchestrator event to the store, producing a
// new State. TOTAL_ROWS_UPDATED is suppressed (no new snapshot, no
// notification) when it would not change TotalRows.
func (s *Store) Dispatch(ev orchestrator.Event) {
	switch e := ev.(type) {
	case orchestrator.LayoutReadyEvent:
		layout := e.Layout
		s.mutate(func(next *State) {
			next.Layout = &layout
			if next.Status == StatusIdle {
				next.Status = StatusStreaming
			}
		})
	case orchestrator.WindowUpdateEvent:
		win := e.Window
		s.mutate(func(next *State) { next.Window = &win })
	case orchestrator.BackpressureEvent:
		s.mutate(func(next *State) {
			next.Backpressure = BackpressureInfo{
				Strategy:    e.Strategy,
				QueueDepth:  e.QueueDepth,
				AvgRenderMs: e.AvgRenderMs,
			}
		})
	case orchestrator.TotalRowsUpdatedEvent:
		s.mu.Lock()
		unchanged := s.state.TotalRows == e.TotalRows
		s.mu.Unlock()
		if unchanged {
			return
		}
		s.mutate(func(next *State) { next.TotalRows = e.TotalRows })
	case orchestrator.IngestErrorEvent:
		// e.Message is already formatted as "Batch {seq}: {detail}" by
		// the worker (see orchestrator.errMessage).
		s.mutate(func(next *State) {
			next.Err = fmt.Errorf("%s", e.Message)
			if e.Reason == orchestrator.ReasonIntegrityViolation {
				next.Status = StatusError
			}
		})
	case orchestrator.IngestAckEvent:
		// no consumer-visible state changes on a bare ACK.
	}
}

// mutate copies the current state, lets fn edit the copy, installs it
// as the new snapshot, and notifies every listener synchronously —
// always a fresh *State, never an in-place edit.
func (s *Store) mutate(fn func(next *State)) {
	s.mu.Lock()
	next := *s.state
	fn(&next)
	s.state = &next
	listeners := make([]func(*State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(&next)
	}
}
