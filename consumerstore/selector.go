package consumerstore

import "sync"

// Slice projects a subset of State through selector and re-notifies
// only when that projection actually differs, per equality — not on
// every state change. It is an explicit listener-set implementation
// with a per-observer last-snapshot cache, favoring explicit
// bookkeeping over external pub/sub machinery.
type Slice[T any] struct {
	store     *Store
	selector  func(*State) T
	equal     func(a, b T) bool
	mu        sync.Mutex
	lastState *State
	last      T
	haveLast  bool
}

// NewSlice builds a Slice bound to store. It does not subscribe by
// itself; call Observe to register a callback, or Get for one-shot
// reads.
func NewSlice[T any](store *Store, selector func(*State) T, equal func(a, b T) bool) *Slice[T] {
	return &Slice[T]{store: store, selector: selector, equal: equal}
}

// Get recomputes (if the store's state reference has changed since
// the last call) and returns the current projection.
func (s *Slice[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(s.store.GetState())
}

// recomputeLocked must be called with s.mu held. It skips calling
// selector entirely when the underlying *State pointer hasn't moved,
// since Store.mutate guarantees a fresh pointer on every real change.
func (s *Slice[T]) recomputeLocked(state *State) T {
	if s.haveLast && state == s.lastState {
		return s.last
	}
	v := s.selector(state)
	s.lastState = state
	s.last = v
	s.haveLast = true
	return v
}

// Observe subscribes to the underlying store and invokes onChange
// with the new projection only when it differs from the previous one
// under equal. It returns an unsubscribe function.
func (s *Slice[T]) Observe(onChange func(T)) (unsubscribe func()) {
	return s.store.Subscribe(func(state *State) {
		s.mu.Lock()
		prev, hadPrev := s.last, s.haveLast
		next := s.recomputeLocked(state)
		s.mu.Unlock()

		if hadPrev && s.equal(prev, next) {
			return
		}
		onChange(next)
	})
}
