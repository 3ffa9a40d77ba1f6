package consumerstore

import (
	"testing"

	"github.com/sneller-labs/coretable/orchestrator"
)

func totalRowsSelector(s *State) uint32 { return s.TotalRows }
func uint32Equal(a, b uint32) bool      { return a == b }

func TestSliceRecomputesOnlyOnStateChange(t *testing.T) {
	s := New()
	calls := 0
	sel := NewSlice(s, func(state *State) uint32 {
		calls++
		return state.TotalRows
	}, uint32Equal)

	sel.Get()
	sel.Get()
	sel.Get()
	if calls != 1 {
		t.Fatalf("selector invoked %d times, want 1 (state unchanged)", calls)
	}

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 7})
	sel.Get()
	if calls != 2 {
		t.Fatalf("selector invoked %d times after a state change, want 2", calls)
	}
}

func TestSliceObserveOnlyFiresOnPredicateDifference(t *testing.T) {
	s := New()
	sel := NewSlice(s, totalRowsSelector, uint32Equal)

	var notifications []uint32
	unsub := sel.Observe(func(v uint32) { notifications = append(notifications, v) })
	defer unsub()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 1})
	// status change does not touch TotalRows, so the projection is equal
	// and Observe must not re-notify.
	s.SetStatus(StatusStreaming, "")
	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 1})
	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 2})

	if len(notifications) != 2 {
		t.Fatalf("notifications = %v, want 2 entries (one per distinct TotalRows)", notifications)
	}
	if notifications[0] != 1 || notifications[1] != 2 {
		t.Fatalf("notifications = %v, want [1 2]", notifications)
	}
}

func TestSliceUnsubscribeStopsObserving(t *testing.T) {
	s := New()
	sel := NewSlice(s, totalRowsSelector, uint32Equal)
	calls := 0
	unsub := sel.Observe(func(uint32) { calls++ })
	unsub()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 9})
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 after unsubscribe", calls)
	}
}
