package consumerstore

import (
	"testing"

	"github.com/sneller-labs/coretable/orchestrator"
)

func TestDispatchProducesFreshSnapshotOnChange(t *testing.T) {
	s := New()
	before := s.GetState()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 10})
	after := s.GetState()

	if before == after {
		t.Fatal("expected a new *State after a row-count change")
	}
	if after.TotalRows != 10 {
		t.Fatalf("TotalRows = %d, want 10", after.TotalRows)
	}
}

func TestTotalRowsUpdatedSuppressedWhenUnchanged(t *testing.T) {
	s := New()
	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 5})
	first := s.GetState()

	notified := false
	unsub := s.Subscribe(func(*State) { notified = true })
	defer unsub()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 5})
	second := s.GetState()

	if first != second {
		t.Fatal("expected the same *State when TotalRows does not change")
	}
	if notified {
		t.Fatal("expected no notification for a no-op TOTAL_ROWS_UPDATED")
	}
}

func TestSubscribeReceivesSynchronousNotification(t *testing.T) {
	s := New()
	var seen []uint32
	unsub := s.Subscribe(func(state *State) { seen = append(seen, state.TotalRows) })
	defer unsub()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 1})
	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 2})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("seen = %v, want [1 2]", seen)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New()
	calls := 0
	unsub := s.Subscribe(func(*State) { calls++ })
	unsub()

	s.Dispatch(orchestrator.TotalRowsUpdatedEvent{TotalRows: 1})
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 after unsubscribe", calls)
	}
}

func TestIngestErrorSetsErrorStatusOnIntegrityViolation(t *testing.T) {
	s := New()
	s.Dispatch(orchestrator.IngestErrorEvent{
		Seq:     3,
		Reason:  orchestrator.ReasonIntegrityViolation,
		Message: "Batch 3: integrity violation",
	})
	state := s.GetState()
	if state.Status != StatusError {
		t.Fatalf("Status = %v, want StatusError", state.Status)
	}
	if state.Err == nil || state.Err.Error() != "Batch 3: integrity violation" {
		t.Fatalf("Err = %v, want %q", state.Err, "Batch 3: integrity violation")
	}
}

func TestIngestErrorSchemaMismatchDoesNotChangeStatus(t *testing.T) {
	s := New()
	s.SetStatus(StatusStreaming, "")
	s.Dispatch(orchestrator.IngestErrorEvent{
		Seq:     3,
		Reason:  orchestrator.ReasonSchemaMismatch,
		Message: "Batch 3: schema mismatch",
	})
	state := s.GetState()
	if state.Status != StatusStreaming {
		t.Fatalf("Status = %v, want StatusStreaming (schema mismatch should not flip status)", state.Status)
	}
}

func TestSetPitchAndSetStatus(t *testing.T) {
	s := New()
	s.SetPitch(24)
	s.SetStatus(StatusComplete, "")
	state := s.GetState()
	if state.Pitch != 24 {
		t.Fatalf("Pitch = %d, want 24", state.Pitch)
	}
	if state.Status != StatusComplete {
		t.Fatalf("Status = %v, want StatusComplete", state.Status)
	}
	if state.Err != nil {
		t.Fatalf("Err = %v, want nil", state.Err)
	}
}
