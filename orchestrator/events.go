package orchestrator

import (
	"github.com/sneller-labs/coretable/backpressure"
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/units"
)

// Event is the closed set of messages the worker may send back to the
// main side. Each concrete type below implements it.
type Event interface{ isEvent() }

// LayoutReadyEvent announces the layout computed in response to Init.
type LayoutReadyEvent struct {
	Layout coretable.ViewportLayout
}

// WindowUpdateEvent carries a freshly packed window. Window.Buffer is
// transferred to the receiver.
type WindowUpdateEvent struct {
	Window coretable.Window
}

// BackpressureEvent is emitted only when the controller's strategy
// changes.
type BackpressureEvent struct {
	Strategy    backpressure.Strategy
	QueueDepth  int
	AvgRenderMs float64
}

// TotalRowsUpdatedEvent is emitted after a commit that changes the
// store's row count.
type TotalRowsUpdatedEvent struct {
	TotalRows uint32
}

// IngestErrorReason classifies why a given ingest failed, for
// consumer-facing diagnostics.
type IngestErrorReason int

const (
	ReasonParse IngestErrorReason = iota
	ReasonSchemaMismatch
	ReasonIntegrityViolation
	ReasonShed
)

// IngestErrorEvent reports that a specific ingest seq failed. It is
// always followed by an IngestAckEvent for the same seq.
type IngestErrorEvent struct {
	Seq     units.BatchSeq
	Reason  IngestErrorReason
	Message string
}

// IngestAckEvent acknowledges that seq has been fully processed,
// successfully or not. Every IngestCmd eventually yields exactly one
// of these.
type IngestAckEvent struct {
	Seq units.BatchSeq
}

func (LayoutReadyEvent) isEvent()      {}
func (WindowUpdateEvent) isEvent()     {}
func (BackpressureEvent) isEvent()     {}
func (TotalRowsUpdatedEvent) isEvent() {}
func (IngestErrorEvent) isEvent()      {}
func (IngestAckEvent) isEvent()        {}
