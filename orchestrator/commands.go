// Package orchestrator implements the two cooperating endpoints of
// the ingest pipeline: the worker-side dispatch loop that owns the
// column store, and the main-side pump that feeds it one batch at a
// time, gated by acknowledgements.
package orchestrator

import (
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/units"
)

// Command is the closed set of messages the main side may send to the
// worker. Each concrete type below implements it.
type Command interface{ isCommand() }

// InitCmd establishes the schema and initial layout hints. It must be
// the first command sent to a worker.
type InitCmd struct {
	Schema         []coretable.Schema
	CharWidthHint  float64
	RowHeightHint  units.PixelSize
	ViewportHeight units.PixelSize

	// ChecksumSeed, when non-zero, is carried onto the Store so every
	// Window it Packs also carries a siphash-2-4 checksum. Zero leaves
	// windows unchecksummed, the default.
	ChecksumSeed uint64
}

// IngestCmd carries one encoded record batch. Buffer is transferred:
// the sender must not read or write it after the command is sent.
type IngestCmd struct {
	Buffer []byte
	Seq    units.BatchSeq
}

// SetWindowCmd requests that the worker begin tracking a new visible
// row range.
type SetWindowCmd struct {
	StartRow units.RowIndex
	RowCount uint32
}

// ResizeViewportCmd informs the worker of a new viewport height, in
// pixels, prompting a layout recomputation.
type ResizeViewportCmd struct {
	Height units.PixelSize
}

// FrameAckCmd reports how long the last rendered frame took, feeding
// the backpressure controller.
type FrameAckCmd struct {
	RenderMs units.Milliseconds
	Seq      units.BatchSeq
}

// TerminateCmd requests a controlled shutdown: the worker stops after
// resolving (not rejecting) any ACKs it still owes.
type TerminateCmd struct{}

func (InitCmd) isCommand()           {}
func (IngestCmd) isCommand()         {}
func (SetWindowCmd) isCommand()      {}
func (ResizeViewportCmd) isCommand() {}
func (FrameAckCmd) isCommand()       {}
func (TerminateCmd) isCommand()      {}
