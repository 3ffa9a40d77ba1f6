package orchestrator

import (
	"fmt"
	"log"

	"golang.org/x/exp/slices"

	"github.com/sneller-labs/coretable/backpressure"
	"github.com/sneller-labs/coretable/coretable"
	"github.com/sneller-labs/coretable/units"
)

type ingestTask struct {
	buf []byte
	seq units.BatchSeq
}

type windowRequest struct {
	startRow units.RowIndex
	rowCount uint32
}

// Worker is the worker-side endpoint: it owns the column store and
// the backpressure controller exclusively, so no locks are needed
// because nothing else ever touches them, and drains commands from
// In, emitting Events on Out.
type Worker struct {
	In  <-chan Command
	Out chan<- Event

	Logger *log.Logger

	store   *coretable.Store
	bp      *backpressure.Controller
	pending []ingestTask
	window  *windowRequest
	nextSeq units.BatchSeq
}

// NewWorker constructs a Worker reading commands from in and writing
// events to out. Call Run to start the dispatch loop; Run returns
// once In is closed or a TerminateCmd is processed.
func NewWorker(in <-chan Command, out chan<- Event) *Worker {
	return &Worker{
		In:     in,
		Out:    out,
		Logger: log.Default(),
		bp:     backpressure.New(),
	}
}

// Run is the worker's dispatch loop. It processes at most one queued
// ingest batch per iteration of the outer loop so that a long burst
// of INGEST commands cannot monopolize the endpoint and starve
// control commands (SET_WINDOW, RESIZE_VIEWPORT, TERMINATE): one batch
// per scheduling quantum.
func (w *Worker) Run() {
	defer close(w.Out)
	for {
		if len(w.pending) > 0 {
			select {
			case cmd, ok := <-w.In:
				if !ok {
					return
				}
				if w.handle(cmd) {
					return
				}
			default:
				w.processOneIngest()
				if len(w.pending) == 0 {
					w.emitWindowIfRequested()
				}
			}
			continue
		}

		cmd, ok := <-w.In
		if !ok {
			return
		}
		if w.handle(cmd) {
			return
		}
	}
}

// handle processes one non-ingest-draining command; it returns true
// if the worker should stop.
func (w *Worker) handle(cmd Command) (stop bool) {
	switch c := cmd.(type) {
	case InitCmd:
		w.store = coretable.Init(c.Schema, c.CharWidthHint, c.RowHeightHint, c.ViewportHeight)
		w.store.ChecksumSeed = c.ChecksumSeed
		w.Logger.Printf("orchestrator: store %s initialized with %d columns", w.store.ID, len(c.Schema))
		w.Out <- LayoutReadyEvent{Layout: w.store.Layout()}
	case IngestCmd:
		w.enqueueIngest(c)
	case SetWindowCmd:
		w.window = &windowRequest{startRow: c.StartRow, rowCount: c.RowCount}
		if len(w.pending) == 0 {
			w.emitWindowIfRequested()
		}
	case ResizeViewportCmd:
		if w.store != nil {
			w.store.Resize(c.Height)
			w.Out <- LayoutReadyEvent{Layout: w.store.Layout()}
			if len(w.pending) == 0 {
				w.emitWindowIfRequested()
			}
		}
	case FrameAckCmd:
		strategy, changed := w.bp.Sample(c.RenderMs)
		if changed {
			w.Out <- BackpressureEvent{
				Strategy:    strategy,
				QueueDepth:  len(w.pending),
				AvgRenderMs: w.bp.Mean(),
			}
		}
	case TerminateCmd:
		w.resolveAllPending()
		return true
	}
	return false
}

// enqueueIngest appends cmd to the pending queue, evicting the oldest
// queued batch first if the controller is in Shed and the queue is
// already at MaxQueueDepth. The evicted batch still receives its
// INGEST_ERROR and INGEST_ACK, so every ingest is acknowledged exactly
// once regardless of outcome.
func (w *Worker) enqueueIngest(cmd IngestCmd) {
	if w.bp.Strategy() == backpressure.Shed && len(w.pending) >= backpressure.MaxQueueDepth {
		evicted := w.pending[0]
		w.pending = slices.Delete(w.pending, 0, 1)
		w.Out <- IngestErrorEvent{Seq: evicted.seq, Reason: ReasonShed, Message: fmt.Sprintf("Batch %d: batch shed under SHED backpressure strategy", evicted.seq)}
		w.Out <- IngestAckEvent{Seq: evicted.seq}
		w.Logger.Printf("orchestrator: shed batch seq=%d (queue depth %d)", evicted.seq, backpressure.MaxQueueDepth)
	}
	w.pending = append(w.pending, ingestTask{buf: cmd.Buffer, seq: cmd.Seq})
}

// processOneIngest commits exactly one queued batch, following the
// parse/pre-check/append/post-check protocol owned by coretable.Store,
// then always emits exactly one IngestAckEvent for that seq, regardless
// of outcome.
func (w *Worker) processOneIngest() {
	task := w.pending[0]
	w.pending = slices.Delete(w.pending, 0, 1)

	before := w.store.TotalRows()
	err := w.store.Ingest(task.buf)
	after := w.store.TotalRows()

	if err != nil {
		reason, msg := classifyIngestError(task.seq, err)
		w.Out <- IngestErrorEvent{Seq: task.seq, Reason: reason, Message: msg}
	}
	if after != before {
		w.Out <- TotalRowsUpdatedEvent{TotalRows: after}
	}
	w.Out <- IngestAckEvent{Seq: task.seq}

	if w.bp.Strategy() == backpressure.Nominal && w.window != nil {
		w.emitWindowIfRequested()
	}
}

func classifyIngestError(seq units.BatchSeq, err error) (IngestErrorReason, string) {
	switch err.(type) {
	case *coretable.SchemaMismatchError:
		return ReasonSchemaMismatch, errMessage(seq, err)
	case *coretable.IntegrityViolationError:
		return ReasonIntegrityViolation, errMessage(seq, err)
	default:
		return ReasonParse, errMessage(seq, err)
	}
}

func errMessage(seq units.BatchSeq, err error) string {
	return fmt.Sprintf("Batch %d: %s", seq, err.Error())
}

func (w *Worker) emitWindowIfRequested() {
	if w.window == nil || w.store == nil {
		return
	}
	win := w.store.Pack(w.window.startRow, w.window.rowCount, w.nextSeq)
	w.nextSeq++
	w.Out <- WindowUpdateEvent{Window: win}
}

// resolveAllPending acks every still-queued ingest as part of a
// controlled shutdown: TERMINATE resolves pending acks, it never
// rejects them.
func (w *Worker) resolveAllPending() {
	for _, t := range w.pending {
		w.Out <- IngestAckEvent{Seq: t.seq}
	}
	w.pending = nil
}
