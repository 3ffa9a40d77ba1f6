package orchestrator

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

// ErrAborted is the error every pending ACK resolves with when the
// pump is cancelled by its caller (not a failure of the pipeline
// itself).
var ErrAborted = errors.New("orchestrator: pump aborted")

// ErrTransportCrash is the error every pending ACK resolves with when
// the worker side goes away unexpectedly (its event channel closes
// while the pump still has ACKs outstanding and no TERMINATE was
// requested).
var ErrTransportCrash = errors.New("orchestrator: transport crash")

type ackWait struct{ done chan error }

// Pump is the main-side endpoint. It reads row batches from Source
// one at a time, encodes and posts each as an IngestCmd, and blocks
// until the corresponding ACK arrives before moving to the next
// batch — bounding in-flight ingest to exactly one. Every event
// the worker emits, including ACKs, is also forwarded to OnEvent so a
// caller (typically a consumerstore.Store) observes the full event
// stream in arrival order.
type Pump struct {
	Out     chan<- Command
	In      <-chan Event
	Source  coreframe.RowSource
	Schema  []coreframe.ColumnSpec
	OnEvent func(Event)
	Logger  *log.Logger

	mu        sync.Mutex
	waits     map[units.BatchSeq]*ackWait
	nextSeq   units.BatchSeq
	abortOnce sync.Once
	abortCh   chan struct{}
	crashed   error
}

// NewPump constructs a Pump. Call Dispatch in its own goroutine before
// calling Run so that events (and ACK resolutions) are drained
// concurrently with posting.
func NewPump(out chan<- Command, in <-chan Event, schema []coreframe.ColumnSpec, src coreframe.RowSource) *Pump {
	return &Pump{
		Out:     out,
		In:      in,
		Source:  src,
		Schema:  schema,
		Logger:  log.Default(),
		waits:   make(map[units.BatchSeq]*ackWait),
		abortCh: make(chan struct{}),
	}
}

// Dispatch drains In until it closes, resolving ACK waiters and
// forwarding every event to OnEvent. It must run concurrently with
// Run. When In closes, any ACKs still outstanding are rejected with
// ErrTransportCrash unless the pump already initiated a controlled
// TERMINATE (see Terminate), in which case they are resolved.
func (p *Pump) Dispatch() {
	for ev := range p.In {
		if p.OnEvent != nil {
			p.OnEvent(ev)
		}
		if e, ok := ev.(IngestAckEvent); ok {
			p.resolve(e.Seq, nil)
		}
	}
	p.mu.Lock()
	remaining := p.waits
	p.waits = make(map[units.BatchSeq]*ackWait)
	shuttingDown := p.crashed == errControlledShutdownMarker
	p.mu.Unlock()

	err := ErrTransportCrash
	if shuttingDown {
		err = nil
	}
	for _, w := range remaining {
		w.done <- err
	}
}

// errControlledShutdownMarker is a sentinel stored in crashed to
// signal Dispatch that the channel close it is about to observe was
// requested, not a crash.
var errControlledShutdownMarker = errors.New("controlled shutdown")

// Terminate marks the upcoming channel closure (or already-pending
// ACKs) as a controlled shutdown, then sends TerminateCmd.
func (p *Pump) Terminate() {
	p.mu.Lock()
	p.crashed = errControlledShutdownMarker
	p.mu.Unlock()
	p.Out <- TerminateCmd{}
}

func (p *Pump) resolve(seq units.BatchSeq, err error) {
	p.mu.Lock()
	w, ok := p.waits[seq]
	if ok {
		delete(p.waits, seq)
	}
	p.mu.Unlock()
	if ok {
		w.done <- err
	}
}

// Run drives Source to completion, posting one IngestCmd per batch
// and awaiting its ACK before requesting the next. It returns nil
// when Source is exhausted, ErrAborted if Abort was called, or
// ErrTransportCrash/the source's own error otherwise.
func (p *Pump) Run() error {
	for {
		rows, ok, err := p.Source.Next()
		if err != nil {
			return fmt.Errorf("orchestrator: row source: %w", err)
		}
		if !ok {
			return nil
		}

		seq := p.nextSeq
		p.nextSeq++
		buf := coreframe.Encode(p.Schema, rows, uint32(seq))

		w := &ackWait{done: make(chan error, 1)}
		p.mu.Lock()
		p.waits[seq] = w
		p.mu.Unlock()

		select {
		case p.Out <- IngestCmd{Buffer: buf, Seq: seq}:
		case <-p.abortCh:
			p.mu.Lock()
			delete(p.waits, seq)
			p.mu.Unlock()
			return ErrAborted
		}

		select {
		case err := <-w.done:
			if err != nil {
				return err
			}
		case <-p.abortCh:
			return ErrAborted
		}
	}
}

// Abort cancels the pump: the in-flight wait (if any) and every
// future Run iteration returns ErrAborted.
func (p *Pump) Abort() {
	p.abortOnce.Do(func() {
		close(p.abortCh)
		p.mu.Lock()
		remaining := p.waits
		p.waits = make(map[units.BatchSeq]*ackWait)
		p.mu.Unlock()
		for _, w := range remaining {
			w.done <- ErrAborted
		}
	})
}
