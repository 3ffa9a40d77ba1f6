// Package units defines branded scalar types shared by coretable and
// orchestrator: semantically distinct integers each get their own
// named type, even though they share an underlying representation, so
// that a RowIndex can never be passed where a BatchSeq is expected
// without an explicit conversion.
package units

// RowIndex identifies a row's position within a store, zero-based.
type RowIndex uint32

// PixelSize is a length in device pixels.
type PixelSize uint32

// Milliseconds is a duration or timestamp component measured in
// milliseconds.
type Milliseconds uint32

// BatchSeq is the monotonic sequence number of an ingest command or a
// window emission. Ingest and window sequences are independent
// counters (see orchestrator.Pump and orchestrator.Worker).
type BatchSeq uint32

// PoolSlot identifies a slot in a consumer-side DOM/recycling pool.
// The core engine never allocates one; it is carried only so that
// consumer-facing events can reference a slot without losing type
// safety.
type PoolSlot uint32
