package coreframe

// RowSource produces successive row batches. It returns io.EOF-style
// termination by returning ok=false with a nil error; a non-nil error
// aborts the stream.
type RowSource interface {
	Next() (rows []Row, ok bool, err error)
}

// RowSourceFunc adapts a plain function to a RowSource.
type RowSourceFunc func() (rows []Row, ok bool, err error)

func (f RowSourceFunc) Next() (rows []Row, ok bool, err error) { return f() }

// EncodedBatch pairs an encoded wire buffer with the seq it was
// assigned.
type EncodedBatch struct {
	Seq    uint32
	Buffer []byte
}

// EncodeStream turns src into a lazy sequence of encoded buffers,
// preserving row-batch order and assigning monotonic seq numbers
// starting at 0. It calls sink once per batch and stops at the first
// error, whether from src or from sink; that error is returned.
func EncodeStream(schema []ColumnSpec, src RowSource, sink func(EncodedBatch) error) error {
	var seq uint32
	for {
		rows, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		buf := Encode(schema, rows, seq)
		if err := sink(EncodedBatch{Seq: seq, Buffer: buf}); err != nil {
			return err
		}
		seq++
	}
}
