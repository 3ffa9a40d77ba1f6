package coretable

import (
	"encoding/binary"

	"github.com/dchest/siphash"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

// Window is a single contiguous wire-format buffer covering exactly
// RowCount consecutive rows beginning at StartRow. Ownership of Buffer
// transfers to whoever receives the Window; the store never retains a
// reference to it once Pack returns.
type Window struct {
	Seq      units.BatchSeq
	StartRow units.RowIndex
	RowCount uint32
	Layout   ViewportLayout
	Buffer   []byte

	// Checksum is non-zero only when Store.ChecksumSeed is non-zero;
	// see Store.Pack. It is metadata for callers bridging a window
	// across a process boundary and plays no part in the wire format
	// itself.
	Checksum uint64
}

// Pack slices every column over [startRow, startRow+count) and
// concatenates the results into one wire-format buffer, framed with
// the standard 16-byte header and per-column descriptors — the same
// format an encoded ingest batch uses. startRow and count are clamped
// to the store's current row count before any column is sliced.
func (s *Store) Pack(startRow units.RowIndex, count uint32, seq units.BatchSeq) Window {
	start, actual := clampRange(uint32(startRow), count, s.totalRows)

	blocks := make([][]byte, len(s.columns))
	for i, c := range s.columns {
		blocks[i] = c.CopySlice(start, actual)
	}

	total := coreframe.HeaderSize + len(s.columns)*coreframe.DescriptorSize
	for _, b := range blocks {
		total += len(b)
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:], coreframe.BatchMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(seq))
	binary.LittleEndian.PutUint32(buf[8:], actual)
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(s.columns)))

	off := coreframe.HeaderSize
	for i, c := range s.columns {
		binary.LittleEndian.PutUint32(buf[off:], uint32(c.Type()))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(len(blocks[i])))
		off += coreframe.DescriptorSize
	}
	for _, b := range blocks {
		off += copy(buf[off:], b)
	}

	w := Window{
		Seq:      seq,
		StartRow: units.RowIndex(start),
		RowCount: actual,
		Layout:   s.Layout(),
		Buffer:   buf,
	}
	if s.ChecksumSeed != 0 {
		w.Checksum = siphash.Hash(s.ChecksumSeed, ^s.ChecksumSeed, buf)
	}
	return w
}
