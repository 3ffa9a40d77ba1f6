package coretable

import (
	"encoding/binary"

	"github.com/sneller-labs/coretable/coreframe"
)

// utf8Column is the growable store for a utf8 column: a parallel pair
// of a store-absolute offsets array (offsets[rows+1], offsets[0]==0)
// and a flat byte arena.
type utf8Column struct {
	offsets []uint32
	bytes   []byte
}

func newUtf8Column() *utf8Column {
	return &utf8Column{offsets: []uint32{0}}
}

func (c *utf8Column) Type() coreframe.ColumnType { return coreframe.TypeUtf8 }

func (c *utf8Column) RowCount() uint32 { return uint32(len(c.offsets) - 1) }

// Append rebases the batch-relative offsets in frag to store-absolute
// offsets by adding the column's pre-append byte length.
func (c *utf8Column) Append(frag coreframe.ParsedColumn, batchRows uint32) {
	base := uint32(len(c.bytes))
	newOffsets := make([]uint32, batchRows)
	for i := uint32(0); i < batchRows; i++ {
		newOffsets[i] = base + frag.Utf8Offsets[i+1]
	}
	c.offsets = growAppend(c.offsets, newOffsets)
	c.bytes = growAppend(c.bytes, frag.Utf8Bytes)
}

func (c *utf8Column) CopySlice(startRow, count uint32) []byte {
	startRow, count = clampRange(startRow, count, c.RowCount())

	rebase := c.offsets[startRow]
	out := make([]uint32, count+1)
	for i := uint32(0); i <= count; i++ {
		out[i] = c.offsets[startRow+i] - rebase
	}
	dataStart := c.offsets[startRow]
	dataEnd := c.offsets[startRow+count]

	blk := make([]byte, int(count+1)*4+int(dataEnd-dataStart))
	for i, o := range out {
		binary.LittleEndian.PutUint32(blk[i*4:], o)
	}
	copy(blk[int(count+1)*4:], c.bytes[dataStart:dataEnd])
	return blk
}
