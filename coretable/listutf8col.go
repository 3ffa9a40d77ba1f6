package coretable

import (
	"encoding/binary"

	"github.com/sneller-labs/coretable/coreframe"
)

// listUtf8Column is the growable store for a list_utf8 column: a
// three-level index of row offsets (into items), item offsets (into
// bytes), and a flat byte arena, all store-absolute.
type listUtf8Column struct {
	rowOffsets  []uint32
	itemOffsets []uint32
	bytes       []byte
}

func newListUtf8Column() *listUtf8Column {
	return &listUtf8Column{
		rowOffsets:  []uint32{0},
		itemOffsets: []uint32{0},
	}
}

func (c *listUtf8Column) Type() coreframe.ColumnType { return coreframe.TypeListUtf8 }

func (c *listUtf8Column) RowCount() uint32 { return uint32(len(c.rowOffsets) - 1) }

// Append rebases the batch-relative rowOffsets (by the pre-append item
// count) and itemOffsets (by the pre-append byte length) so every
// offset in the store is store-absolute, never batch-relative.
func (c *listUtf8Column) Append(frag coreframe.ParsedColumn, batchRows uint32) {
	itemBase := uint32(len(c.itemOffsets) - 1)
	byteBase := uint32(len(c.bytes))

	newRowOffsets := make([]uint32, batchRows)
	for i := uint32(0); i < batchRows; i++ {
		newRowOffsets[i] = itemBase + frag.ListRowOffsets[i+1]
	}
	c.rowOffsets = growAppend(c.rowOffsets, newRowOffsets)

	newItemOffsets := make([]uint32, frag.TotalItems)
	for i := uint32(0); i < frag.TotalItems; i++ {
		newItemOffsets[i] = byteBase + frag.ListItemOffsets[i+1]
	}
	c.itemOffsets = growAppend(c.itemOffsets, newItemOffsets)

	c.bytes = growAppend(c.bytes, frag.ListBytes)
}

func (c *listUtf8Column) CopySlice(startRow, count uint32) []byte {
	startRow, count = clampRange(startRow, count, c.RowCount())

	itemStart := c.rowOffsets[startRow]
	itemEnd := c.rowOffsets[startRow+count]
	sliceItems := itemEnd - itemStart

	outRowOffsets := make([]uint32, count+1)
	for i := uint32(0); i <= count; i++ {
		outRowOffsets[i] = c.rowOffsets[startRow+i] - itemStart
	}

	byteStart := c.itemOffsets[itemStart]
	byteEnd := c.itemOffsets[itemEnd]
	outItemOffsets := make([]uint32, sliceItems+1)
	for i := uint32(0); i <= sliceItems; i++ {
		outItemOffsets[i] = c.itemOffsets[itemStart+i] - byteStart
	}

	size := 4 + int(count+1)*4 + int(sliceItems+1)*4 + int(byteEnd-byteStart)
	blk := make([]byte, size)
	binary.LittleEndian.PutUint32(blk[0:], sliceItems)
	pos := 4
	for _, o := range outRowOffsets {
		binary.LittleEndian.PutUint32(blk[pos:], o)
		pos += 4
	}
	for _, o := range outItemOffsets {
		binary.LittleEndian.PutUint32(blk[pos:], o)
		pos += 4
	}
	copy(blk[pos:], c.bytes[byteStart:byteEnd])
	return blk
}
