package coretable

import (
	"encoding/binary"
	"math"

	"github.com/sneller-labs/coretable/coreframe"
)

// growAppend appends extra to data, doubling capacity in one shot
// whenever the current capacity would be exceeded, rather than
// relying on however the runtime happens to grow a plain append. This
// keeps the amortized-O(1), one-shot-copy behavior an explicit,
// testable property of the column rather than an implementation
// accident of the Go runtime.
func growAppend[T any](data []T, extra []T) []T {
	need := len(data) + len(extra)
	if need <= cap(data) {
		return append(data, extra...)
	}
	newCap := cap(data) * 2
	if newCap < need {
		newCap = need
	}
	if newCap < 8 {
		newCap = 8
	}
	grown := make([]T, len(data), newCap)
	copy(grown, data)
	return append(grown, extra...)
}

// numericColumn is the growable store for every fixed-width wire type
// (f64, i32, u32, bool, timestamp_ms). The underlying storage is a
// typed contiguous slice of the element type itself, per the store
// contract; CopySlice re-serializes to wire bytes on demand.
type numericColumn[T any] struct {
	typ    coreframe.ColumnType
	data   []T
	encode func(dst []byte, v T)
	pick   func(frag coreframe.ParsedColumn) []T
}

func newNumericColumn(t coreframe.ColumnType) Column {
	switch t {
	case coreframe.TypeF64, coreframe.TypeTimestampMs:
		return &numericColumn[float64]{
			typ: t,
			encode: func(dst []byte, v float64) {
				binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
			},
			pick: func(frag coreframe.ParsedColumn) []float64 { return frag.F64s },
		}
	case coreframe.TypeI32:
		return &numericColumn[int32]{
			typ: t,
			encode: func(dst []byte, v int32) {
				binary.LittleEndian.PutUint32(dst, uint32(v))
			},
			pick: func(frag coreframe.ParsedColumn) []int32 { return frag.I32s },
		}
	case coreframe.TypeU32:
		return &numericColumn[uint32]{
			typ: t,
			encode: func(dst []byte, v uint32) {
				binary.LittleEndian.PutUint32(dst, v)
			},
			pick: func(frag coreframe.ParsedColumn) []uint32 { return frag.U32s },
		}
	case coreframe.TypeBool:
		return &numericColumn[bool]{
			typ: t,
			encode: func(dst []byte, v bool) {
				if v {
					dst[0] = 1
				} else {
					dst[0] = 0
				}
			},
			pick: func(frag coreframe.ParsedColumn) []bool { return frag.Bools },
		}
	default:
		panic("coretable: not a fixed-width type: " + t.String())
	}
}

func (c *numericColumn[T]) Type() coreframe.ColumnType { return c.typ }

func (c *numericColumn[T]) RowCount() uint32 { return uint32(len(c.data)) }

func (c *numericColumn[T]) Append(frag coreframe.ParsedColumn, batchRows uint32) {
	vals := c.pick(frag)
	c.data = growAppend(c.data, vals[:batchRows])
}

func (c *numericColumn[T]) CopySlice(startRow, count uint32) []byte {
	startRow, count = clampRange(startRow, count, c.RowCount())
	elemSize := c.typ.FixedElemSize()
	out := make([]byte, int(count)*elemSize)
	for i := uint32(0); i < count; i++ {
		c.encode(out[int(i)*elemSize:], c.data[startRow+i])
	}
	return out
}
