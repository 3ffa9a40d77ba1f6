package coreframe

import (
	"encoding/binary"
	"math"

	"github.com/sneller-labs/coretable/internal/memops"
)

// ParsedColumn exposes typed views over sub-ranges of the buffer that
// Parse was called with. The numeric and offset views alias the source
// buffer (copying only when alignment requires it, per memops) and are
// only valid for as long as that buffer is not mutated or recycled;
// Bools is always a fresh copy.
type ParsedColumn struct {
	Type ColumnType

	// Fixed-width columns.
	F64s  []float64 // TypeF64, TypeTimestampMs
	I32s  []int32   // TypeI32
	U32s  []uint32  // TypeU32
	Bools []bool    // TypeBool

	// TypeUtf8.
	Utf8Offsets []uint32
	Utf8Bytes   []byte

	// TypeListUtf8.
	TotalItems      uint32
	ListRowOffsets  []uint32
	ListItemOffsets []uint32
	ListBytes       []byte
}

// Batch is the parsed form of one wire buffer: a header plus one
// ParsedColumn per descriptor, in schema order.
type Batch struct {
	Seq      uint32
	RowCount uint32
	Columns  []ParsedColumn
}

// Parse decodes buf into a Batch of typed column views. It fails with
// ErrInvalidMagic if the leading word does not match BatchMagic, with
// an *UnknownTypeTagError if any descriptor names a tag outside the
// closed set, and with a *TruncatedError if any declared byte length
// runs past the end of buf.
func Parse(buf []byte) (*Batch, error) {
	if len(buf) < HeaderSize {
		return nil, &TruncatedError{ColumnIndex: -1, Want: HeaderSize, Have: len(buf)}
	}
	magic := binary.LittleEndian.Uint32(buf[0:])
	if magic != BatchMagic {
		return nil, ErrInvalidMagic
	}
	seq := binary.LittleEndian.Uint32(buf[4:])
	rowCount := binary.LittleEndian.Uint32(buf[8:])
	colCount := binary.LittleEndian.Uint32(buf[12:])

	descOff := HeaderSize
	descBytes := int(colCount) * DescriptorSize
	if descOff+descBytes > len(buf) {
		return nil, &TruncatedError{ColumnIndex: -1, Want: descOff + descBytes, Have: len(buf)}
	}

	descs := make([]Descriptor, colCount)
	for i := range descs {
		o := descOff + i*DescriptorSize
		tag := binary.LittleEndian.Uint32(buf[o:])
		t := ColumnType(tag)
		if !t.Valid() {
			return nil, &UnknownTypeTagError{ColumnIndex: i, Tag: tag}
		}
		descs[i] = Descriptor{
			Type:    t,
			ByteLen: binary.LittleEndian.Uint32(buf[o+4:]),
		}
	}

	dataOff := descOff + descBytes
	cols := make([]ParsedColumn, colCount)
	for i, d := range descs {
		end := dataOff + int(d.ByteLen)
		if end > len(buf) || end < dataOff {
			return nil, &TruncatedError{ColumnIndex: i, Want: end, Have: len(buf)}
		}
		block := buf[dataOff:end]
		col, err := parseColumn(i, d.Type, block, int(rowCount))
		if err != nil {
			return nil, err
		}
		cols[i] = col
		dataOff = end
	}

	return &Batch{Seq: seq, RowCount: rowCount, Columns: cols}, nil
}

func parseColumn(index int, t ColumnType, block []byte, rowCount int) (ParsedColumn, error) {
	switch t {
	case TypeF64, TypeTimestampMs:
		want := rowCount * 8
		if len(block) < want {
			return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: want, Have: len(block)}
		}
		return ParsedColumn{Type: t, F64s: memops.Float64View(block, 0, rowCount)}, nil
	case TypeI32:
		want := rowCount * 4
		if len(block) < want {
			return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: want, Have: len(block)}
		}
		return ParsedColumn{Type: t, I32s: memops.Int32View(block, 0, rowCount)}, nil
	case TypeU32:
		want := rowCount * 4
		if len(block) < want {
			return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: want, Have: len(block)}
		}
		return ParsedColumn{Type: t, U32s: memops.Uint32View(block, 0, rowCount)}, nil
	case TypeBool:
		if len(block) < rowCount {
			return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: rowCount, Have: len(block)}
		}
		bs := make([]bool, rowCount)
		for i := 0; i < rowCount; i++ {
			bs[i] = block[i] != 0
		}
		return ParsedColumn{Type: t, Bools: bs}, nil
	case TypeUtf8:
		return parseUtf8Column(index, block, rowCount)
	case TypeListUtf8:
		return parseListUtf8Column(index, block, rowCount)
	default:
		return ParsedColumn{}, &UnknownTypeTagError{ColumnIndex: index, Tag: uint32(t)}
	}
}

func parseUtf8Column(index int, block []byte, rowCount int) (ParsedColumn, error) {
	offsetsLen := (rowCount + 1) * 4
	if len(block) < offsetsLen {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: offsetsLen, Have: len(block)}
	}
	offsets := memops.Uint32View(block, 0, rowCount+1)
	byteLen := int(offsets[rowCount])
	if offsetsLen+byteLen > len(block) {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: offsetsLen + byteLen, Have: len(block)}
	}
	return ParsedColumn{
		Type:        TypeUtf8,
		Utf8Offsets: offsets,
		Utf8Bytes:   block[offsetsLen : offsetsLen+byteLen],
	}, nil
}

func parseListUtf8Column(index int, block []byte, rowCount int) (ParsedColumn, error) {
	if len(block) < 4 {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: 4, Have: len(block)}
	}
	totalItems := binary.LittleEndian.Uint32(block[0:])
	pos := 4

	rowOffsetsLen := (rowCount + 1) * 4
	if pos+rowOffsetsLen > len(block) {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: pos + rowOffsetsLen, Have: len(block)}
	}
	rowOffsets := memops.Uint32View(block, pos, rowCount+1)
	pos += rowOffsetsLen

	itemOffsetsLen := (int(totalItems) + 1) * 4
	if pos+itemOffsetsLen > len(block) {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: pos + itemOffsetsLen, Have: len(block)}
	}
	itemOffsets := memops.Uint32View(block, pos, int(totalItems)+1)
	pos += itemOffsetsLen

	byteLen := int(itemOffsets[totalItems])
	if pos+byteLen > len(block) {
		return ParsedColumn{}, &TruncatedError{ColumnIndex: index, Want: pos + byteLen, Have: len(block)}
	}

	return ParsedColumn{
		Type:            TypeListUtf8,
		TotalItems:      totalItems,
		ListRowOffsets:  rowOffsets,
		ListItemOffsets: itemOffsets,
		ListBytes:       block[pos : pos+byteLen],
	}, nil
}

// DecodeFloats is a convenience accessor for callers that want plain
// values rather than raw wire bits; it copies regardless of alignment,
// unlike the zero-copy paths in Parse.
func DecodeFloats(buf []byte) []float64 {
	n := len(buf) / 8
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out
}
