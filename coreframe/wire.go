// Package coreframe implements the little-endian, columnar record-batch
// wire format: a 16-byte header, a column-descriptor table, and
// concatenated per-column data blocks. It knows nothing about how
// columns are stored once ingested; coretable owns that.
package coreframe

// BatchMagic opens every valid wire buffer.
const BatchMagic uint32 = 0xAC1DC0DE

// HeaderSize is the fixed size, in bytes, of the wire header.
const HeaderSize = 16

// DescriptorSize is the fixed size, in bytes, of one column descriptor.
const DescriptorSize = 8

// ColumnType is the closed set of column type tags that can appear on
// the wire. The numeric value is the wire tag itself.
type ColumnType uint32

const (
	TypeF64         ColumnType = 0
	TypeI32         ColumnType = 1
	TypeU32         ColumnType = 2
	TypeBool        ColumnType = 3
	TypeTimestampMs ColumnType = 4
	TypeUtf8        ColumnType = 5
	TypeListUtf8    ColumnType = 6
)

// Valid reports whether t is one of the closed set of wire type tags.
func (t ColumnType) Valid() bool {
	return t <= TypeListUtf8
}

func (t ColumnType) String() string {
	switch t {
	case TypeF64:
		return "f64"
	case TypeI32:
		return "i32"
	case TypeU32:
		return "u32"
	case TypeBool:
		return "bool"
	case TypeTimestampMs:
		return "timestamp_ms"
	case TypeUtf8:
		return "utf8"
	case TypeListUtf8:
		return "list_utf8"
	default:
		return "unknown"
	}
}

// FixedElemSize returns the per-row byte width for fixed-width column
// types (f64, i32, u32, bool, timestamp_ms), and 0 for the two
// variable-length types, which have no fixed per-row size.
func (t ColumnType) FixedElemSize() int {
	switch t {
	case TypeF64, TypeTimestampMs:
		return 8
	case TypeI32, TypeU32:
		return 4
	case TypeBool:
		return 1
	default:
		return 0
	}
}

// Descriptor is one column's wire-level descriptor: its type tag and
// the byte length of its data block.
type Descriptor struct {
	Type    ColumnType
	ByteLen uint32
}
