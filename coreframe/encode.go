package coreframe

import (
	"encoding/binary"
	"math"
)

// ColumnSpec is the codec's view of a schema entry: a name (opaque to
// the codec) and a wire type. Layout-only fields (maxContentChars,
// fixedWidth) live in coretable.Schema, one level up.
type ColumnSpec struct {
	Name string
	Type ColumnType
}

// Row is one input record: column name to arbitrary Go value. Missing
// keys and nil values are coerced per column type (see Encode).
type Row map[string]any

// Encode serializes rows under schema into one contiguous wire buffer
// tagged with seq, applying the coercion rules from the codec's encode
// contract: missing/null numeric becomes 0, non-boolean input to a
// bool column becomes 1 iff truthy, missing utf8 becomes "", and a
// non-array input to a list_utf8 column becomes an empty list.
// Fractional input to an integer column is truncated toward zero.
func Encode(schema []ColumnSpec, rows []Row, seq uint32) []byte {
	n := len(rows)

	// Pass 1: coerce every cell once so blob sizes are known up front
	// and the buffer can be allocated exactly, matching the column
	// store's own two-phase append discipline.
	f64s := make([][]float64, len(schema))
	i32s := make([][]int32, len(schema))
	u32s := make([][]uint32, len(schema))
	bools := make([][]bool, len(schema))
	strs := make([][]string, len(schema))
	lists := make([][][]string, len(schema))

	for ci, col := range schema {
		switch col.Type {
		case TypeF64, TypeTimestampMs:
			vs := make([]float64, n)
			for ri, row := range rows {
				vs[ri] = coerceFloat(row[col.Name])
			}
			f64s[ci] = vs
		case TypeI32:
			vs := make([]int32, n)
			for ri, row := range rows {
				vs[ri] = int32(coerceInt(row[col.Name]))
			}
			i32s[ci] = vs
		case TypeU32:
			vs := make([]uint32, n)
			for ri, row := range rows {
				vs[ri] = uint32(coerceInt(row[col.Name]))
			}
			u32s[ci] = vs
		case TypeBool:
			vs := make([]bool, n)
			for ri, row := range rows {
				vs[ri] = coerceBool(row[col.Name])
			}
			bools[ci] = vs
		case TypeUtf8:
			vs := make([]string, n)
			for ri, row := range rows {
				vs[ri] = coerceString(row[col.Name])
			}
			strs[ci] = vs
		case TypeListUtf8:
			vs := make([][]string, n)
			for ri, row := range rows {
				vs[ri] = coerceStringList(row[col.Name])
			}
			lists[ci] = vs
		}
	}

	descs := make([]Descriptor, len(schema))
	blocks := make([][]byte, len(schema))
	for ci, col := range schema {
		var blk []byte
		switch col.Type {
		case TypeF64, TypeTimestampMs:
			blk = make([]byte, n*8)
			for i, v := range f64s[ci] {
				binary.LittleEndian.PutUint64(blk[i*8:], math.Float64bits(v))
			}
		case TypeI32:
			blk = make([]byte, n*4)
			for i, v := range i32s[ci] {
				binary.LittleEndian.PutUint32(blk[i*4:], uint32(v))
			}
		case TypeU32:
			blk = make([]byte, n*4)
			for i, v := range u32s[ci] {
				binary.LittleEndian.PutUint32(blk[i*4:], v)
			}
		case TypeBool:
			blk = make([]byte, n)
			for i, v := range bools[ci] {
				if v {
					blk[i] = 1
				}
			}
		case TypeUtf8:
			blk = encodeUtf8Block(strs[ci])
		case TypeListUtf8:
			blk = encodeListUtf8Block(lists[ci])
		}
		blocks[ci] = blk
		descs[ci] = Descriptor{Type: col.Type, ByteLen: uint32(len(blk))}
	}

	total := HeaderSize + len(schema)*DescriptorSize
	for _, b := range blocks {
		total += len(b)
	}
	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:], BatchMagic)
	binary.LittleEndian.PutUint32(out[4:], seq)
	binary.LittleEndian.PutUint32(out[8:], uint32(n))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(schema)))

	off := HeaderSize
	for _, d := range descs {
		binary.LittleEndian.PutUint32(out[off:], uint32(d.Type))
		binary.LittleEndian.PutUint32(out[off+4:], d.ByteLen)
		off += DescriptorSize
	}
	for _, b := range blocks {
		off += copy(out[off:], b)
	}
	return out
}

func encodeUtf8Block(vals []string) []byte {
	n := len(vals)
	offsets := make([]uint32, n+1)
	var total uint32
	for i, s := range vals {
		offsets[i] = total
		total += uint32(len(s))
	}
	offsets[n] = total

	blk := make([]byte, (n+1)*4+int(total))
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(blk[i*4:], o)
	}
	pos := (n + 1) * 4
	for _, s := range vals {
		pos += copy(blk[pos:], s)
	}
	return blk
}

func encodeListUtf8Block(vals [][]string) []byte {
	n := len(vals)
	rowOffsets := make([]uint32, n+1)
	var totalItems uint32
	for i, items := range vals {
		rowOffsets[i] = totalItems
		totalItems += uint32(len(items))
	}
	rowOffsets[n] = totalItems

	itemOffsets := make([]uint32, totalItems+1)
	var totalBytes uint32
	idx := uint32(0)
	for _, items := range vals {
		for _, s := range items {
			itemOffsets[idx] = totalBytes
			totalBytes += uint32(len(s))
			idx++
		}
	}
	itemOffsets[totalItems] = totalBytes

	size := 4 + (n+1)*4 + int(totalItems+1)*4 + int(totalBytes)
	blk := make([]byte, size)
	binary.LittleEndian.PutUint32(blk[0:], totalItems)
	pos := 4
	for _, o := range rowOffsets {
		binary.LittleEndian.PutUint32(blk[pos:], o)
		pos += 4
	}
	for _, o := range itemOffsets {
		binary.LittleEndian.PutUint32(blk[pos:], o)
		pos += 4
	}
	for _, items := range vals {
		for _, s := range items {
			pos += copy(blk[pos:], s)
		}
	}
	return blk
}

func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint32:
		return float64(x)
	default:
		return 0
	}
}

func coerceInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(math.Trunc(x))
	case float32:
		return int64(math.Trunc(float64(x)))
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint32:
		return int64(x)
	default:
		return 0
	}
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case float32, int32, int64, uint32:
		return coerceFloat(x) != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return ""
	}
}

func coerceStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, len(x))
		for i, item := range x {
			out[i] = coerceString(item)
		}
		return out
	default:
		return nil
	}
}
