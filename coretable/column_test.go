package coretable

import (
	"testing"

	"github.com/sneller-labs/coretable/coreframe"
)

func TestUtf8ColumnOffsetMonotonicity(t *testing.T) {
	specs := []coreframe.ColumnSpec{{Name: "s", Type: coreframe.TypeUtf8}}
	buf1 := coreframe.Encode(specs, []coreframe.Row{{"s": "ab"}, {"s": ""}, {"s": "c"}}, 0)
	buf2 := coreframe.Encode(specs, []coreframe.Row{{"s": "xyz"}}, 1)

	col := newUtf8Column()
	for _, buf := range [][]byte{buf1, buf2} {
		batch, err := coreframe.Parse(buf)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		col.Append(batch.Columns[0], batch.RowCount)
	}

	if col.offsets[0] != 0 {
		t.Fatalf("offsets[0] = %d, want 0", col.offsets[0])
	}
	for i := 1; i < len(col.offsets); i++ {
		if col.offsets[i] < col.offsets[i-1] {
			t.Fatalf("offsets not monotonic at %d: %d < %d", i, col.offsets[i], col.offsets[i-1])
		}
	}
	if int(col.offsets[len(col.offsets)-1]) != len(col.bytes) {
		t.Fatalf("terminal offset %d != byte length %d", col.offsets[len(col.offsets)-1], len(col.bytes))
	}

	sliced := col.CopySlice(1, 3)
	batch, err := coreframe.Parse(wrapSingleColumn(coreframe.TypeUtf8, sliced, 3))
	if err != nil {
		t.Fatalf("Parse slice: %v", err)
	}
	want := []string{"", "c", "xyz"}
	got := batch.Columns[0]
	for i, w := range want {
		s := string(got.Utf8Bytes[got.Utf8Offsets[i]:got.Utf8Offsets[i+1]])
		if s != w {
			t.Fatalf("sliced[%d] = %q, want %q", i, s, w)
		}
	}
}

func TestListUtf8ColumnInvariants(t *testing.T) {
	specs := []coreframe.ColumnSpec{{Name: "l", Type: coreframe.TypeListUtf8}}
	buf := coreframe.Encode(specs, []coreframe.Row{
		{"l": []string{"a", "b"}},
		{"l": []string{}},
		{"l": []string{"c"}},
	}, 0)
	batch, err := coreframe.Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	col := newListUtf8Column()
	col.Append(batch.Columns[0], batch.RowCount)

	if col.rowOffsets[0] != 0 {
		t.Fatalf("rowOffsets[0] = %d, want 0", col.rowOffsets[0])
	}
	if col.rowOffsets[len(col.rowOffsets)-1] != uint32(len(col.itemOffsets)-1) {
		t.Fatalf("rowOffsets terminal = %d, want totalItems %d", col.rowOffsets[len(col.rowOffsets)-1], len(col.itemOffsets)-1)
	}
	if col.itemOffsets[0] != 0 {
		t.Fatalf("itemOffsets[0] = %d, want 0", col.itemOffsets[0])
	}
	if int(col.itemOffsets[len(col.itemOffsets)-1]) != len(col.bytes) {
		t.Fatalf("itemOffsets terminal = %d, want byte length %d", col.itemOffsets[len(col.itemOffsets)-1], len(col.bytes))
	}
}

// wrapSingleColumn frames a single already-packed column data block
// into a full wire buffer so it can be re-parsed for assertions.
func wrapSingleColumn(t coreframe.ColumnType, block []byte, rowCount uint32) []byte {
	out := make([]byte, coreframe.HeaderSize+coreframe.DescriptorSize+len(block))
	putU32 := func(off int, v uint32) {
		out[off] = byte(v)
		out[off+1] = byte(v >> 8)
		out[off+2] = byte(v >> 16)
		out[off+3] = byte(v >> 24)
	}
	putU32(0, coreframe.BatchMagic)
	putU32(4, 0)
	putU32(8, rowCount)
	putU32(12, 1)
	putU32(16, uint32(t))
	putU32(20, uint32(len(block)))
	copy(out[28:], block)
	return out
}
