package coretable

import (
	"testing"

	"github.com/dchest/siphash"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

func schemaFor(t coreframe.ColumnType) []Schema {
	return []Schema{{Name: "x", Type: t, MaxContentChars: 8}}
}

func TestIngestGrowsColumnCount(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	buf := coreframe.Encode(coreframe.ToColumnSpecs(schemaFor(coreframe.TypeF64)),
		[]coreframe.Row{{"x": 1.0}, {"x": 2.0}}, 0)
	if err := s.Ingest(buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if s.TotalRows() != 2 {
		t.Fatalf("totalRows = %d, want 2", s.TotalRows())
	}
	for _, c := range s.columns {
		if c.RowCount() != s.TotalRows() {
			t.Fatalf("column rows %d != store totalRows %d", c.RowCount(), s.TotalRows())
		}
	}
}

func TestIngestSchemaMismatch(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	// build a batch whose column 0 is utf8 instead of f64.
	buf := coreframe.Encode([]coreframe.ColumnSpec{{Name: "x", Type: coreframe.TypeUtf8}},
		[]coreframe.Row{{"x": "hi"}}, 0)

	err := s.Ingest(buf)
	if err == nil {
		t.Fatal("expected schema mismatch error")
	}
	mismatch, ok := err.(*SchemaMismatchError)
	if !ok {
		t.Fatalf("err type = %T, want *SchemaMismatchError", err)
	}
	if mismatch.ColumnIndex != 0 {
		t.Fatalf("columnIndex = %d, want 0", mismatch.ColumnIndex)
	}
	if s.TotalRows() != 0 {
		t.Fatalf("totalRows = %d, want 0 (no mutation)", s.TotalRows())
	}
}

func TestIngestIntegrityViolation(t *testing.T) {
	// Two parallel list_utf8 columns declared in the schema, but the
	// batch only carries the first: an encoder bug where parallel
	// columns drift out of sync always shows up as one or more columns
	// failing to reach the batch's declared row count after commit.
	schemas := []Schema{
		{Name: "ids", Type: coreframe.TypeListUtf8, MaxContentChars: 8},
		{Name: "names", Type: coreframe.TypeListUtf8, MaxContentChars: 8},
	}
	s := Init(schemas, 8, 20, 400)

	buf := coreframe.Encode([]coreframe.ColumnSpec{{Name: "ids", Type: coreframe.TypeListUtf8}},
		[]coreframe.Row{{"ids": []string{"a"}}}, 0)

	err := s.Ingest(buf)
	if err == nil {
		t.Fatal("expected integrity violation")
	}
	if _, ok := err.(*IntegrityViolationError); !ok {
		t.Fatalf("err type = %T, want *IntegrityViolationError", err)
	}
	if s.Err() == nil {
		t.Fatal("store should be sticky-errored")
	}
}

func TestLayoutViewportRows(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 40, 401)
	layout := s.Layout()
	// ceil(401/40) + 1 = 11 + 1 = 12
	if layout.ViewportRows != 12 {
		t.Fatalf("viewportRows = %d, want 12", layout.ViewportRows)
	}
}

func TestPackClampsRange(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	specs := coreframe.ToColumnSpecs(schemaFor(coreframe.TypeF64))
	buf := coreframe.Encode(specs, []coreframe.Row{{"x": 1.0}, {"x": 2.0}, {"x": 3.0}}, 0)
	if err := s.Ingest(buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	w := s.Pack(units.RowIndex(1), 10, units.BatchSeq(0))
	if w.RowCount != 2 {
		t.Fatalf("rowCount = %d, want 2 (clamped)", w.RowCount)
	}
	batch, err := coreframe.Parse(w.Buffer)
	if err != nil {
		t.Fatalf("Parse window: %v", err)
	}
	want := []float64{2.0, 3.0}
	got := batch.Columns[0].F64s
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("window value[%d] = %v, want %v", i, got[i], v)
		}
	}
}

func TestPackDefaultChecksumIsZero(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	buf := coreframe.Encode(coreframe.ToColumnSpecs(schemaFor(coreframe.TypeF64)),
		[]coreframe.Row{{"x": 1.0}}, 0)
	if err := s.Ingest(buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	w := s.Pack(units.RowIndex(0), 1, units.BatchSeq(0))
	if w.Checksum != 0 {
		t.Fatalf("checksum = %#x, want 0 when ChecksumSeed is unset", w.Checksum)
	}
}

func TestPackWithChecksumSeedMatchesSiphash(t *testing.T) {
	s := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	s.ChecksumSeed = 0xdeadbeef
	buf := coreframe.Encode(coreframe.ToColumnSpecs(schemaFor(coreframe.TypeF64)),
		[]coreframe.Row{{"x": 1.0}, {"x": 2.0}}, 0)
	if err := s.Ingest(buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	w := s.Pack(units.RowIndex(0), 2, units.BatchSeq(0))
	if w.Checksum == 0 {
		t.Fatal("checksum = 0, want non-zero when ChecksumSeed is set")
	}
	want := siphash.Hash(s.ChecksumSeed, ^s.ChecksumSeed, w.Buffer)
	if w.Checksum != want {
		t.Fatalf("checksum = %#x, want %#x", w.Checksum, want)
	}

	// A second Store with no seed set packing the same rows must not
	// produce the same checksum bytes polluting the buffer.
	s2 := Init(schemaFor(coreframe.TypeF64), 8, 20, 400)
	if err := s2.Ingest(buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	w2 := s2.Pack(units.RowIndex(0), 2, units.BatchSeq(0))
	if w2.Checksum != 0 {
		t.Fatalf("unrelated store's checksum = %#x, want 0 (ChecksumSeed is per-Store)", w2.Checksum)
	}
}
