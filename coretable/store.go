package coretable

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

// ViewportLayout is the consumer-visible geometry of the grid: each
// column's resolved width, the row height, and how many rows are
// needed to cover one viewport.
type ViewportLayout struct {
	Columns      []ResolvedColumn
	RowHeight    units.PixelSize
	TotalRows    uint32
	TotalHeight  units.PixelSize
	ViewportRows uint32
}

// Store is the worker-owned, growable columnar store: one Column per
// schema entry, created at Init and grown in place by Ingest. Store
// is not safe for concurrent use — it is owned solely by the worker
// task that drives it.
type Store struct {
	// ID identifies this store instance for log correlation; it plays
	// no part in the wire format or any equality check.
	ID string

	// ChecksumSeed, when non-zero, causes Pack to attach a siphash-2-4
	// checksum of the packed buffer to the returned Window. Zero
	// (the default) leaves windows unchecksummed and the wire bytes
	// untouched by this option. A field rather than a package global
	// so concurrent Store instances can each choose independently.
	ChecksumSeed uint64

	resolved       []ResolvedColumn
	columns        []Column
	totalRows      uint32
	rowHeight      units.PixelSize
	viewportHeight units.PixelSize
	err            error
}

// Init creates one column per schema entry and computes the initial
// layout. Columns live for the Store's lifetime and only grow.
func Init(schemas []Schema, charWidthHint float64, rowHeight, viewportHeight units.PixelSize) *Store {
	resolved := Resolve(schemas, charWidthHint)
	cols := make([]Column, len(schemas))
	for i, s := range schemas {
		cols[i] = NewColumn(s.Type)
	}
	return &Store{
		ID:             uuid.New().String(),
		resolved:       resolved,
		columns:        cols,
		rowHeight:      rowHeight,
		viewportHeight: viewportHeight,
	}
}

// TotalRows returns the store's current row count.
func (s *Store) TotalRows() uint32 { return s.totalRows }

// Err returns the sticky error set by an integrity violation, if any.
func (s *Store) Err() error { return s.err }

// Layout recomputes the viewport layout from the store's current
// state. viewportRows = ceil(viewportHeight / rowHeight) + 1.
func (s *Store) Layout() ViewportLayout {
	rh := s.rowHeight
	if rh == 0 {
		rh = 1
	}
	viewportRows := uint32((uint64(s.viewportHeight) + uint64(rh) - 1) / uint64(rh))
	viewportRows++
	return ViewportLayout{
		Columns:      s.resolved,
		RowHeight:    s.rowHeight,
		TotalRows:    s.totalRows,
		TotalHeight:  units.PixelSize(uint64(s.totalRows) * uint64(s.rowHeight)),
		ViewportRows: viewportRows,
	}
}

// Resize updates the viewport height used by Layout; the caller is
// responsible for recomputing and re-emitting the layout afterward.
func (s *Store) Resize(viewportHeight units.PixelSize) {
	s.viewportHeight = viewportHeight
}

// Ingest runs the four-step batch commit protocol: parse, pre-check
// schema compatibility, append, post-check row-count integrity. It
// never partially commits: pre-check runs against the
// parsed batch before any column is mutated.
func (s *Store) Ingest(buf []byte) error {
	batch, err := coreframe.Parse(buf)
	if err != nil {
		return err
	}

	n := len(batch.Columns)
	if n > len(s.columns) {
		n = len(s.columns)
	}
	for i := 0; i < n; i++ {
		want := s.columns[i].Type()
		got := batch.Columns[i].Type
		if want != got {
			return &SchemaMismatchError{
				ColumnIndex: i,
				Name:        s.resolved[i].Name,
				Expected:    want,
				Got:         got,
			}
		}
	}

	expectedRows := s.totalRows + batch.RowCount
	for i, col := range batch.Columns {
		if i >= len(s.columns) {
			break
		}
		s.columns[i].Append(col, batch.RowCount)
	}
	s.totalRows = expectedRows

	for i, c := range s.columns {
		if c.RowCount() != expectedRows {
			s.err = &IntegrityViolationError{
				ColumnName:   s.resolved[i].Name,
				ColumnRows:   c.RowCount(),
				ExpectedRows: expectedRows,
			}
			return s.err
		}
	}
	return nil
}

// SchemaMismatchError reports a column-type mismatch detected during
// the pre-check phase of Ingest; no mutation is applied when this is
// returned.
type SchemaMismatchError struct {
	ColumnIndex int
	Name        string
	Expected    coreframe.ColumnType
	Got         coreframe.ColumnType
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("Schema type mismatch at column %d (%s): expected %s, got %s",
		e.ColumnIndex, e.Name, e.Expected, e.Got)
}

// IntegrityViolationError reports that a column's row count diverged
// from the store's expected total after a commit — an encoder bug,
// typically parallel list_utf8 columns with mismatched per-row item
// counts.
type IntegrityViolationError struct {
	ColumnName   string
	ColumnRows   uint32
	ExpectedRows uint32
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("Integrity violation: column %q has %d rows, expected %d",
		e.ColumnName, e.ColumnRows, e.ExpectedRows)
}
