package coretable

import "github.com/sneller-labs/coretable/coreframe"

// Column is one growable, append-only column of the store. A Column
// is created once at INIT and lives for the store's lifetime; it only
// ever grows.
type Column interface {
	// Type returns the column's wire type.
	Type() coreframe.ColumnType

	// RowCount returns the number of rows appended so far.
	RowCount() uint32

	// Append absorbs one parsed batch-column fragment. Offsets
	// embedded in the fragment are batch-relative; Append must rebase
	// them to be store-absolute before storing them.
	Append(frag coreframe.ParsedColumn, batchRows uint32)

	// CopySlice returns a new, independently-owned byte slice holding
	// the column's wire-format data block for rows
	// [startRow, startRow+count), after startRow and count have been
	// clamped to the column's current extent. The returned bytes never
	// alias the column's internal storage.
	CopySlice(startRow, count uint32) []byte
}

// NewColumn constructs the right Column implementation for t.
func NewColumn(t coreframe.ColumnType) Column {
	switch t {
	case coreframe.TypeUtf8:
		return newUtf8Column()
	case coreframe.TypeListUtf8:
		return newListUtf8Column()
	default:
		return newNumericColumn(t)
	}
}

// clampRange clamps [start, start+count) to [0, total), the contract
// every CopySlice implementation relies on.
func clampRange(start, count, total uint32) (clampedStart, clampedCount uint32) {
	if start > total {
		start = total
	}
	avail := total - start
	if count > avail {
		count = avail
	}
	return start, count
}
