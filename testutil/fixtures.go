// Package testutil holds small fixture builders shared by the
// package-level test suites, so each _test.go file doesn't re-declare
// the same single-column schema or row-batch boilerplate.
package testutil

import (
	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/coretable"
)

// SingleColumnSchema returns a one-column schema named "x" of type t,
// the shape most encode/ingest/pack tests only need to exercise one
// code path at a time.
func SingleColumnSchema(t coreframe.ColumnType, maxContentChars int) []coretable.Schema {
	return []coretable.Schema{{Name: "x", Type: t, MaxContentChars: uint(maxContentChars)}}
}

// F64Rows builds a row batch where column "x" takes on each of values
// in order.
func F64Rows(values ...float64) []coreframe.Row {
	rows := make([]coreframe.Row, len(values))
	for i, v := range values {
		rows[i] = coreframe.Row{"x": v}
	}
	return rows
}

// EncodeF64Batch wires SingleColumnSchema+F64Rows straight through
// coreframe.Encode, the shape every store/orchestrator ingest test
// needs: a ready-to-Ingest wire buffer for a single f64 column.
func EncodeF64Batch(seq uint32, values ...float64) []byte {
	specs := coreframe.ToColumnSpecs(SingleColumnSchema(coreframe.TypeF64, 8))
	return coreframe.Encode(specs, F64Rows(values...), seq)
}
