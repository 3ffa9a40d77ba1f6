// Package coretable implements the growable columnar store: one
// append-only column per schema entry, and the window packer that
// slices a contiguous row range back into wire-format bytes.
package coretable

import (
	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

// CellHPadding is the horizontal padding, in pixels, added on each
// side of a cell when a column's width is derived from its content
// budget rather than given a fixed width.
const CellHPadding = 16

// Schema is one column's declaration: a name opaque to the codec, its
// wire type, and the sizing hints the layout engine needs.
type Schema struct {
	Name            string
	Type            coreframe.ColumnType
	MaxContentChars uint
	FixedWidth      *uint // nil means "derive from MaxContentChars"
}

// ResolvedColumn augments a Schema with the layout values computed
// once at INIT time: the column's pixel width and its position in
// schema order.
type ResolvedColumn struct {
	Schema
	ComputedWidth units.PixelSize
	ColumnIndex   uint
}

// Resolve computes ComputedWidth for each schema entry: FixedWidth
// when given, otherwise MaxContentChars*charWidthHint plus padding on
// both sides.
func Resolve(schemas []Schema, charWidthHint float64) []ResolvedColumn {
	out := make([]ResolvedColumn, len(schemas))
	for i, s := range schemas {
		var width units.PixelSize
		if s.FixedWidth != nil {
			width = units.PixelSize(*s.FixedWidth)
		} else {
			width = units.PixelSize(float64(s.MaxContentChars)*charWidthHint) + 2*CellHPadding
		}
		out[i] = ResolvedColumn{Schema: s, ComputedWidth: width, ColumnIndex: uint(i)}
	}
	return out
}

// ToColumnSpecs projects a schema list down to the codec's minimal
// view (name + wire type), the only fields the codec cares about.
func ToColumnSpecs(schemas []Schema) []coreframe.ColumnSpec {
	out := make([]coreframe.ColumnSpec, len(schemas))
	for i, s := range schemas {
		out[i] = coreframe.ColumnSpec{Name: s.Name, Type: s.Type}
	}
	return out
}
