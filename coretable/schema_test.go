package coretable

import (
	"testing"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/units"
)

func TestResolveDerivesWidthFromContentChars(t *testing.T) {
	schemas := []Schema{{Name: "name", Type: coreframe.TypeUtf8, MaxContentChars: 10}}
	resolved := Resolve(schemas, 8)
	want := units.PixelSize(10*8 + 2*CellHPadding)
	if resolved[0].ComputedWidth != want {
		t.Fatalf("ComputedWidth = %d, want %d", resolved[0].ComputedWidth, want)
	}
	if resolved[0].ColumnIndex != 0 {
		t.Fatalf("ColumnIndex = %d, want 0", resolved[0].ColumnIndex)
	}
}

func TestResolveHonorsFixedWidth(t *testing.T) {
	fixed := uint(200)
	schemas := []Schema{{Name: "id", Type: coreframe.TypeU32, FixedWidth: &fixed}}
	resolved := Resolve(schemas, 8)
	if resolved[0].ComputedWidth != units.PixelSize(fixed) {
		t.Fatalf("ComputedWidth = %d, want %d", resolved[0].ComputedWidth, fixed)
	}
}

func TestToColumnSpecsProjectsNameAndType(t *testing.T) {
	schemas := []Schema{
		{Name: "a", Type: coreframe.TypeF64, MaxContentChars: 8},
		{Name: "b", Type: coreframe.TypeUtf8, MaxContentChars: 16},
	}
	specs := ToColumnSpecs(schemas)
	if len(specs) != 2 || specs[0].Name != "a" || specs[1].Type != coreframe.TypeUtf8 {
		t.Fatalf("specs = %+v, unexpected", specs)
	}
}
