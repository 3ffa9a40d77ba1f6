package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sneller-labs/coretable/coreframe"
	"github.com/sneller-labs/coretable/coretable"
)

// columnDecl is the on-disk shape of one schema entry; it exists
// separately from coretable.Schema so the wire type can be spelled as
// a readable string ("f64", "utf8", ...) rather than its numeric tag.
type columnDecl struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	MaxContentChars uint   `json:"maxContentChars"`
	FixedWidth      *uint  `json:"fixedWidth,omitempty"`
}

func parseColumnType(s string) (coreframe.ColumnType, error) {
	switch s {
	case "f64":
		return coreframe.TypeF64, nil
	case "i32":
		return coreframe.TypeI32, nil
	case "u32":
		return coreframe.TypeU32, nil
	case "bool":
		return coreframe.TypeBool, nil
	case "timestamp_ms":
		return coreframe.TypeTimestampMs, nil
	case "utf8":
		return coreframe.TypeUtf8, nil
	case "list_utf8":
		return coreframe.TypeListUtf8, nil
	default:
		return 0, fmt.Errorf("coretabled: unknown column type %q", s)
	}
}

// loadSchema reads a JSON array of column declarations from path and
// resolves it into a coretable schema.
func loadSchema(path string) ([]coretable.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coretabled: opening schema file: %w", err)
	}
	defer f.Close()

	var decls []columnDecl
	if err := json.NewDecoder(f).Decode(&decls); err != nil {
		return nil, fmt.Errorf("coretabled: decoding schema file: %w", err)
	}

	out := make([]coretable.Schema, len(decls))
	for i, d := range decls {
		t, err := parseColumnType(d.Type)
		if err != nil {
			return nil, err
		}
		out[i] = coretable.Schema{
			Name:            d.Name,
			Type:            t,
			MaxContentChars: d.MaxContentChars,
			FixedWidth:      d.FixedWidth,
		}
	}
	return out, nil
}
