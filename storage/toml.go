package storage

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// WriteTOML stores value under a top-level key named after the result, since
// a TOML document has to be a table.
func WriteTOML(path, name string, value any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{name: dropNil(value)}); err != nil {
		return fmt.Errorf("encode %s as toml: %w", name, err)
	}
	return writeFile(path, buf.Bytes())
}

// TOML has no null.
func dropNil(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, dropNil(e))
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = dropNil(e)
			}
		}
		return out
	case nil:
		return ""
	default:
		return v
	}
}
