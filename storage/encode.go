package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

func marshalJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rows flattens a result into records: a list of objects gives one record per
// object, any other element or a scalar result becomes {"value": v}.
func Rows(value any) []map[string]any {
	list, ok := value.([]any)
	if !ok {
		list = []any{value}
	}
	rows := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if obj, ok := e.(map[string]any); ok {
			rows = append(rows, obj)
			continue
		}
		rows = append(rows, map[string]any{"value": e})
	}
	return rows
}

// Columns is the sorted union of the keys of rows.
func Columns(rows []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Cell renders one field for tabular sinks; nested values are JSON encoded.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	default:
		data, err := marshalJSON(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(bytes.TrimRight(data, "\n"))
	}
}
