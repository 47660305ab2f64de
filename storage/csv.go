package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// WriteCSV writes one row per record with a header of all field names.
func WriteCSV(path, name string, value any) error {
	rows := Rows(value)
	cols := Columns(rows)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("encode %s as csv: %w", name, err)
	}
	for _, r := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = Cell(r[c])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("encode %s as csv: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode %s as csv: %w", name, err)
	}
	return writeFile(path, buf.Bytes())
}
