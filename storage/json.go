package storage

import (
	"fmt"
)

// WriteJSON encodes value as UTF-8 JSON without HTML escaping.
func WriteJSON(path, name string, value any) error {
	data, err := marshalJSON(value)
	if err != nil {
		return fmt.Errorf("encode %s as json: %w", name, err)
	}
	return writeFile(path, data)
}
