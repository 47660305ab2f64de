package storage

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func WriteYAML(path, name string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s as yaml: %w", name, err)
	}
	return writeFile(path, data)
}
