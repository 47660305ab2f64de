package spider

import (
	"fmt"

	"github.com/wenzapen/tagcrawl/storage"
)

// Lookup is a result map as seen by an export.
type Lookup interface {
	Get(name string) (any, bool)
}

// Export writes one named result to a sink.
type Export struct {
	nodeBase

	Path   string
	Format string
	Parser string
}

func (e *Export) Run(result Lookup, sinks *storage.Registry) error {
	value, ok := result.Get(e.Parser)
	if !ok {
		return &UnknownResultNameError{Name: e.Parser}
	}
	if err := sinks.Write(e.Format, e.Path, e.Parser, value); err != nil {
		return fmt.Errorf("export %q to %s: %w", e.Parser, e.Path, err)
	}
	return nil
}
