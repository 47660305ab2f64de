// Package storage writes named results to files in a chosen format.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Sink persists one named result to path.
type Sink interface {
	Write(path, name string, value any) error
}

type SinkFunc func(path, name string, value any) error

func (f SinkFunc) Write(path, name string, value any) error { return f(path, name, value) }

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q", e.Format)
}

// Registry maps export format names to sinks.
type Registry struct {
	sinks map[string]Sink
}

// NewRegistry returns a registry with the file formats json, yaml, toml and csv.
func NewRegistry() *Registry {
	r := &Registry{sinks: make(map[string]Sink)}
	r.Register("json", SinkFunc(WriteJSON))
	r.Register("yaml", SinkFunc(WriteYAML))
	r.Register("toml", SinkFunc(WriteTOML))
	r.Register("csv", SinkFunc(WriteCSV))
	return r
}

func (r *Registry) Register(format string, sink Sink) {
	r.sinks[format] = sink
}

func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.sinks))
	for f := range r.sinks {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func (r *Registry) Write(format, path, name string, value any) error {
	sink, ok := r.sinks[format]
	if !ok {
		return &UnsupportedFormatError{Format: format}
	}
	return sink.Write(path, name, value)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export %s: %w", path, err)
	}
	return nil
}
