package engine

import "fmt"

// MissingGlobalParserError names a parser referenced by a request that no
// global extract declares.
type MissingGlobalParserError struct {
	Name string
}

func (e *MissingGlobalParserError) Error() string {
	return fmt.Sprintf("global parser %q not found", e.Name)
}
