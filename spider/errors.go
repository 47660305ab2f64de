package spider

import (
	"errors"
	"fmt"
)

var ErrUnbalancedEndTag = errors.New("end tag without an open tag")

type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag <%s>", e.Tag)
}

type ReservedAttributeError struct {
	Tag  string
	Attr string
}

func (e *ReservedAttributeError) Error() string {
	return fmt.Sprintf("<%s>: attribute %q is reserved", e.Tag, e.Attr)
}

type DuplicateGlobalIDError struct {
	ID string
}

func (e *DuplicateGlobalIDError) Error() string {
	return fmt.Sprintf("global id %q is declared more than once", e.ID)
}

type MissingAttributeError struct {
	Tag  string
	Attr string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("<%s>: missing attribute %q", e.Tag, e.Attr)
}

type InvalidAttributeError struct {
	Tag   string
	Attr  string
	Value string
	Err   error
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("<%s>: invalid %s=%q: %v", e.Tag, e.Attr, e.Value, e.Err)
}

func (e *InvalidAttributeError) Unwrap() error { return e.Err }

// UnknownResultNameError is returned by an export whose parser produced no
// entry in the result.
type UnknownResultNameError struct {
	Name string
}

func (e *UnknownResultNameError) Error() string {
	return fmt.Sprintf("no result named %q", e.Name)
}
