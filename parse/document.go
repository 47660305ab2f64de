// Package parse turns fetched bodies into queryable documents and evaluates
// path queries (XPath or CSS selectors) against them.
package parse

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/jsonquery"
	"golang.org/x/net/html"
)

// Response formats understood by Document.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

// DocumentError reports a body that could not be parsed in the declared format.
type DocumentError struct {
	Format string
	Err    error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("parse %s document: %v", e.Format, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// ValidFormat reports whether format names a document format.
func ValidFormat(format string) bool {
	return format == FormatHTML || format == FormatJSON
}

// Document parses text according to format. The result is the root node of
// the document: *html.Node for html, *jsonquery.Node for json.
func Document(format string, text string) (any, error) {
	switch format {
	case FormatHTML:
		return HTML(text)
	case FormatJSON:
		return JSON(text)
	default:
		return nil, &DocumentError{Format: format, Err: fmt.Errorf("unknown format %q", format)}
	}
}

func HTML(text string) (*html.Node, error) {
	doc, err := htmlquery.Parse(strings.NewReader(text))
	if err != nil {
		return nil, &DocumentError{Format: FormatHTML, Err: err}
	}
	return doc, nil
}

func JSON(text string) (*jsonquery.Node, error) {
	doc, err := jsonquery.Parse(strings.NewReader(text))
	if err != nil {
		return nil, &DocumentError{Format: FormatJSON, Err: err}
	}
	return doc, nil
}
