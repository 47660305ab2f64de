package spider

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html"
)

// Feed tokenizes markup from r and drives b with its tags. Text and comments
// are ignored; a self-closing tag is a start and an end.
func Feed(r io.Reader, b *Builder) error {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("read markup: %w", z.Err())
		case html.StartTagToken:
			tag, attrs := token(z)
			if err := b.StartTag(tag, attrs); err != nil {
				return err
			}
		case html.SelfClosingTagToken:
			tag, attrs := token(z)
			if err := b.StartTag(tag, attrs); err != nil {
				return err
			}
			if err := b.EndTag(tag); err != nil {
				return err
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if err := b.EndTag(string(name)); err != nil {
				return err
			}
		}
	}
}

func token(z *html.Tokenizer) (string, Attrs) {
	name, more := z.TagName()
	attrs := Attrs{}
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		attrs[string(k)] = string(v)
	}
	return string(name), attrs
}

// Build parses a whole markup document into a tree.
func Build(r io.Reader, registry *Registry) (*Tree, error) {
	b := NewBuilder(registry)
	if err := Feed(r, b); err != nil {
		return nil, err
	}
	return b.Tree()
}

func BuildFile(path string, registry *Registry) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open markup: %w", err)
	}
	defer f.Close()
	return Build(f, registry)
}
