package spider

import (
	"net/http"
	"strconv"
	"strings"
)

// Attrs are the raw attributes of a start tag. Valueless attributes such as
// strip map to "".
type Attrs map[string]string

func (a Attrs) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Attrs) Get(name, def string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return def
}

// List splits a comma separated attribute, dropping empty entries.
func (a Attrs) List(name string) []string {
	v, ok := a[name]
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Flag treats a present attribute as true unless its value says otherwise.
func (a Attrs) Flag(tag, name string) (bool, error) {
	v, ok := a[name]
	if !ok {
		return false, nil
	}
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &InvalidAttributeError{Tag: tag, Attr: name, Value: v, Err: err}
	}
	return b, nil
}

func (a Attrs) Int(tag, name string, def int) (int, error) {
	v, ok := a[name]
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &InvalidAttributeError{Tag: tag, Attr: name, Value: v, Err: err}
	}
	return i, nil
}

func (a Attrs) Required(tag, name string) (string, error) {
	v, ok := a[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", &MissingAttributeError{Tag: tag, Attr: name}
	}
	return v, nil
}

func (a Attrs) Method(name string) string {
	return strings.ToUpper(strings.TrimSpace(a.Get(name, http.MethodGet)))
}
