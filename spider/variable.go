package spider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header adds one header to the enclosing request or request-list.
type Header struct {
	nodeBase

	Name  string
	Value string
}

// Variable declares a value that later attributes reference as {{name}}.
type Variable struct {
	nodeBase

	Name  string
	Type  string
	Value any
}

// Text renders the value for substitution; lists and objects as JSON.
func (v *Variable) Text() string {
	switch t := v.Value.(type) {
	case string:
		return t
	case []any, map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func typedValue(typ, raw string) (any, error) {
	switch typ {
	case "", "str":
		return raw, nil
	case "int":
		return strconv.Atoi(strings.TrimSpace(raw))
	case "float":
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case "bool":
		return strconv.ParseBool(strings.TrimSpace(raw))
	case "list":
		var v []any
		err := json.Unmarshal([]byte(raw), &v)
		return v, err
	case "dict":
		var v map[string]any
		err := json.Unmarshal([]byte(raw), &v)
		return v, err
	default:
		return nil, fmt.Errorf("unknown variable type %q", typ)
	}
}

var placeholder = regexp.MustCompile(`\{\{(.+?)\}\}`)

// substitute replaces {{name}} references with declared variables. Unknown
// names are left untouched.
func substitute(s string, vars map[string]*Variable) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimSpace(placeholder.FindStringSubmatch(m)[1])
		if v, ok := vars[name]; ok {
			return v.Text()
		}
		return m
	})
}
