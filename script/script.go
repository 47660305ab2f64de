// Package script compiles and runs the small expressions embedded in markup
// attributes (post-processing, filters, url builders). Expressions are
// evaluated by expr-lang/expr against a fixed set of bindings; they cannot
// reach any other state.
package script

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wenzapen/tagcrawl/parse"
)

// Env is the complete binding set visible to an expression.
type Env struct {
	Value   any            `expr:"value"`
	Item    any            `expr:"item"`
	Parser  map[string]any `expr:"parser"`
	Request map[string]any `expr:"request"`
}

// EvalError is returned when an expression fails at run time.
type EvalError struct {
	Source string
	Err    error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Source, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

type Program struct {
	source  string
	program *vm.Program
}

func Compile(source string) (*Program, error) {
	opts := append([]expr.Option{expr.Env(Env{})}, functions()...)
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}
	return &Program{source: source, program: program}, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(source string) *Program {
	p, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Program) String() string { return p.source }

func (p *Program) Run(env Env) (any, error) {
	out, err := expr.Run(p.program, env)
	if err != nil {
		return nil, &EvalError{Source: p.source, Err: err}
	}
	return out, nil
}

// Test runs the program as a predicate using Truthy.
func (p *Program) Test(env Env) (bool, error) {
	out, err := p.Run(env)
	if err != nil {
		return false, err
	}
	return Truthy(out), nil
}

// Truthy: false, nil, zero numbers and empty strings or collections are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func functions() []expr.Option {
	return []expr.Option{
		expr.Function("text", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("text: want 1 argument, got %d", len(params))
			}
			return parse.Text(params[0]), nil
		}),
		expr.Function("attr", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("attr: want 2 arguments, got %d", len(params))
			}
			name, ok := params[1].(string)
			if !ok {
				return nil, fmt.Errorf("attr: name must be a string")
			}
			return parse.Attr(params[0], name), nil
		}),
		expr.Function("html", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("html: want 1 argument, got %d", len(params))
			}
			return parse.OuterHTML(params[0]), nil
		}),
		expr.Function("resolve", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("resolve: want 2 arguments, got %d", len(params))
			}
			base, err := url.Parse(parse.Text(params[0]))
			if err != nil {
				return nil, err
			}
			ref, err := url.Parse(parse.Text(params[1]))
			if err != nil {
				return nil, err
			}
			return base.ResolveReference(ref).String(), nil
		}),
	}
}
