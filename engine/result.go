package engine

// Result maps result names to values for one unit, keeping names in the
// order they were declared.
type Result struct {
	names  []string
	values map[string]any
}

// NewResult starts every name with an empty list.
func NewResult(names ...string) *Result {
	r := &Result{values: make(map[string]any, len(names))}
	for _, n := range names {
		r.declare(n)
	}
	return r
}

func (r *Result) declare(name string) {
	if _, ok := r.values[name]; ok {
		return
	}
	r.names = append(r.names, name)
	r.values[name] = []any{}
}

func (r *Result) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *Result) Set(name string, v any) {
	r.declare(name)
	r.values[name] = v
}

// Append adds v as one more entry of name.
func (r *Result) Append(name string, v any) {
	r.declare(name)
	r.values[name] = append(list(r.values[name]), v)
}

// Concat extends name with the elements of v.
func (r *Result) Concat(name string, v any) {
	r.declare(name)
	r.values[name] = append(list(r.values[name]), list(v)...)
}

// Merge folds the result of one fetch of a batch into r: names for which
// concat reports true are list-extended, all others get one entry per fetch.
func (r *Result) Merge(sub *Result, concat func(name string) bool) {
	for _, name := range sub.names {
		v := sub.values[name]
		if concat(name) {
			r.Concat(name, v)
		} else {
			r.Append(name, v)
		}
	}
}

func (r *Result) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Result) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func list(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return append([]any(nil), t...)
	default:
		return []any{v}
	}
}
