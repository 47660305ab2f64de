package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenzapen/tagcrawl/parse"
)

func TestRunBindings(t *testing.T) {
	p, err := Compile(`"https://x/detail/" + string(value.id)`)
	require.NoError(t, err)

	out, err := p.Run(Env{Value: map[string]any{"id": 7}})
	require.NoError(t, err)
	assert.Equal(t, "https://x/detail/7", out)

	p = MustCompile(`request.url + "?from=" + parser.name`)
	out, err = p.Run(Env{
		Parser:  map[string]any{"name": "list"},
		Request: map[string]any{"url": "https://x/list"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/list?from=list", out)
}

func TestUnknownVariableRejected(t *testing.T) {
	_, err := Compile(`os + value`)
	assert.Error(t, err)
}

func TestTest(t *testing.T) {
	p := MustCompile(`item.price > 10`)
	ok, err := p.Test(Env{Item: map[string]any{"price": 12}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Test(Env{Item: map[string]any{"price": 3}})
	require.NoError(t, err)
	assert.False(t, ok)

	p = MustCompile(`item.title`)
	ok, err = p.Test(Env{Item: map[string]any{"title": ""}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalError(t *testing.T) {
	p := MustCompile(`value + 1`)
	_, err := p.Run(Env{Value: "a"})
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "value + 1", evalErr.Source)
}

func TestNodeFunctions(t *testing.T) {
	doc, err := parse.HTML(`<p><a href="/next"> Next </a></p>`)
	require.NoError(t, err)
	q, _ := parse.CompileXPath("//a")
	m, _ := q.Select(doc)
	require.Len(t, m, 1)

	out, err := MustCompile(`trim(text(value))`).Run(Env{Value: m[0]})
	require.NoError(t, err)
	assert.Equal(t, "Next", out)

	out, err = MustCompile(`resolve(request.url, attr(value, "href"))`).Run(Env{
		Value:   m[0],
		Request: map[string]any{"url": "https://x/list/1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/next", out)

	out, err = MustCompile(`html(value)`).Run(Env{Value: m[0]})
	require.NoError(t, err)
	assert.Equal(t, `<a href="/next"> Next </a>`, out)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy([]any{}))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(1.5))
	assert.True(t, Truthy(struct{}{}))
}

func TestTruthySizedNumbersAndCollections(t *testing.T) {
	for _, v := range []any{int8(0), int32(0), uint(0), uint64(0), float32(0), []string{}, map[string]int{}, (*int)(nil)} {
		assert.False(t, Truthy(v), "%T(%v)", v, v)
	}
	n := 1
	for _, v := range []any{int8(-1), uint16(2), float32(0.5), []string{"a"}, map[string]int{"a": 1}, &n} {
		assert.True(t, Truthy(v), "%T(%v)", v, v)
	}
}
