package spider

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenzapen/tagcrawl/parse"
)

const rows = `<html><body><table>
<tr data-id="1"><td>  alpha
</td><td><a href="/a">A</a></td></tr>
<tr data-id="1"><td>beta</td><td><a href="/b">B</a></td></tr>
<tr data-id="2"><td> gamma </td><td><a href="/c">C</a></td></tr>
<tr><td>delta</td><td><a href="https://y/d">D</a></td></tr>
</table><h1>Title</h1><span class="pages">5</span></body></html>`

func firstExtract(t *testing.T, markup string) *Extract {
	t.Helper()
	tree := build(t, markup)
	e, ok := tree.Roots()[0].(*Extract)
	require.True(t, ok)
	return e
}

func htmlDoc(t *testing.T) any {
	t.Helper()
	doc, err := parse.HTML(rows)
	require.NoError(t, err)
	return doc
}

func TestParseNestedList(t *testing.T) {
	e := firstExtract(t, `<list name="list" xpath="//tr"><item name="title" xpath="./td[1]" strip></item><item name="link" xpath=".//a/@href"></item></list>`)

	got := e.Parse(htmlDoc(t), nil)
	want := []any{
		map[string]any{"title": "alpha", "link": "/a"},
		map[string]any{"title": "beta", "link": "/b"},
		map[string]any{"title": "gamma", "link": "/c"},
		map[string]any{"title": "delta", "link": "https://y/d"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parse mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, got, e.LastValue())
}

func TestParseNestedAbsolutePath(t *testing.T) {
	e := firstExtract(t, `<list name="list" xpath="//tr"><item name="title" xpath="./td[1]" strip></item><item name="site" xpath="//h1"></item></list>`)

	got := e.Parse(htmlDoc(t), nil).([]any)
	require.Len(t, got, 4)
	for _, row := range got {
		assert.Equal(t, "Title", row.(map[string]any)["site"])
	}
	assert.Equal(t, "alpha", got[0].(map[string]any)["title"])
}

func TestParseSingleItem(t *testing.T) {
	e := firstExtract(t, `<item name="h" xpath="//h1"></item>`)
	assert.Equal(t, "Title", e.Parse(htmlDoc(t), nil))

	missing := firstExtract(t, `<item name="h" xpath="//h2"></item>`)
	assert.Nil(t, missing.Parse(htmlDoc(t), nil))

	obj := firstExtract(t, `<item name="page" xpath="//body"><item name="h" xpath=".//h1"></item><item name="pages" xpath="number(.//span)"></item></item>`)
	assert.Equal(t, map[string]any{"h": "Title", "pages": float64(5)}, obj.Parse(htmlDoc(t), nil))
}

func TestParseOnMissingStructure(t *testing.T) {
	list := firstExtract(t, `<list name="l" xpath="//li"><item name="a" xpath="./a"></item></list>`)
	assert.Equal(t, []any{}, list.Parse(htmlDoc(t), nil))
	assert.Equal(t, []any{}, list.Parse(nil, nil))

	item := firstExtract(t, `<item name="a" xpath="//a"></item>`)
	assert.Nil(t, item.Parse(nil, nil))
	assert.Equal(t, "plain", item.Parse("plain", nil))
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	e := firstExtract(t, `<list name="l" xpath="//tr" key="id"><item name="id" xpath="./@data-id"></item><item name="title" xpath="./td[1]" strip></item></list>`)

	got := e.Parse(htmlDoc(t), nil).([]any)
	require.Len(t, got, 3)
	assert.Equal(t, map[string]any{"id": "1", "title": "alpha"}, got[0])
	assert.Equal(t, map[string]any{"id": "2", "title": "gamma"}, got[1])
	assert.Equal(t, map[string]any{"id": nil, "title": "delta"}, got[2])
}

func TestDedupOnElements(t *testing.T) {
	e := firstExtract(t, `<list name="l" xpath="//tr" key="data-id" strip></list>`)
	got := e.Parse(htmlDoc(t), nil).([]any)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "alpha")
	assert.Contains(t, got[1], "gamma")
	assert.Contains(t, got[2], "delta")
}

func TestDedupProperty(t *testing.T) {
	in := []any{
		map[string]any{"id": 1, "v": "a"},
		map[string]any{"id": 2, "v": "b"},
		map[string]any{"id": 1, "v": "c"},
		map[string]any{"v": "no key"},
		map[string]any{"id": 3, "v": "d"},
		map[string]any{"id": 2, "v": "e"},
		map[string]any{"v": "no key"},
	}
	got := Dedup(in, "id")

	seen := map[any]bool{}
	var order []string
	for _, el := range got {
		m := el.(map[string]any)
		if id, ok := m["id"]; ok {
			require.False(t, seen[id], "duplicate id %v", id)
			seen[id] = true
		}
		order = append(order, m["v"].(string))
	}
	assert.Equal(t, []string{"a", "b", "no key", "d", "no key"}, order)
}

func TestDedupOnJSON(t *testing.T) {
	doc, err := parse.JSON(`{"items":[{"id":1,"n":"a"},{"id":1,"n":"b"},{"id":2,"n":"c"}]}`)
	require.NoError(t, err)
	e := firstExtract(t, `<list name="l" xpath="/items/*" key="id"></list>`)

	got := e.Parse(doc, nil).([]any)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].(map[string]any)["n"])
	assert.Equal(t, "c", got[1].(map[string]any)["n"])
}

func TestFilter(t *testing.T) {
	e := firstExtract(t, `<list name="l" xpath="//tr" filter="item.link startsWith '/'"><item name="title" xpath="./td[1]" strip></item><item name="link" xpath=".//a/@href"></item></list>`)

	got := e.Parse(htmlDoc(t), nil).([]any)
	require.Len(t, got, 3)
	for _, el := range got {
		assert.Regexp(t, "^/", el.(map[string]any)["link"])
	}
	assert.NotContains(t, got, map[string]any{"title": "delta", "link": "https://y/d"})
}

func TestGetItems(t *testing.T) {
	e := firstExtract(t, `<list name="l" xpath="//tr" get-items="value[1:3]"><item name="title" xpath="./td[1]" strip></item></list>`)
	assert.Equal(t, []any{
		map[string]any{"title": "beta"},
		map[string]any{"title": "gamma"},
	}, e.Parse(htmlDoc(t), nil))
}

func TestPostProcess(t *testing.T) {
	e := firstExtract(t, `<item name="h" xpath="//h1" parse="upper(text(value)) + '/' + request.url"></item>`)
	ctx := &Context{Request: &Request{URL: "https://x/list"}}
	assert.Equal(t, "TITLE/https://x/list", e.Parse(htmlDoc(t), ctx))

	count := firstExtract(t, `<list name="l" xpath="//tr" parse="len(value)"></list>`)
	assert.Equal(t, 4, count.Parse(htmlDoc(t), nil))
}

func TestPostProcessFailureKeepsValue(t *testing.T) {
	e := firstExtract(t, `<item name="h" xpath="//h1" parse="value.missing.deeper"></item>`)
	assert.Equal(t, "Title", e.Parse(htmlDoc(t), nil))
}

func TestCSSSelector(t *testing.T) {
	e := firstExtract(t, `<list name="l" selector="tr td:first-child" strip></list>`)
	assert.Equal(t, []any{"alpha", "beta", "gamma", "delta"}, e.Parse(htmlDoc(t), nil))
}

func TestFollowUpOnePerElement(t *testing.T) {
	e := firstExtract(t, `<list name="links" xpath="//a/@href" follow-up-url="value" follow-up-parsers="detail" follow-up-concat="detail" follow-up-type="json"></list>`)
	require.True(t, e.HasFollowUp())

	ctx := &Context{Request: &Request{URL: "https://x/list"}}
	links := e.Parse(htmlDoc(t), ctx).([]any)
	batch := e.GenerateRequests(ctx)

	require.Len(t, batch.List, len(links))
	assert.Equal(t, []any{"https://x/a", "https://x/b", "https://x/c", "https://y/d"}, batch.List)
	assert.Equal(t, []string{"detail"}, batch.ParserNames)
	assert.True(t, batch.IsConcat("detail"))
	assert.Equal(t, "json", batch.Type)
	assert.Equal(t, "GET", batch.Method)
	assert.Equal(t, links, batch.Meta)

	reqs := batch.Requests(ctx)
	require.Len(t, reqs, 4)
	assert.Equal(t, "https://x/a", reqs[0].URL)
	assert.Equal(t, links, reqs[0].Meta)
}

func TestFollowUpSingleValue(t *testing.T) {
	e := firstExtract(t, `<item name="h" xpath="//h1" follow-up-url="'https://x/detail/' + lower(value)" follow-up-parsers="detail" follow-up-method="post"></item>`)
	e.Parse(htmlDoc(t), nil)

	batch := e.GenerateRequests(nil)
	assert.Equal(t, []any{"https://x/detail/title"}, batch.List)
	assert.Equal(t, "POST", batch.Method)
	assert.Equal(t, "Title", batch.Meta)
}

func TestFollowUpSkipsFailingElements(t *testing.T) {
	e := firstExtract(t, `<item name="ids" many follow-up-url="'https://x/' + value.slug" follow-up-parsers="d"></item>`)
	e.Parse([]any{map[string]any{"slug": "a"}, "not an object", map[string]any{"slug": "b"}}, nil)

	batch := e.GenerateRequests(nil)
	assert.Equal(t, []any{"https://x/a", "https://x/b"}, batch.List)
}

func TestFollowUpCarriesExports(t *testing.T) {
	e := firstExtract(t, `<item name="h" xpath="//h1" follow-up-url="'https://x/d'" follow-up-parsers="d"><export parser="d" path="d.json"></export></item>`)
	e.Parse(htmlDoc(t), nil)
	batch := e.GenerateRequests(nil)
	require.Len(t, batch.Exports(), 1)
	assert.Equal(t, "d", batch.Exports()[0].Parser)
	assert.Empty(t, batch.Extracts())
}
