package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const table = `<html><body><table>
<tr id="r1"><td> first </td><td><a href="/a">A</a></td></tr>
<tr id="r2"><td>second</td><td><a href="/b">B</a></td></tr>
</table><span class="pages">7</span></body></html>`

func TestXPathOnHTML(t *testing.T) {
	doc, err := HTML(table)
	require.NoError(t, err)

	rows, err := CompileXPath("//tr")
	require.NoError(t, err)
	matches, ok := rows.Select(doc)
	require.True(t, ok)
	require.Len(t, matches, 2)

	cell, err := CompileXPath("./td[1]")
	require.NoError(t, err)
	first, ok := cell.Select(matches[0])
	require.True(t, ok)
	require.Len(t, first, 1)
	assert.Equal(t, " first ", Text(first[0]))

	href, err := CompileXPath(".//a/@href")
	require.NoError(t, err)
	links, _ := href.Select(matches[1])
	assert.Equal(t, []any{"/b"}, links)

	text, err := CompileXPath("./td[2]/a/text()")
	require.NoError(t, err)
	texts, _ := text.Select(matches[0])
	assert.Equal(t, []any{"A"}, texts)
}

func TestXPathScalarResult(t *testing.T) {
	doc, err := HTML(table)
	require.NoError(t, err)

	q, err := CompileXPath("count(//tr)")
	require.NoError(t, err)
	matches, ok := q.Select(doc)
	require.True(t, ok)
	assert.Equal(t, []any{float64(2)}, matches)
}

func TestSelectOnPlainValue(t *testing.T) {
	q, err := CompileXPath("//tr")
	require.NoError(t, err)
	_, ok := q.Select("not a document")
	assert.False(t, ok)
	_, ok = q.Select(map[string]any{"a": 1})
	assert.False(t, ok)
}

func TestSelectFromElementContext(t *testing.T) {
	doc, err := HTML(table)
	require.NoError(t, err)
	rows, _ := CompileXPath("//tr")
	m, _ := rows.Select(doc)
	require.NotEmpty(t, m)
	row := m[len(m)-1]

	abs, _ := CompileXPath("//tr")
	all, ok := abs.Select(row)
	require.True(t, ok)
	assert.Len(t, all, len(m))

	up, _ := CompileXPath("name(..)")
	parent, _ := up.Select(row)
	assert.Equal(t, []any{"tbody"}, parent)

	jdoc, err := JSON(`{"total": 2, "items": [{"id": 1}, {"id": 2}]}`)
	require.NoError(t, err)
	items, _ := CompileXPath("//items/*")
	jm, _ := items.Select(jdoc)
	require.Len(t, jm, 2)
	total, _ := CompileXPath("/total")
	got, ok := total.Select(jm[1])
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "2", Text(got[0]))
	id, _ := CompileXPath("./id")
	own, _ := id.Select(jm[1])
	require.Len(t, own, 1)
	assert.Equal(t, "2", Text(own[0]))
}

func TestCompileErrors(t *testing.T) {
	_, err := CompileXPath("//tr[")
	assert.Error(t, err)
	_, err = CompileCSS("")
	assert.Error(t, err)
}

func TestCSSSelector(t *testing.T) {
	doc, err := HTML(table)
	require.NoError(t, err)

	q, err := CompileCSS("span.pages")
	require.NoError(t, err)
	matches, ok := q.Select(doc)
	require.True(t, ok)
	require.Len(t, matches, 1)
	assert.Equal(t, "7", Text(matches[0]))
	assert.IsType(t, &html.Node{}, matches[0])
}

func TestJSONDocument(t *testing.T) {
	doc, err := JSON(`{"total": 3, "items": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}`)
	require.NoError(t, err)

	q, err := CompileXPath("//items/*")
	require.NoError(t, err)
	matches, ok := q.Select(doc)
	require.True(t, ok)
	require.Len(t, matches, 2)

	assert.Equal(t, map[string]any{"id": float64(1), "title": "a"}, Plain(matches[0]))
	assert.Equal(t, "b", Attr(matches[1], "title"))

	total, err := CompileXPath("//total")
	require.NoError(t, err)
	n, _ := total.Select(doc)
	require.Len(t, n, 1)
	assert.Equal(t, "3", Text(n[0]))
}

func TestDocumentErrors(t *testing.T) {
	_, err := Document(FormatJSON, "{not json")
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, FormatJSON, docErr.Format)

	_, err = Document("xml", "<a/>")
	require.ErrorAs(t, err, &docErr)

	assert.True(t, ValidFormat("html"))
	assert.False(t, ValidFormat("xml"))
}

func TestHelpers(t *testing.T) {
	doc, err := HTML(`<div><a href="/x" class="c"> link </a></div>`)
	require.NoError(t, err)
	q, _ := CompileXPath("//a")
	m, _ := q.Select(doc)
	require.Len(t, m, 1)

	assert.Equal(t, "/x", Attr(m[0], "href"))
	assert.Equal(t, `<a href="/x" class="c"> link </a>`, OuterHTML(m[0]))
	assert.Equal(t, "link", TrimText(m[0]))
	assert.Equal(t, "s", TrimText("  s\n"))
	assert.Equal(t, 3, TrimText(3))
	assert.True(t, IsNode(m[0]))
	assert.False(t, IsNode("a"))

	plain := Plain(map[string]any{"link": m[0], "list": []any{m[0], 1}})
	assert.Equal(t, map[string]any{"link": " link ", "list": []any{" link ", 1}}, plain)
	assert.Equal(t, "v", Attr(map[string]any{"k": "v"}, "k"))
	assert.Equal(t, "", Text(nil))
}
