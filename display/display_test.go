package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wenzapen/tagcrawl/engine"
)

func TestPreviewList(t *testing.T) {
	r := engine.NewResult("list", "title")
	r.Concat("list", []any{
		map[string]any{"title": "first", "id": 1},
		map[string]any{"title": "second", "id": 2},
		map[string]any{"title": "third", "id": 3},
	})
	r.Set("title", "Listing")

	var buf bytes.Buffer
	Preview(&buf, "https://x/list", r, 2)
	out := buf.String()

	assert.Contains(t, out, "https://x/list: list")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "third")
	assert.Contains(t, out, "... and 1 more")
	assert.Contains(t, out, "https://x/list: title")
	assert.Contains(t, out, "Listing")
}

func TestPreviewTruncatesCells(t *testing.T) {
	r := engine.NewResult("body")
	r.Set("body", strings.Repeat("x", 200))

	var buf bytes.Buffer
	Preview(&buf, "page", r, 5)
	assert.NotContains(t, buf.String(), strings.Repeat("x", 100))
	assert.Contains(t, buf.String(), "~")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, engine.Report{Units: 3, Requests: 7, Failed: 1, Exports: 2, Bytes: 2048, Elapsed: 1500 * time.Millisecond})
	out := buf.String()
	assert.Contains(t, out, "crawl summary")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "1.5s")
}
