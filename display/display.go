// Package display renders crawl results and run summaries as console tables.
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wenzapen/tagcrawl/engine"
	"github.com/wenzapen/tagcrawl/storage"
)

const maxCellWidth = 60

// Source is a result map.
type Source interface {
	Names() []string
	Get(name string) (any, bool)
}

// Preview writes one table per result name holding at most n entries.
func Preview(w io.Writer, title string, src Source, n int) {
	for _, name := range src.Names() {
		v, _ := src.Get(name)
		fmt.Fprintf(w, "%s: %s\n", title, name)
		t := newTable(w)
		fill(t, v, n)
		t.Render()
	}
}

func fill(t table.Writer, v any, n int) {
	list, isList := v.([]any)
	if !isList {
		t.AppendHeader(table.Row{"value"})
		t.AppendRow(table.Row{cell(v)})
		return
	}

	shown := list
	if n >= 0 && len(list) > n {
		shown = list[:n]
	}
	rows := storage.Rows(shown)
	cols := storage.Columns(rows)

	header := table.Row{"#"}
	for _, c := range cols {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, r := range rows {
		row := table.Row{i + 1}
		for _, c := range cols {
			row = append(row, cell(r[c]))
		}
		t.AppendRow(row)
	}
	if rest := len(list) - len(shown); rest > 0 {
		t.AppendFooter(table.Row{"", fmt.Sprintf("... and %d more", rest)})
	} else {
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", len(list))})
	}
}

// Summary writes the totals of a run.
func Summary(w io.Writer, r engine.Report) {
	fmt.Fprintln(w, "crawl summary")
	t := newTable(w)
	t.AppendHeader(table.Row{"units", "requests", "failed", "exports", "received", "elapsed"})
	t.AppendRow(table.Row{r.Units, r.Requests, r.Failed, r.Exports, humanize.Bytes(uint64(r.Bytes)), r.Elapsed.Round(time.Millisecond).String()})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func cell(v any) string {
	return text.Snip(storage.Cell(v), maxCellWidth, "~")
}
