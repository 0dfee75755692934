package main

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ytclean/playlist"
)

// column is one table column: its header and cell alignment.
type column struct {
	header string
	align  text.Align
}

// renderTable draws rows under cols in the rounded style. Short rows are
// padded with empty cells.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.header
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func renderSummary(stats playlist.Stats) string {
	return renderTable(
		[]column{{"Result", text.AlignLeft}, {"Count", text.AlignRight}},
		[][]string{
			{"Deleted", strconv.Itoa(stats.Deleted)},
			{"Failed", strconv.Itoa(stats.Failures)},
			{"Batches", strconv.Itoa(stats.Batches)},
			{"Breaks", strconv.Itoa(stats.Breaks)},
			{"Scans", strconv.Itoa(stats.Scans)},
			{"Elapsed", stats.Elapsed().Round(time.Second).String()},
		},
	)
}

func renderTitles(titles []string) string {
	rows := make([][]string, len(titles))
	for i, title := range titles {
		if title == "" {
			title = "(untitled)"
		}
		rows[i] = []string{strconv.Itoa(i + 1), title}
	}
	return renderTable([]column{{"#", text.AlignRight}, {"Title", text.AlignLeft}}, rows)
}
