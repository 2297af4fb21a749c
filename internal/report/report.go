// Package report renders canned query results as aligned text tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/muselabs/muselog/internal/storage"
)

// Render writes rep to w as a column-aligned table with a header rule.
func Render(w io.Writer, rep storage.Report) error {
	widths := make([]int, len(rep.Columns))
	for i, c := range rep.Columns {
		widths[i] = len(c)
	}
	for _, row := range rep.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) error {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = pad(cell, widths[i])
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, " | "))
		return err
	}

	if err := writeRow(rep.Columns); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, "-+-")); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
