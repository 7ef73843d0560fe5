package mortality

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Summary describes a cleaned table: its shape, per-column coverage and the
// first few rows.
type Summary struct {
	Name        string
	Rows        int
	Columns     []string
	Years       []int
	States      int
	Causes      int
	TotalRows   int
	Deaths      int64
	RateMissing int
	Head        [][]string
}

// Summarize collects a Summary with up to head sample rows.
func Summarize(t *Table, head int) Summary {
	s := Summary{
		Name:    filepath.Base(t.Source),
		Rows:    t.Len(),
		Columns: t.Header(),
		Years:   t.Years(),
		States:  len(t.States()),
		Causes:  len(t.Causes()),
	}
	t.Each(func(r Record) bool {
		s.Deaths += r.Deaths
		if r.IsTotal {
			s.TotalRows++
		}
		if !r.HasRate {
			s.RateMissing++
		}
		return true
	})
	if head > t.Len() {
		head = t.Len()
	}
	for i := 0; i < head; i++ {
		s.Head = append(s.Head, t.Row(i))
	}
	return s
}

// Shape returns (rows, columns).
func (s Summary) Shape() (int, int) { return s.Rows, len(s.Columns) }

// Markdown renders the summary as a compact report.
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	rows, cols := s.Shape()
	b.WriteString(fmt.Sprintf("Shape: (%d, %d)\n", rows, cols))
	b.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(s.Columns, ", ")))
	if len(s.Years) > 0 {
		b.WriteString(fmt.Sprintf("Years: %d-%d (%d distinct)\n", s.Years[0], s.Years[len(s.Years)-1], len(s.Years)))
	}
	b.WriteString(fmt.Sprintf("States: %d, causes: %d\n", s.States, s.Causes))
	b.WriteString(fmt.Sprintf("All-causes rows: %d\n", s.TotalRows))
	b.WriteString(fmt.Sprintf("Deaths (sum of all rows): %d\n", s.Deaths))
	b.WriteString(fmt.Sprintf("Missing age-adjusted rate after fill: %d\n", s.RateMissing))

	if len(s.Head) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| " + strings.Join(s.Columns, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(s.Columns)) + "\n")
		for _, row := range s.Head {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = strings.ReplaceAll(v, "|", "/")
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	return b.String()
}
