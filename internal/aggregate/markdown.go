package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns returns the header names for rows grouped by keys.
func Columns(keys []Key) []string {
	if len(keys) == 0 {
		keys = []Key{KeyCause}
	}
	cols := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		cols = append(cols, string(k))
	}
	return append(cols, "deaths")
}

// Values formats a row under the same layout as Columns.
func Values(r Row, keys []Key) []string {
	if len(keys) == 0 {
		keys = []Key{KeyCause}
	}
	vals := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		switch k {
		case KeyCause:
			vals = append(vals, r.Cause)
		case KeyYear:
			vals = append(vals, strconv.Itoa(r.Year))
		case KeyState:
			vals = append(vals, r.State)
		}
	}
	return append(vals, strconv.FormatInt(r.Deaths, 10))
}

// Markdown renders rows as a compact markdown table with a total line.
func Markdown(title string, rows []Row, keys []Key) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(fmt.Sprintf("[%s]\n", title))
	}
	cols := Columns(keys)
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, r := range rows {
		vals := Values(r, keys)
		for i := range vals {
			vals[i] = safeVal(vals[i])
		}
		b.WriteString("| " + strings.Join(vals, " | ") + " |\n")
	}
	b.WriteString(fmt.Sprintf("\nGroups: %d, total deaths: %d\n", len(rows), Total(rows)))
	return b.String()
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row, keys []Key) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(keys)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(Values(r, keys)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
