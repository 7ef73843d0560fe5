package mortality

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/causeboard/internal/utils"
)

// Header returns the export header: recognized columns under their source
// names, followed by the table's extra columns.
func (t *Table) Header() []string {
	h := make([]string, 0, len(schema)+len(t.ExtraColumns))
	for _, c := range schema {
		h = append(h, c.source)
	}
	return append(h, t.ExtraColumns...)
}

// Row returns the i-th record formatted with the same layout as Header.
func (t *Table) Row(i int) []string {
	r := t.records[i]
	rate := ""
	if r.HasRate {
		rate = strconv.FormatFloat(r.AgeAdjustedRate, 'f', -1, 64)
	}
	row := []string{
		strconv.Itoa(r.Year),
		r.CauseDetail,
		r.Cause,
		r.State,
		strconv.FormatInt(r.Deaths, 10),
		rate,
	}
	for j := range t.ExtraColumns {
		v := ""
		if j < len(r.Extra) {
			v = r.Extra[j]
		}
		row = append(row, v)
	}
	return row
}

// WriteCSV serializes the cleaned table with the source schema so that
// loading the output reproduces an equivalent table.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range t.records {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SaveCSV writes the cleaned table to path atomically.
func SaveCSV(path string, t *Table) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
