package mortality

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source reads a dataset file into raw rows, the first row being the header.
type Source interface {
	CanRead(path string) bool
	ReadRows(path string, opt Options) ([][]string, error)
}

var registry []Source

// Register adds a source implementation. Later registrations are tried first.
func Register(s Source) {
	registry = append([]Source{s}, registry...)
}

func sourceFor(path string) Source {
	for _, s := range registry {
		if s.CanRead(path) {
			return s
		}
	}
	return delimitedSource{}
}

func init() {
	Register(delimitedSource{})
	Register(workbookSource{})
}

type delimitedSource struct{}

func (delimitedSource) CanRead(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedSource) ReadRows(path string, opt Options) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &MalformedDataError{Path: path, Row: len(rows), Err: err}
			}
			return nil, &IOError{Path: path, Err: err}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

type workbookSource struct{}

func (workbookSource) CanRead(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

func (workbookSource) ReadRows(path string, opt Options) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &IOError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	return rows, nil
}
