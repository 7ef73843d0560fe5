package mortality

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options controls how a dataset file is read and cleaned.
type Options struct {
	// Delimiter for delimited text. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Sheet selects the workbook sheet for .xlsx sources; empty means the first.
	Sheet string
	// ThousandsSeparator is stripped from Deaths and rate values. If 0, ','.
	ThousandsSeparator rune
	// Fill handles missing age-adjusted rates. If nil, ForwardFill by state.
	Fill FillStrategy
	// Logger receives diagnostic output. If nil, nothing is logged.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the CLI and dashboard.
func DefaultOptions() Options {
	return Options{
		ThousandsSeparator: ',',
		Fill:               ForwardFill{Scope: ScopeState},
	}
}

// Load reads and cleans the dataset at path. Any error is fatal: no partial
// table is returned. Errors are *IOError, *SchemaError or *MalformedDataError.
func Load(path string, opt Options) (*Table, error) {
	if opt.Fill == nil {
		opt.Fill = ForwardFill{Scope: ScopeState}
	}
	if opt.ThousandsSeparator == 0 {
		opt.ThousandsSeparator = ','
	}
	lg := opt.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rows, err := sourceFor(path).ReadRows(path, opt)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Path: path, Missing: requiredSourceNames()}
	}
	header := rows[0]
	lg.Debug("dataset read", "path", path, "rows", len(rows)-1, "columns", len(header), "header", header)

	l, err := resolveHeader(path, header)
	if err != nil {
		return nil, err
	}

	data := rows[1:]
	records := make([]Record, 0, len(data))
	rawRates := make([]RawRate, 0, len(data))
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 1
		rec := Record{
			State:       l.field(row, ColState),
			Cause:       l.field(row, ColCause),
			CauseDetail: l.field(row, ColCauseDetail),
			Extra:       l.extras(row),
		}

		yv := l.field(row, ColYear)
		year, err := strconv.Atoi(yv)
		if err != nil {
			return nil, &MalformedDataError{Path: path, Row: rowNum, Column: ColYear, Value: yv, Err: numError(err)}
		}
		rec.Year = year

		dv := l.field(row, ColDeaths)
		deaths, err := parseCount(dv, opt.ThousandsSeparator)
		if err != nil {
			return nil, &MalformedDataError{Path: path, Row: rowNum, Column: ColDeaths, Value: dv, Err: err}
		}
		rec.Deaths = deaths

		rv := l.field(row, ColRate)
		if rate, ok := parseRate(rv, opt.ThousandsSeparator); ok {
			rec.AgeAdjustedRate = rate
			rec.HasRate = true
		}
		rec.IsTotal = IsTotalCause(rec.Cause)

		records = append(records, rec)
		rawRates = append(rawRates, RawRate{Row: rowNum, Text: rv})
	}

	filled, err := opt.Fill.Fill(path, records, rawRates)
	if err != nil {
		return nil, err
	}

	t := &Table{
		ID:           uuid.NewString(),
		Source:       path,
		LoadedAt:     time.Now(),
		ExtraColumns: l.extraNames,
		records:      records,
	}
	lg.Debug("dataset cleaned",
		"id", t.ID,
		"records", len(records),
		"extra_columns", l.extraNames,
		"fill", opt.Fill.Name(),
		"filled", filled,
	)
	return t, nil
}

// parseCount parses a non-negative integer that may carry thousands separators.
func parseCount(s string, thousands rune) (int64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), string(thousands), "")
	if raw == "" {
		return 0, errors.New("empty value")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, numError(err)
	}
	if n < 0 {
		return 0, errors.New("negative count")
	}
	return n, nil
}

func parseRate(s string, thousands rune) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), string(thousands), "")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// numError strips the strconv wrapper so messages read "invalid syntax"
// rather than repeating the value already carried by MalformedDataError.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func requiredSourceNames() []string {
	var out []string
	for _, c := range schema {
		if c.required {
			out = append(out, c.source)
		}
	}
	return out
}
