// Package mortality loads and cleans the leading-causes-of-death dataset.
package mortality

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// NationalState is the State value of rows that aggregate the whole country.
const NationalState = "United States"

// Record is one cleaned row of the mortality dataset.
type Record struct {
	Year        int
	State       string
	Cause       string
	CauseDetail string
	Deaths      int64
	// AgeAdjustedRate is meaningful only when HasRate is true.
	AgeAdjustedRate float64
	HasRate         bool
	// IsTotal marks the "All causes" aggregate rows.
	IsTotal bool
	// Extra holds values of unrecognized columns, aligned with Table.ExtraColumns.
	Extra []string
}

// IsTotalCause reports whether a cause label denotes the all-causes aggregate.
func IsTotalCause(cause string) bool {
	c := strings.ToLower(strings.Join(strings.Fields(cause), " "))
	return c == "all causes" || c == "all cause"
}

// Table is the immutable result of Load. It is safe for concurrent readers.
type Table struct {
	ID           string
	Source       string
	LoadedAt     time.Time
	ExtraColumns []string

	records []Record
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns a copy of the i-th record in file order.
func (t *Table) At(i int) Record { return t.records[i].clone() }

// Records returns a copy of the records in file order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.clone()
	}
	return out
}

// Each calls fn with a copy of every record in file order until fn returns
// false.
func (t *Table) Each(fn func(Record) bool) {
	for _, r := range t.records {
		if !fn(r.clone()) {
			return
		}
	}
}

// clone detaches Extra from the table's storage.
func (r Record) clone() Record {
	r.Extra = slices.Clone(r.Extra)
	return r
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := map[int]struct{}{}
	for _, r := range t.records {
		seen[r.Year] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// LatestYear returns the largest year in the table, or false if it is empty.
func (t *Table) LatestYear() (int, bool) {
	if len(t.records) == 0 {
		return 0, false
	}
	latest := t.records[0].Year
	for _, r := range t.records[1:] {
		if r.Year > latest {
			latest = r.Year
		}
	}
	return latest, true
}

// States returns the distinct states sorted alphabetically.
func (t *Table) States() []string {
	return t.distinct(func(r Record) string { return r.State })
}

// Causes returns the distinct cause labels sorted alphabetically.
func (t *Table) Causes() []string {
	return t.distinct(func(r Record) string { return r.Cause })
}

func (t *Table) distinct(field func(Record) string) []string {
	seen := map[string]struct{}{}
	for _, r := range t.records {
		seen[field(r)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
