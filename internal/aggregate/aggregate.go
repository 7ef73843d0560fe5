package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/causeboard/internal/mortality"
)

// Key names a grouping column.
type Key string

const (
	KeyCause Key = "cause"
	KeyYear  Key = "year"
	KeyState Key = "state"
)

// ParseKeys parses group-by names such as ["cause", "year"].
func ParseKeys(names []string) ([]Key, error) {
	keys := make([]Key, 0, len(names))
	for _, n := range names {
		k := Key(strings.ToLower(strings.TrimSpace(n)))
		switch k {
		case KeyCause, KeyYear, KeyState:
			keys = append(keys, k)
		default:
			return nil, fmt.Errorf("unknown group key: %s (use cause|year|state)", n)
		}
	}
	return keys, nil
}

// Query selects and groups records.
type Query struct {
	// Year keeps only records of that year; zero matches every year.
	Year int
	// State keeps only records with exactly this state; empty matches any.
	State string
	// ExcludeCause drops causes containing this substring, case-insensitively.
	ExcludeCause string
	// ExcludeTotals drops the "All causes" aggregate rows.
	ExcludeTotals bool
	// GroupBy lists grouping keys; empty means [cause]. Cause must be present.
	GroupBy []Key
}

// Row is one group of the aggregation. Year and State are set only when
// they are grouping keys.
type Row struct {
	Cause   string `json:"cause"`
	Year    int    `json:"year,omitempty"`
	State   string `json:"state,omitempty"`
	Deaths  int64  `json:"deaths"`
	Records int    `json:"records"`
}

// Validate checks the grouping keys.
func (q Query) Validate() error {
	seen := map[Key]bool{}
	hasCause := len(q.GroupBy) == 0
	for _, k := range q.GroupBy {
		switch k {
		case KeyCause:
			hasCause = true
		case KeyYear, KeyState:
		default:
			return fmt.Errorf("unknown group key: %q", k)
		}
		if seen[k] {
			return fmt.Errorf("duplicate group key: %q", k)
		}
		seen[k] = true
	}
	if !hasCause {
		return errors.New("group keys must include cause")
	}
	return nil
}

func (q Query) keys() []Key {
	if len(q.GroupBy) == 0 {
		return []Key{KeyCause}
	}
	return q.GroupBy
}

func (q Query) match(r mortality.Record, exclude string) bool {
	if q.Year != 0 && r.Year != q.Year {
		return false
	}
	if q.State != "" && r.State != q.State {
		return false
	}
	if q.ExcludeTotals && r.IsTotal {
		return false
	}
	if exclude != "" && strings.Contains(strings.ToLower(r.Cause), exclude) {
		return false
	}
	return true
}

type groupKey struct {
	cause string
	year  int
	state string
}

// Aggregate filters the table by q and sums deaths per group. Rows come out
// in order of first appearance of their group in the filtered input; a query
// that matches nothing yields an empty, non-nil slice. The table is not
// modified.
func Aggregate(t *mortality.Table, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var byYear, byState bool
	for _, k := range q.keys() {
		switch k {
		case KeyYear:
			byYear = true
		case KeyState:
			byState = true
		}
	}
	exclude := strings.ToLower(q.ExcludeCause)

	out := []Row{}
	index := map[groupKey]int{}
	t.Each(func(r mortality.Record) bool {
		if !q.match(r, exclude) {
			return true
		}
		gk := groupKey{cause: r.Cause}
		if byYear {
			gk.year = r.Year
		}
		if byState {
			gk.state = r.State
		}
		i, ok := index[gk]
		if !ok {
			i = len(out)
			index[gk] = i
			out = append(out, Row{Cause: gk.cause, Year: gk.year, State: gk.state})
		}
		out[i].Deaths += r.Deaths
		out[i].Records++
		return true
	})
	return out, nil
}

// Timeline groups by (cause, year) across every year, the data behind the
// animated over-time view.
func Timeline(t *mortality.Table, state, excludeCause string, excludeTotals bool) ([]Row, error) {
	rows, err := Aggregate(t, Query{
		State:         state,
		ExcludeCause:  excludeCause,
		ExcludeTotals: excludeTotals,
		GroupBy:       []Key{KeyCause, KeyYear},
	})
	if err != nil {
		return nil, err
	}
	Sort(rows, SortYear)
	return rows, nil
}

// Total sums deaths across rows.
func Total(rows []Row) int64 {
	var n int64
	for _, r := range rows {
		n += r.Deaths
	}
	return n
}

// SortOrder names a display ordering.
type SortOrder string

const (
	SortNone   SortOrder = ""
	SortDeaths SortOrder = "deaths"
	SortCause  SortOrder = "cause"
	SortYear   SortOrder = "year"
)

// ParseSortOrder validates a sort name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortDeaths, SortCause, SortYear:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (use deaths|cause|year)", s)
	}
}

// Sort orders rows in place: deaths descending, cause ascending, or year
// ascending. Ties fall back to cause, then year, then state.
func Sort(rows []Row, order SortOrder) {
	if order == SortNone {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case SortDeaths:
			if a.Deaths != b.Deaths {
				return a.Deaths > b.Deaths
			}
		case SortYear:
			if a.Year != b.Year {
				return a.Year < b.Year
			}
		}
		if a.Cause != b.Cause {
			return a.Cause < b.Cause
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.State < b.State
	})
}
