package mortality

import "strings"

// Canonical field names.
const (
	ColYear        = "year"
	ColState       = "state"
	ColCause       = "cause"
	ColCauseDetail = "cause_detail"
	ColDeaths      = "deaths"
	ColRate        = "age_adjusted_death_rate"
)

type column struct {
	canonical string
	source    string
	required  bool
}

// schema lists recognized columns in export order.
var schema = []column{
	{canonical: ColYear, source: "Year", required: true},
	{canonical: ColCauseDetail, source: "113 Cause Name"},
	{canonical: ColCause, source: "Cause Name", required: true},
	{canonical: ColState, source: "State", required: true},
	{canonical: ColDeaths, source: "Deaths", required: true},
	{canonical: ColRate, source: "Age-adjusted Death Rate"},
}

// aliases maps a normalized header name to its canonical name. Both the
// source names and the canonical names are accepted.
var aliases = func() map[string]string {
	m := make(map[string]string, len(schema)*2)
	for _, c := range schema {
		m[normalizeHeader(c.source)] = c.canonical
		m[normalizeHeader(c.canonical)] = c.canonical
	}
	return m
}()

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// layout records where each column of a source header lives.
type layout struct {
	index      map[string]int // canonical name -> header index
	extraIdx   []int
	extraNames []string
}

func resolveHeader(path string, header []string) (*layout, error) {
	l := &layout{index: map[string]int{}}
	for i, h := range header {
		if canon, ok := aliases[normalizeHeader(h)]; ok {
			if _, dup := l.index[canon]; !dup {
				l.index[canon] = i
				continue
			}
		}
		l.extraIdx = append(l.extraIdx, i)
		l.extraNames = append(l.extraNames, strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	var missing []string
	for _, c := range schema {
		if !c.required {
			continue
		}
		if _, ok := l.index[c.canonical]; !ok {
			missing = append(missing, c.source)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}
	return l, nil
}

// field returns the trimmed value of a canonical column, or "" if the column
// is absent from the header or the row is short.
func (l *layout) field(row []string, canon string) string {
	i, ok := l.index[canon]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l *layout) extras(row []string) []string {
	if len(l.extraIdx) == 0 {
		return nil
	}
	out := make([]string, len(l.extraIdx))
	for j, i := range l.extraIdx {
		if i < len(row) {
			out[j] = row[i]
		}
	}
	return out
}
