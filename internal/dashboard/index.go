package dashboard

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 10px; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="get" action="/">
  <label for="year">Year</label>
  <select id="year" name="year" onchange="this.form.submit()">
    <option value="all"{{if eq .Year 0}} selected{{end}}>All years</option>
    {{- range .Years}}
    <option value="{{.}}"{{if eq . $.Year}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <noscript><button type="submit">Show</button></noscript>
</form>
{{if .Rows}}
<p><img src="{{.ChartURL}}" alt="{{.Title}}"></p>
<table>
  <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
  {{- range .Rows}}
    <tr>{{range .Keys}}<td>{{.}}</td>{{end}}<td class="num">{{.Deaths}}</td></tr>
  {{- end}}
  </tbody>
  <tfoot><tr><th colspan="{{.KeySpan}}">Total</th><td class="num">{{.Total}}</td></tr></tfoot>
</table>
<p><a href="{{.ExportURL}}">Download workbook</a> · <a href="/charts/timeline.png">Timeline chart</a></p>
{{else}}
<p>No records match the selected year.</p>
{{end}}
</body>
</html>
`))

type indexData struct {
	Title     string
	Year      int
	Years     []int
	Columns   []string
	KeySpan   int
	Rows      []indexRow
	Total     int64
	ChartURL  string
	ExportURL string
}

// indexRow holds one table row split into its group-by cells and deaths.
type indexRow struct {
	Keys   []string
	Deaths string
}

// indexTable lays rows out under the group-by columns of keys.
func indexTable(rows []aggregate.Row, keys []aggregate.Key) ([]string, []indexRow) {
	cols := aggregate.Columns(keys)
	for i, c := range cols {
		cols[i] = strings.ToUpper(c[:1]) + c[1:]
	}
	out := make([]indexRow, 0, len(rows))
	for _, r := range rows {
		vals := aggregate.Values(r, keys)
		n := len(vals) - 1
		out = append(out, indexRow{Keys: vals[:n], Deaths: vals[n]})
	}
	return cols, out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if q.Sort == aggregate.SortNone {
		q.Sort = aggregate.SortDeaths
	}
	rows, err := s.deaths(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	cq := r.URL.Query()
	year := "all"
	if q.Year != 0 {
		year = strconv.Itoa(q.Year)
	}
	cq.Set("year", year)
	cq.Set("sort", string(q.Sort))

	cols, cells := indexTable(rows, q.GroupBy)
	var buf bytes.Buffer
	err = indexTmpl.Execute(&buf, indexData{
		Title:     deathsTitle(q),
		Year:      q.Year,
		Years:     s.table.Years(),
		Columns:   cols,
		KeySpan:   len(cols) - 1,
		Rows:      cells,
		Total:     aggregate.Total(rows),
		ChartURL:  "/charts/deaths.png?" + cq.Encode(),
		ExportURL: "/export/deaths.xlsx?" + cq.Encode(),
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render index failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	render.HTML(w, r, buf.String())
}
