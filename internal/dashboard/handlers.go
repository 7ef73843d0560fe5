package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/chart"
	"github.com/KaramelBytes/causeboard/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type errorResponse struct {
	Error string `json:"error"`
}

type datasetResponse struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	Records      int       `json:"records"`
	Years        []int     `json:"years"`
	States       []string  `json:"states"`
	Causes       []string  `json:"causes"`
	ExtraColumns []string  `json:"extra_columns,omitempty"`
}

type deathsResponse struct {
	Year    int             `json:"year,omitempty"`
	State   string          `json:"state,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
	Rows    []aggregate.Row `json:"rows"`
	Total   int64           `json:"total"`
}

// deathsQuery is a parsed request for the per-cause aggregation.
type deathsQuery struct {
	aggregate.Query
	Sort aggregate.SortOrder
}

func (s *Server) handleHealthy(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, datasetResponse{
		ID:           s.table.ID,
		Source:       s.table.Source,
		LoadedAt:     s.table.LoadedAt,
		Records:      s.table.Len(),
		Years:        s.table.Years(),
		States:       s.table.States(),
		Causes:       s.table.Causes(),
		ExtraColumns: s.table.ExtraColumns,
	})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.table.Years())
}

func (s *Server) handleDeaths(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	rows, err := s.deaths(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	render.JSON(w, r, deathsResponse{
		Year:    q.Year,
		State:   q.State,
		Exclude: q.ExcludeCause,
		Rows:    rows,
		Total:   aggregate.Total(rows),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	rows, err := s.timeline(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	render.JSON(w, r, deathsResponse{
		State:   q.State,
		Exclude: q.ExcludeCause,
		Rows:    rows,
		Total:   aggregate.Total(rows),
	})
}

func (s *Server) handleDeathsChart(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	rows, err := s.deaths(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	opt := s.opts.Chart
	opt.Title = deathsTitle(q)
	s.writeChart(w, r, "bar", func(out io.Writer) error {
		p, err := chart.Bar(rows, opt)
		if err != nil {
			return err
		}
		return chart.WritePNG(out, p, opt)
	})
}

func (s *Server) handleTimelineChart(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	rows, err := s.timeline(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	opt := s.opts.Chart
	opt.Title = "Deaths by Cause over Time"
	if q.State != "" {
		opt.Title += " in " + q.State
	}
	s.writeChart(w, r, "timeline", func(out io.Writer) error {
		p, err := chart.Timeline(rows, opt)
		if err != nil {
			return err
		}
		return chart.WritePNG(out, p, opt)
	})
}

// writeChart renders into a buffer first so a failed render still gets a
// proper error status.
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, kind string, draw func(io.Writer) error) {
	start := time.Now()
	var buf bytes.Buffer
	err := draw(&buf)
	s.metrics.ChartDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if errors.Is(err, chart.ErrNoData) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "no data for the selected filters"})
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "chart render failed", "kind", kind, "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "internal error"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDeathsQuery(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	rows, err := s.deaths(q)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	wb := report.Workbook{Title: deathsTitle(q), Rows: rows, Keys: q.GroupBy}
	if v := r.URL.Query().Get("include_records"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(w, r, fmt.Errorf("invalid include_records %q", v))
			return
		}
		if include {
			wb.Table = s.table
		}
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		s.logger.ErrorContext(r.Context(), "workbook export failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "internal error"})
		return
	}
	name := "deaths.xlsx"
	if q.Year != 0 {
		name = fmt.Sprintf("deaths-%d.xlsx", q.Year)
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) deaths(q deathsQuery) ([]aggregate.Row, error) {
	rows, err := aggregate.Aggregate(s.table, q.Query)
	if err != nil {
		return nil, err
	}
	s.metrics.Aggregations.WithLabelValues("cause").Inc()
	aggregate.Sort(rows, q.Sort)
	return rows, nil
}

func (s *Server) timeline(q deathsQuery) ([]aggregate.Row, error) {
	rows, err := aggregate.Timeline(s.table, q.State, q.ExcludeCause, q.ExcludeTotals)
	if err != nil {
		return nil, err
	}
	s.metrics.Aggregations.WithLabelValues("timeline").Inc()
	return rows, nil
}

// parseDeathsQuery reads year, state, exclude, exclude_totals and sort.
// Absent parameters take the server defaults; a present but empty state or
// exclude disables that filter. year=all selects every year and an absent
// year selects the latest one.
func (s *Server) parseDeathsQuery(r *http.Request) (deathsQuery, error) {
	v := r.URL.Query()
	q := deathsQuery{
		Query: aggregate.Query{
			State:         s.opts.DefaultState,
			ExcludeCause:  s.opts.ExcludeCause,
			ExcludeTotals: s.opts.ExcludeTotals,
		},
		Sort: s.opts.Sort,
	}

	switch year := strings.TrimSpace(v.Get("year")); {
	case year == "":
		q.Year, _ = s.table.LatestYear()
	case strings.EqualFold(year, "all"):
		q.Year = 0
	default:
		n, err := strconv.Atoi(year)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid year: %q", year)
		}
		q.Year = n
	}
	if v.Has("state") {
		q.State = strings.TrimSpace(v.Get("state"))
	}
	if v.Has("exclude") {
		q.ExcludeCause = v.Get("exclude")
	}
	if v.Has("exclude_totals") {
		b, err := strconv.ParseBool(v.Get("exclude_totals"))
		if err != nil {
			return q, fmt.Errorf("invalid exclude_totals: %q", v.Get("exclude_totals"))
		}
		q.ExcludeTotals = b
	}
	if v.Has("sort") {
		o, err := aggregate.ParseSortOrder(v.Get("sort"))
		if err != nil {
			return q, err
		}
		q.Sort = o
	}
	if v.Has("group_by") {
		keys, err := aggregate.ParseKeys(strings.Split(v.Get("group_by"), ","))
		if err != nil {
			return q, err
		}
		q.GroupBy = keys
	}
	return q, nil
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func deathsTitle(q deathsQuery) string {
	title := "Causes of Death"
	if q.State != "" {
		title += " in " + q.State
	}
	if q.Year != 0 {
		title += fmt.Sprintf(" (%d)", q.Year)
	}
	return title
}
