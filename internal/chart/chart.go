// Package chart renders aggregated deaths as PNG charts.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
)

// ErrNoData is returned when there are no rows to draw.
var ErrNoData = errors.New("chart: no rows to draw")

// Options controls chart size and labels.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a landscape chart sized for a browser page.
func DefaultOptions() Options {
	return Options{Width: 12 * vg.Inch, Height: 6 * vg.Inch}
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 12 * vg.Inch
	}
	if h <= 0 {
		h = 6 * vg.Inch
	}
	return w, h
}

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// Bar builds a bar chart of deaths per cause, in row order.
func Bar(rows []aggregate.Row, opt Options) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = opt.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Cause of Death"
	p.Y.Label.Text = "Number of Deaths"

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	var peak float64
	for i, r := range rows {
		values[i] = float64(r.Deaths)
		labels[i] = shortLabel(r.Cause)
		peak = math.Max(peak, values[i])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	if peak > 0 {
		p.Y.Max = peak * 1.1
	}
	return p, nil
}

// Timeline builds one line per cause over years from (cause, year) rows.
func Timeline(rows []aggregate.Row, opt Options) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = opt.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Number of Deaths"
	p.Legend.Top = true

	series := map[string]plotter.XYs{}
	var order []string
	for _, r := range rows {
		if _, ok := series[r.Cause]; !ok {
			order = append(order, r.Cause)
		}
		series[r.Cause] = append(series[r.Cause], plotter.XY{X: float64(r.Year), Y: float64(r.Deaths)})
	}
	for i, cause := range order {
		pts := series[cause]
		sort.Slice(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("timeline %q: %w", cause, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(shortLabel(cause), line)
	}
	p.Add(plotter.NewGrid())
	p.Y.Min = 0
	return p, nil
}

// WritePNG renders p as PNG into w.
func WritePNG(w io.Writer, p *plot.Plot, opt Options) error {
	width, height := opt.size()
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func shortLabel(s string) string {
	const limit = 28
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

// Pixels converts a pixel count at the PNG writer's 96 dpi to a length.
func Pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}
