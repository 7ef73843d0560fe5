package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func small() Options {
	return Options{Title: "test", Width: 4 * vg.Inch, Height: 3 * vg.Inch}
}

func TestBar_WritesPNG(t *testing.T) {
	rows := []aggregate.Row{
		{Cause: "Diseases of heart", Deaths: 647457},
		{Cause: "Cancer", Deaths: 599108},
		{Cause: "Chronic lower respiratory diseases and other long labels", Deaths: 160201},
	}
	p, err := Bar(rows, small())
	require.NoError(t, err)
	assert.Equal(t, "test", p.Title.Text)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p, small()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTimeline_WritesPNG(t *testing.T) {
	rows := []aggregate.Row{
		{Cause: "Cancer", Year: 2017, Deaths: 599108},
		{Cause: "Cancer", Year: 2016, Deaths: 598038},
		{Cause: "Stroke", Year: 2016, Deaths: 142142},
		{Cause: "Stroke", Year: 2017, Deaths: 146383},
	}
	p, err := Timeline(rows, small())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p, Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestNoData(t *testing.T) {
	_, err := Bar(nil, small())
	assert.ErrorIs(t, err, ErrNoData)
	_, err = Timeline([]aggregate.Row{}, small())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestShortLabel(t *testing.T) {
	assert.Equal(t, "Cancer", shortLabel("Cancer"))
	long := shortLabel("Chronic lower respiratory diseases and more")
	assert.Len(t, []rune(long), 28)
}
