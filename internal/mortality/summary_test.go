package mortality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	p := writeDataset(t, "deaths.csv",
		sourceHeader,
		`2016,Malignant neoplasms,Cancer,Ohio,"25,000",`,
		`2017,All causes,All causes,Ohio,"120,000",800.5`,
		`2017,Malignant neoplasms,Cancer,Alabama,"10,100",160.2`,
	)
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)

	s := Summarize(tbl, 2)
	rows, cols := s.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 6, cols)
	assert.Equal(t, "deaths.csv", s.Name)
	assert.Equal(t, []int{2016, 2017}, s.Years)
	assert.Equal(t, 2, s.States)
	assert.Equal(t, 2, s.Causes)
	assert.Equal(t, 1, s.TotalRows)
	assert.Equal(t, int64(155100), s.Deaths)
	assert.Equal(t, 1, s.RateMissing)
	require.Len(t, s.Head, 2)

	md := s.Markdown()
	assert.Contains(t, md, "Shape: (3, 6)")
	assert.Contains(t, md, "Years: 2016-2017 (2 distinct)")
	assert.Contains(t, md, "| Year | 113 Cause Name | Cause Name | State | Deaths | Age-adjusted Death Rate |")
	assert.Contains(t, md, "| 2017 | All causes | All causes | Ohio | 120000 | 800.5 |")
}

func TestSummarize_HeadLargerThanTable(t *testing.T) {
	p := writeDataset(t, "deaths.csv", sourceHeader, `2017,x,Cancer,Ohio,1,2`)
	tbl, err := Load(p, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, Summarize(tbl, 10).Head, 1)
}
