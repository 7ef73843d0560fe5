package mortality

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCSV_RoundTrip(t *testing.T) {
	src := writeDataset(t, "src.csv",
		sourceHeader+",Note",
		`2017,"Heart (I00-I09)","Diseases of heart","United States","647,457",165.0,final`,
		`2017,,"All causes","United States","2,813,503",,final`,
		`2016,,Suicide,Ohio,1700,,`,
	)
	first, err := Load(src, DefaultOptions())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "cleaned.csv")
	require.NoError(t, SaveCSV(out, first))

	second, err := Load(out, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Records(), second.Records())
	assert.Equal(t, first.ExtraColumns, second.ExtraColumns)
}

func TestWriteCSV_Layout(t *testing.T) {
	src := writeDataset(t, "layout.csv",
		"State,Deaths,Cause Name,Year",
		`Ohio,"1,500",Cancer,2017`,
	)
	tbl, err := Load(src, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, sourceHeader, lines[0])
	assert.Equal(t, "2017,,Cancer,Ohio,1500,", lines[1])
}
