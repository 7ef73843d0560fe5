package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/causeboard/internal/mortality"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, mortality.NationalState, c.DefaultState)
	assert.Equal(t, "all", c.ExcludeCause)
	assert.Equal(t, "forward", c.FillStrategy)
	assert.Equal(t, "state", c.FillScope)
	assert.Equal(t, ":8050", c.ListenAddr)
	require.NoError(t, c.Validate())

	fill, err := c.Fill()
	require.NoError(t, err)
	assert.Equal(t, "forward/state", fill.Name())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	c.DataPath = "/data/deaths.csv"
	c.FillScope = "global"
	c.ChartWidth = 800
	require.NoError(t, Save(c, ""))

	dir, err := Dir()
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9000\"\nlog_level: debug\n"), 0o644))
	t.Setenv("CAUSEBOARD_LISTEN_ADDR", ":9100")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", c.ListenAddr)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsErrors(t *testing.T) {
	c := &Global{
		FillStrategy: "guess",
		DefaultSort:  "random",
		LogLevel:     "loud",
		LogFormat:    "xml",
		ChartWidth:   10,
		ChartHeight:  576,
	}
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"data_path", "fill strategy", "invalid sort", "log level", "log_format", "chart_width", "listen_addr", "read_timeout_sec"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "chart_height")
}
