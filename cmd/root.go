package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/causeboard/internal/config"
	"github.com/KaramelBytes/causeboard/internal/logging"
	"github.com/KaramelBytes/causeboard/internal/mortality"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Dataset flags (override config if set)
	flagDataPath  string
	flagFill      string
	flagFillScope string
	flagSheet     string
	flagDelimiter string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "causeboard",
	Short: "causeboard: leading causes of death in the United States",
	Long: `causeboard cleans the NCHS leading-causes-of-death dataset, aggregates deaths by
cause for a year and state, renders charts and workbooks, and serves an
interactive dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.causeboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data", "", "dataset path, .csv/.tsv/.xlsx (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFill, "fill", "", "missing rate strategy: forward|zero|reject|none (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFillScope, "fill-scope", "", "forward fill scope: global|state|cause (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to read (default first sheet)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagDataPath != "" {
		cfg.DataPath = flagDataPath
	}
	if f.Changed("fill") {
		cfg.FillStrategy = flagFill
	}
	if f.Changed("fill-scope") {
		cfg.FillScope = flagFillScope
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	lg, err := logging.New(os.Stderr, cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = lg
}

// requireConfig returns the loaded configuration after validating it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, errors.New("no config loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// datasetPath picks the positional argument when given, else data_path.
func datasetPath(c *cfgpkg.Global, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.DataPath
}

// loadTable reads and cleans the dataset with the configured options.
func loadTable(c *cfgpkg.Global, path string) (*mortality.Table, error) {
	opt, err := c.LoadOptions()
	if err != nil {
		return nil, err
	}
	opt.Sheet = flagSheet
	if flagDelimiter != "" {
		switch flagDelimiter {
		case ",":
			opt.Delimiter = ','
		case "tab", "\\t", "\t":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|":
			opt.Delimiter = '|'
		default:
			return nil, fmt.Errorf("unsupported --delimiter: %s", flagDelimiter)
		}
	}
	opt.Logger = logger
	t, err := mortality.Load(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "path", path, "records", t.Len(), "id", t.ID)
	return t, nil
}

// parseYear maps "" to the latest year in t, "all" to 0, else an integer.
func parseYear(s string, t *mortality.Table) (int, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		y, _ := t.LatestYear()
		return y, nil
	case strings.EqualFold(s, "all"):
		return 0, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 0 {
		return 0, fmt.Errorf("invalid --year: %s (use a year or 'all')", s)
	}
	return y, nil
}
