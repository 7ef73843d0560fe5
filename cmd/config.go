package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/causeboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set causeboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "default_state: %s\n", cfg.DefaultState)
		fmt.Fprintf(out, "exclude_cause: %s\n", cfg.ExcludeCause)
		fmt.Fprintf(out, "exclude_totals: %t\n", cfg.ExcludeTotals)
		if cfg.DefaultSort != "" {
			fmt.Fprintf(out, "default_sort: %s\n", cfg.DefaultSort)
		}
		fmt.Fprintf(out, "fill_strategy: %s\n", cfg.FillStrategy)
		fmt.Fprintf(out, "fill_scope: %s\n", cfg.FillScope)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "read_timeout_sec: %d\n", cfg.ReadTimeoutSec)
		fmt.Fprintf(out, "write_timeout_sec: %d\n", cfg.WriteTimeoutSec)
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", cfg.ShutdownTimeoutSec)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "⚠ invalid: %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Reload from disk so --data, --fill and --debug overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_path":
			c.DataPath = val
		case "default_state":
			c.DefaultState = val
		case "exclude_cause":
			c.ExcludeCause = val
		case "exclude_totals":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for exclude_totals: %v", val)
			}
			c.ExcludeTotals = b
		case "default_sort":
			c.DefaultSort = val
		case "fill_strategy":
			c.FillStrategy = val
		case "fill_scope":
			c.FillScope = val
		case "log_level":
			c.LogLevel = val
		case "log_format":
			c.LogFormat = val
		case "listen_addr":
			c.ListenAddr = val
		case "chart_width", "chart_height", "read_timeout_sec", "write_timeout_sec", "shutdown_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			*intField(c, key) = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func intField(c *cfgpkg.Global, key string) *int {
	switch key {
	case "chart_width":
		return &c.ChartWidth
	case "chart_height":
		return &c.ChartHeight
	case "read_timeout_sec":
		return &c.ReadTimeoutSec
	case "write_timeout_sec":
		return &c.WriteTimeoutSec
	default:
		return &c.ShutdownTimeoutSec
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
