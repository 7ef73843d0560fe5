package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/chart"
	"github.com/KaramelBytes/causeboard/internal/utils"
)

var (
	chartQuery      queryFlags
	chartOutputPath string
)

var chartCmd = &cobra.Command{
	Use:   "chart [file]",
	Short: "Render deaths by cause as a PNG bar chart (or a timeline with --timeline)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		t, err := loadTable(c, datasetPath(c, args))
		if err != nil {
			return err
		}
		q, order, err := chartQuery.build(cmd, c, t)
		if err != nil {
			return err
		}
		if !chartQuery.timeline && order == aggregate.SortNone {
			order = aggregate.SortDeaths
		}
		rows, err := aggregate.Aggregate(t, q)
		if err != nil {
			return err
		}
		aggregate.Sort(rows, order)

		opt := chart.Options{
			Title:  aggregateTitle(q),
			Width:  chart.Pixels(c.ChartWidth),
			Height: chart.Pixels(c.ChartHeight),
		}
		draw := chart.Bar
		if chartQuery.timeline {
			opt.Title = "Deaths by Cause over Time"
			if q.State != "" {
				opt.Title += " in " + q.State
			}
			draw = chart.Timeline
		}
		p, err := draw(rows, opt)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chart.WritePNG(&buf, p, opt); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(chartOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", chartOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartQuery.bind(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutputPath, "output", "o", "deaths.png", "path to write the PNG")
}
