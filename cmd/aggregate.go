package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/causeboard/internal/config"
	"github.com/KaramelBytes/causeboard/internal/mortality"
	"github.com/KaramelBytes/causeboard/internal/report"
	"github.com/KaramelBytes/causeboard/internal/utils"
)

// queryFlags are the filter flags shared by aggregate and chart.
type queryFlags struct {
	year          string
	state         string
	exclude       string
	excludeTotals bool
	groupBy       []string
	sort          string
	timeline      bool
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&q.year, "year", "", "year to aggregate, or 'all' (default latest)")
	f.StringVar(&q.state, "state", "", "exact state filter; empty string for all states (default config default_state)")
	f.StringVar(&q.exclude, "exclude", "", "drop causes containing this text, case-insensitive (default config exclude_cause)")
	f.BoolVar(&q.excludeTotals, "exclude-totals", false, "drop all-causes rows (default config exclude_totals)")
	f.StringSliceVar(&q.groupBy, "group-by", nil, "grouping keys: cause,year,state (default cause)")
	f.StringVar(&q.sort, "sort", "", "row order: deaths|cause|year (default config default_sort)")
	f.BoolVar(&q.timeline, "timeline", false, "group by cause and year across all years")
}

// build resolves flags against config defaults. Changed flags win, so an
// explicit --state "" clears the configured state.
func (q *queryFlags) build(cmd *cobra.Command, c *cfgpkg.Global, t *mortality.Table) (aggregate.Query, aggregate.SortOrder, error) {
	f := cmd.Flags()
	out := aggregate.Query{
		State:         c.DefaultState,
		ExcludeCause:  c.ExcludeCause,
		ExcludeTotals: c.ExcludeTotals,
	}
	if f.Changed("state") {
		out.State = strings.TrimSpace(q.state)
	}
	if f.Changed("exclude") {
		out.ExcludeCause = q.exclude
	}
	if f.Changed("exclude-totals") {
		out.ExcludeTotals = q.excludeTotals
	}
	sortName := c.DefaultSort
	if f.Changed("sort") {
		sortName = q.sort
	}
	order, err := aggregate.ParseSortOrder(sortName)
	if err != nil {
		return out, "", err
	}

	if q.timeline {
		out.GroupBy = []aggregate.Key{aggregate.KeyCause, aggregate.KeyYear}
		if order == aggregate.SortNone {
			order = aggregate.SortYear
		}
		return out, order, nil
	}
	year, err := parseYear(q.year, t)
	if err != nil {
		return out, "", err
	}
	out.Year = year
	if len(q.groupBy) > 0 {
		keys, err := aggregate.ParseKeys(q.groupBy)
		if err != nil {
			return out, "", err
		}
		out.GroupBy = keys
	}
	return out, order, nil
}

var (
	aggQuery      queryFlags
	aggFormat     string
	aggOutputPath string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [file]",
	Short: "Sum deaths by cause for a year and state",
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
		q, order, err := aggQuery.build(cmd, c, t)
		if err != nil {
			return err
		}
		rows, err := aggregate.Aggregate(t, q)
		if err != nil {
			return err
		}
		aggregate.Sort(rows, order)
		logger.Debug("aggregated", "year", q.Year, "state", q.State, "exclude", q.ExcludeCause, "groups", len(rows))

		title := aggregateTitle(q)
		var data []byte
		switch strings.ToLower(strings.TrimSpace(aggFormat)) {
		case "", "markdown", "md":
			data = []byte(aggregate.Markdown(title, rows, q.GroupBy))
		case "csv":
			var b strings.Builder
			if err := aggregate.WriteCSV(&b, rows, q.GroupBy); err != nil {
				return err
			}
			data = []byte(b.String())
		case "json":
			b, err := utils.PrettyJSON(rows)
			if err != nil {
				return err
			}
			data = append(b, '\n')
		case "xlsx":
			if aggOutputPath == "" {
				return fmt.Errorf("--format xlsx requires --output")
			}
			wb := report.Workbook{Title: title, Rows: rows, Keys: q.GroupBy}
			if err := wb.Save(aggOutputPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote workbook to %s\n", aggOutputPath)
			return nil
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|csv|json|xlsx)", aggFormat)
		}

		if aggOutputPath != "" {
			if err := utils.SafeWriteFile(aggOutputPath, data); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d groups to %s\n", len(rows), aggOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func aggregateTitle(q aggregate.Query) string {
	title := "Causes of Death"
	if q.State != "" {
		title += " in " + q.State
	}
	if q.Year != 0 {
		title += fmt.Sprintf(" (%d)", q.Year)
	}
	return title
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggQuery.bind(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggFormat, "format", "f", "markdown", "output format: markdown|csv|json|xlsx")
	aggregateCmd.Flags().StringVarP(&aggOutputPath, "output", "o", "", "optional path to write the result")
}
