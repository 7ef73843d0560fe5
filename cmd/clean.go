package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/causeboard/internal/mortality"
	"github.com/KaramelBytes/causeboard/internal/report"
	"github.com/KaramelBytes/causeboard/internal/utils"
)

var (
	cleanOutputPath string
	cleanHeadRows   int
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Clean the dataset and print its shape, columns and first rows",
	Long: `Load the dataset, normalize column names, strip thousands separators from
Deaths, and fill missing age-adjusted death rates. Prints a summary; with
--output writes the cleaned table as CSV ('-' for stdout), or as a workbook
with a single Records sheet when the path ends in .xlsx.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		t, err := loadTable(c, datasetPath(c, args))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if cleanOutputPath == "-" {
			return mortality.WriteCSV(out, t)
		}
		fmt.Fprint(out, mortality.Summarize(t, cleanHeadRows).Markdown())
		if cleanOutputPath != "" {
			save := mortality.SaveCSV
			if strings.EqualFold(filepath.Ext(cleanOutputPath), ".xlsx") {
				save = func(path string, t *mortality.Table) error {
					if err := utils.EnsureDir(path); err != nil {
						return err
					}
					return report.Records(t).Save(path)
				}
			}
			if err := save(cleanOutputPath, t); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote cleaned dataset to %s\n", cleanOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "path to write the cleaned CSV or .xlsx ('-' for stdout)")
	cleanCmd.Flags().IntVar(&cleanHeadRows, "head", 5, "number of leading rows to preview")
}
