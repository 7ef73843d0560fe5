package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var yearsCmd = &cobra.Command{
	Use:   "years [file]",
	Short: "List the years present in the dataset",
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
		for _, y := range t.Years() {
			fmt.Fprintln(cmd.OutOrStdout(), y)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}
