package main

import (
	"github.com/spf13/cobra"
)

func verifyCommand(a *app) *cobra.Command {
	var (
		inputPath  string
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check per-country coverage of a harvest against the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				inputPath = a.cfg.Output.CountriesCSV
			}
			if reportPath == "" {
				reportPath = a.cfg.Output.ReportCSV
			}
			h := a.harvester()
			_, err := h.Verify(cmd.Context(), inputPath, reportPath)
			return err
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "harvest CSV to verify (default from config)")
	cmd.Flags().StringVar(&reportPath, "report", "", "coverage report output path (default from config)")
	return cmd
}
