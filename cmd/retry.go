package main

import (
	"github.com/spf13/cobra"
)

func retryCommand(a *app) *cobra.Command {
	var (
		inputPath  string
		reportPath string
		outPath    string
		threshold  float64
	)
	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-fetch incomplete countries and merge them into the harvest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				inputPath = a.cfg.Output.CountriesCSV
			}
			if reportPath == "" {
				reportPath = a.cfg.Output.ReportCSV
			}
			if outPath == "" {
				outPath = a.cfg.Output.CorrectedCSV
			}
			h := a.harvester()
			return h.RetryIncomplete(cmd.Context(), inputPath, reportPath, outPath, threshold)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "harvest CSV to complete (default from config)")
	cmd.Flags().StringVar(&reportPath, "report", "", "coverage report from 'verify' (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "corrected CSV output path (default from config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 100, "retry countries with coverage below this percent")
	return cmd
}
