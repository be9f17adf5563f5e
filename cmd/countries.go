package main

import (
	"github.com/spf13/cobra"

	"interpol-harvester/internal/sink"
)

func countriesCommand(a *app) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Fetch yellow notices by sweeping all two-letter country codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				csvPath = a.cfg.Output.CountriesCSV
			}
			h := a.harvester(sink.NewCSV(csvPath))
			_, err := h.CountrySweep(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path (default from config)")
	return cmd
}
