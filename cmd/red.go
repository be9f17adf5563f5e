package main

import (
	"github.com/spf13/cobra"

	"interpol-harvester/internal/sink"
)

func redCommand(a *app) *cobra.Command {
	var (
		details bool
		csvPath string
		jsnPath string
	)
	cmd := &cobra.Command{
		Use:   "red",
		Short: "Fetch all red notices with full detail hydration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				csvPath = a.cfg.Output.RedCSV
			}
			if jsnPath == "" {
				jsnPath = a.cfg.Output.RedJSON
			}
			h := a.harvester(sink.NewCSV(csvPath), sink.NewJSON(jsnPath))
			_, err := h.Red(cmd.Context(), details)
			return err
		},
	}
	cmd.Flags().BoolVar(&details, "details", true, "hydrate each record from the detail endpoint")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path (default from config)")
	cmd.Flags().StringVar(&jsnPath, "json", "", "JSON output path (default from config)")
	return cmd
}
