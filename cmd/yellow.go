package main

import (
	"github.com/spf13/cobra"

	"interpol-harvester/internal/sink"
)

func yellowCommand(a *app) *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "yellow",
		Short: "Fetch all yellow notices via recursive demographic slicing",
		Long: `Fetches every yellow notice by probing demographic segments (age range,
sex) and splitting any segment whose result count exceeds the server-side
cap. Progress persists to a journal, so an interrupted run resumes where it
left off.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				csvPath = a.cfg.Output.YellowCSV
			}
			h := a.harvester(sink.NewCSV(csvPath))
			_, err := h.YellowSegmented(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path (default from config)")
	return cmd
}
