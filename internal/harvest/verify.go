package harvest

import (
	"context"
	"fmt"
	"math"
	"sort"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/sink"
)

// Verify compares a harvest CSV against the API: for every nationality
// present in the file it probes the API's total and reports local count,
// missing records and coverage percent. The report is written to reportPath
// and returned.
func (h *Harvester) Verify(ctx context.Context, inputPath, reportPath string) ([]sink.CoverageRow, error) {
	notices, err := sink.ReadNotices(inputPath)
	if err != nil {
		return nil, fmt.Errorf("load harvest: %w", err)
	}

	counts := make(map[string]int)
	for i := range notices {
		if c := primaryNationality(&notices[i]); c != "" {
			counts[c]++
		}
	}
	countries := make([]string, 0, len(counts))
	for c := range counts {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	h.log.Info("verifying coverage", "input", inputPath, "countries", len(countries))

	rows := make([]sink.CoverageRow, 0, len(countries))
	for _, country := range countries {
		q := interpol.NewQuery(1, 1)
		q.Nationality = country
		apiTotal, err := h.client.Total(ctx, interpol.ColorYellow, q)
		if err != nil {
			return rows, fmt.Errorf("probe %s: %w", country, err)
		}

		local := counts[country]
		missing := apiTotal - local
		if missing < 0 {
			missing = 0
		}
		coverage := 0.0
		if apiTotal > 0 {
			coverage = math.Round(float64(local)/float64(apiTotal)*1000) / 10
		}
		rows = append(rows, sink.CoverageRow{
			Country:    country,
			TotalAPI:   apiTotal,
			LocalCount: local,
			Missing:    missing,
			Coverage:   coverage,
		})

		if missing > 0 {
			h.log.Warn("incomplete country", "country", country, "local", local, "api_total", apiTotal, "coverage", coverage)
		} else {
			h.log.Debug("country complete", "country", country, "local", local, "api_total", apiTotal)
		}
		if err := sleep(ctx, h.cfg.Harvest.PageDelay); err != nil {
			return rows, err
		}
	}

	if err := sink.WriteReport(reportPath, rows); err != nil {
		return rows, fmt.Errorf("write report: %w", err)
	}
	h.log.Info("coverage report written", "path", reportPath, "countries", len(rows))
	return rows, nil
}
