package harvest

import (
	"context"
	"fmt"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/sink"
)

// RetryIncomplete reads the coverage report, re-fetches every country whose
// coverage sits below threshold (percent), and merges the newly found
// records into the harvest at inputPath, writing the result to outPath.
// The first pass re-queries by nationality without demographic filters; a
// second pass queries by country of birth, which surfaces records the
// nationality filter misses.
func (h *Harvester) RetryIncomplete(ctx context.Context, inputPath, reportPath, outPath string, threshold float64) error {
	report, err := sink.ReadReport(reportPath)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	var incomplete []string
	for _, row := range report {
		if row.Coverage < threshold {
			incomplete = append(incomplete, row.Country)
		}
	}
	if len(incomplete) == 0 {
		h.log.Info("all countries complete, nothing to retry")
		return nil
	}
	h.log.Info("retrying incomplete countries", "count", len(incomplete), "threshold", threshold)

	var recovered []model.Notice
	for _, country := range incomplete {
		// Pass 1: plain nationality query, no demographic slicing.
		q := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
		q.Nationality = country
		total, err := h.client.Total(ctx, interpol.ColorYellow, q)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			h.log.Warn("retry probe failed", "country", country, "error", err)
			continue
		}
		if total > 0 {
			n, err := h.collectFiltered(ctx, q, total, &recovered)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				h.log.Warn("retry fetch failed", "country", country, "error", err)
			}
			h.log.Info("retry pass by nationality", "country", country, "records", n)
		}

		// Pass 2: country of birth.
		qb := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
		qb.CountryOfBirth = country
		birthTotal, err := h.client.Total(ctx, interpol.ColorYellow, qb)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			h.log.Warn("birth-country probe failed", "country", country, "error", err)
			continue
		}
		if birthTotal > 0 {
			n, err := h.collectFiltered(ctx, qb, birthTotal, &recovered)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				h.log.Warn("birth-country fetch failed", "country", country, "error", err)
			}
			h.log.Info("retry pass by birth country", "country", country, "records", n)
		}

		if err := sleep(ctx, h.cfg.Harvest.CountryDelay); err != nil {
			return err
		}
	}

	existing, err := sink.ReadNotices(inputPath)
	if err != nil {
		return fmt.Errorf("load harvest: %w", err)
	}
	merged := mergeNotices(existing, recovered)
	h.log.Info("merging recovered records",
		"existing", len(existing), "recovered", len(recovered), "merged", len(merged))

	if err := sink.NewCSV(outPath).Write(ctx, merged); err != nil {
		return fmt.Errorf("write corrected harvest: %w", err)
	}
	h.log.Info("corrected harvest written", "path", outPath, "records", len(merged))
	return nil
}

// mergeNotices appends the recovered records that the existing harvest does
// not already hold, keyed on (entity_id, url).
func mergeNotices(existing, recovered []model.Notice) []model.Notice {
	type key struct{ id, url string }
	seen := make(map[key]struct{}, len(existing))
	for i := range existing {
		seen[key{existing[i].EntityID, existing[i].URL}] = struct{}{}
	}
	merged := existing
	for i := range recovered {
		k := key{recovered[i].EntityID, recovered[i].URL}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, recovered[i])
	}
	return merged
}
