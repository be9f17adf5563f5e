package harvest

import (
	"context"
	"fmt"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/metrics"
	"interpol-harvester/internal/model"
)

// Red fetches every red notice page by page. When withDetails is set, each
// record is hydrated from the v1 detail endpoint; a failed or vanished
// detail degrades to the list entry. Absent values are written as "N/A",
// matching the historical red output, and list fields join with ", ".
func (h *Harvester) Red(ctx context.Context, withDetails bool) ([]model.Notice, error) {
	var all []model.Notice
	lastFlush := 0

	page := 1
	for {
		q := interpol.NewQuery(page, h.cfg.Harvest.PerPage)
		sp, err := h.client.Search(ctx, interpol.ColorRed, q)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		if len(sp.Notices) == 0 {
			break
		}
		h.log.Info("red page fetched", "page", page, "records", len(sp.Notices), "total", sp.Total)

		for _, entry := range sp.Notices {
			key := dedupKey(entry, q)
			if h.dedup.Seen(key) {
				metrics.Duplicates.WithLabelValues(interpol.ColorRed).Inc()
				continue
			}
			h.dedup.Mark(key)

			var detail model.Payload
			if withDetails {
				if id := entry.EntityID(); id != "" {
					detail, err = h.client.Detail(ctx, interpol.ColorRed, "v1", id)
					if err != nil {
						h.log.Warn("detail fetch failed, keeping list entry", "entity_id", id, "error", err)
						detail = nil
					}
					if err := sleep(ctx, h.cfg.Harvest.DetailDelay); err != nil {
						return all, err
					}
				}
			}

			n := model.Flatten(entry, detail, ", ").FillNA("N/A")
			all = append(all, n)
			metrics.Notices.WithLabelValues(interpol.ColorRed).Inc()
		}

		if h.cfg.Harvest.CheckpointEvery > 0 && len(all)-lastFlush >= h.cfg.Harvest.CheckpointEvery {
			if err := h.flush(ctx, all); err != nil {
				return all, err
			}
			lastFlush = len(all)
		}

		if sp.Total > 0 && len(all) >= sp.Total {
			h.log.Info("all red notices retrieved", "total", sp.Total)
			break
		}
		page++
		if err := sleep(ctx, h.cfg.Harvest.PageDelay); err != nil {
			return all, err
		}
	}

	if err := h.flush(ctx, all); err != nil {
		return all, err
	}
	h.log.Info("red harvest finished", "records", len(all))
	return all, nil
}
