package harvest

import (
	"context"
	"fmt"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/metrics"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/segment"
	"interpol-harvester/internal/store"
)

// YellowSegmented fetches every yellow notice by recursively slicing the
// demographic search space. Each pending segment's total is probed first;
// segments over the threshold split (age range halves, then sex) before any
// page is fetched, so no single query runs into the server-side result cap.
// Completed segment labels persist to a journal, making long runs resumable.
func (h *Harvester) YellowSegmented(ctx context.Context) ([]model.Notice, error) {
	progress := store.OpenProgress(h.cfg.Output.ProgressFile)
	h.log.Info("yellow segmented harvest starting",
		"run_id", progress.RunID(),
		"age_min", h.cfg.Harvest.AgeMin,
		"age_max", h.cfg.Harvest.AgeMax,
		"threshold", h.cfg.Harvest.SegmentThreshold)

	pending := []segment.Segment{segment.Root(h.cfg.Harvest.AgeMin, h.cfg.Harvest.AgeMax)}
	var all []model.Notice
	lastFlush := 0

	for len(pending) > 0 {
		seg := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if progress.IsDone(seg.Label()) {
			h.log.Debug("segment already done, skipping", "segment", seg.Label())
			continue
		}

		q := h.segmentQuery(seg)
		total, err := h.client.Total(ctx, interpol.ColorYellow, q)
		if err != nil {
			return all, fmt.Errorf("probe segment %s: %w", seg.Label(), err)
		}
		if total == 0 {
			if err := progress.MarkDone(seg.Label()); err != nil {
				return all, err
			}
			continue
		}

		if total > h.cfg.Harvest.SegmentThreshold {
			if parts, ok := seg.Split(); ok {
				metrics.SegmentsSplit.Inc()
				h.log.Debug("segment over cap, splitting", "segment", seg.Label(), "total", total)
				pending = append(pending, parts...)
				continue
			}
			// Single year, single sex, still over the cap: take what the
			// server will give and let verify/retry cover the gap.
			h.log.Warn("unsplittable segment over cap, fetching anyway",
				"segment", seg.Label(), "total", total)
		}

		added, err := h.collectSegment(ctx, seg, q, total, &all)
		if err != nil {
			// Keep what we have on disk before surfacing the error.
			_ = h.flush(ctx, all)
			return all, err
		}
		h.log.Info("segment collected", "segment", seg.Label(), "records", added, "total_so_far", len(all))

		if err := progress.MarkDone(seg.Label()); err != nil {
			return all, err
		}
		if h.cfg.Harvest.CheckpointEvery > 0 && len(all)-lastFlush >= h.cfg.Harvest.CheckpointEvery {
			if err := h.flush(ctx, all); err != nil {
				return all, err
			}
			lastFlush = len(all)
		}
	}

	if err := h.flush(ctx, all); err != nil {
		return all, err
	}
	if err := progress.Clear(); err != nil {
		h.log.Warn("could not remove progress journal", "error", err)
	}
	h.log.Info("yellow segmented harvest finished", "records", len(all))
	return all, nil
}

func (h *Harvester) segmentQuery(seg segment.Segment) interpol.Query {
	q := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
	q.AgeMin = seg.AgeMin
	q.AgeMax = seg.AgeMax
	q.Sex = seg.Sex
	return q
}

// collectSegment pages through one segment, hydrating each new record from
// the v2 detail endpoint and appending the flattened result to all.
func (h *Harvester) collectSegment(ctx context.Context, seg segment.Segment, q interpol.Query, total int, all *[]model.Notice) (int, error) {
	entries, err := h.fetchAllPages(ctx, interpol.ColorYellow, q, total)
	if err != nil {
		return 0, fmt.Errorf("fetch segment %s: %w", seg.Label(), err)
	}

	added := 0
	for _, entry := range entries {
		key := dedupKey(entry, q)
		if h.dedup.Seen(key) {
			metrics.Duplicates.WithLabelValues(interpol.ColorYellow).Inc()
			continue
		}
		h.dedup.Mark(key)

		var detail model.Payload
		if id := entry.EntityID(); id != "" {
			detail, err = h.client.Detail(ctx, interpol.ColorYellow, "v2", id)
			if err != nil {
				h.log.Warn("detail fetch failed, keeping list entry", "entity_id", id, "error", err)
				detail = nil
			}
			if err := sleep(ctx, h.cfg.Harvest.DetailDelay); err != nil {
				return added, err
			}
		}

		n := model.Flatten(entry, detail, ";")
		applyQueryFallbacks(&n, q)
		*all = append(*all, n)
		added++
		metrics.Notices.WithLabelValues(interpol.ColorYellow).Inc()
	}
	return added, nil
}
