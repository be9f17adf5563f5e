package harvest

import (
	"context"
	"fmt"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/metrics"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/segment"
)

// AllCountryCodes returns every two-letter code AA..ZZ. The API accepts
// arbitrary nationality filters and answers total=0 for unassigned codes,
// so the sweep simply probes all 676 combinations.
func AllCountryCodes() []string {
	out := make([]string, 0, 26*26)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			out = append(out, string(a)+string(b))
		}
	}
	return out
}

// CountrySweep fetches yellow notices country by country. Countries whose
// totals exceed the page cap refine by sex, then by single-year age buckets;
// each country is additionally probed by country of birth. No detail
// hydration: the sweep trades column completeness for coverage speed.
func (h *Harvester) CountrySweep(ctx context.Context) ([]model.Notice, error) {
	countries := AllCountryCodes()
	h.log.Info("country sweep starting", "countries", len(countries))

	var all []model.Notice
	for i, country := range countries {
		added, err := h.sweepCountry(ctx, country, &all)
		if err != nil {
			if ctx.Err() != nil {
				_ = h.flush(ctx, all)
				return all, err
			}
			// One bad country should not sink six hundred others.
			h.log.Warn("country failed, moving on", "country", country, "error", err)
		}
		if added > 0 {
			h.log.Info("country swept", "country", country, "records", added, "total_so_far", len(all))
		}

		if (i+1)%5 == 0 {
			if err := h.flush(ctx, all); err != nil {
				return all, err
			}
		}
		if err := sleep(ctx, h.cfg.Harvest.CountryDelay); err != nil {
			return all, err
		}
	}

	if err := h.flush(ctx, all); err != nil {
		return all, err
	}
	h.log.Info("country sweep finished", "records", len(all))
	return all, nil
}

// sweepCountry collects one country: direct when the total fits in one
// capped result set, otherwise refined by sex and single-year age buckets,
// plus a country-of-birth pass.
func (h *Harvester) sweepCountry(ctx context.Context, country string, all *[]model.Notice) (int, error) {
	added := 0

	byNat := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
	byNat.Nationality = country
	total, err := h.client.Total(ctx, interpol.ColorYellow, byNat)
	if err != nil {
		return added, fmt.Errorf("probe %s: %w", country, err)
	}

	switch {
	case total == 0:
		// nothing under this nationality
	case total <= h.cfg.Harvest.PerPage:
		n, err := h.collectFiltered(ctx, byNat, total, all)
		added += n
		if err != nil {
			return added, err
		}
	default:
		h.log.Debug("country over page cap, refining by sex", "country", country, "total", total)
		n, err := h.sweepCountryBySex(ctx, country, all)
		added += n
		if err != nil {
			return added, err
		}
	}

	// Yellow notices are also searchable by country of birth; some records
	// only surface through that filter.
	byBirth := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
	byBirth.CountryOfBirth = country
	birthTotal, err := h.client.Total(ctx, interpol.ColorYellow, byBirth)
	if err != nil {
		return added, fmt.Errorf("probe %s by birth country: %w", country, err)
	}
	if birthTotal > 0 && birthTotal <= h.cfg.Harvest.PerPage {
		n, err := h.collectFiltered(ctx, byBirth, birthTotal, all)
		added += n
		if err != nil {
			return added, err
		}
	}

	return added, nil
}

func (h *Harvester) sweepCountryBySex(ctx context.Context, country string, all *[]model.Notice) (int, error) {
	added := 0
	for _, sex := range segment.Sexes {
		q := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
		q.Nationality = country
		q.Sex = sex
		total, err := h.client.Total(ctx, interpol.ColorYellow, q)
		if err != nil {
			return added, fmt.Errorf("probe %s sex=%s: %w", country, sex, err)
		}
		switch {
		case total == 0:
			continue
		case total <= h.cfg.Harvest.PerPage:
			n, err := h.collectFiltered(ctx, q, total, all)
			added += n
			if err != nil {
				return added, err
			}
		default:
			h.log.Debug("sex bucket over page cap, refining by age",
				"country", country, "sex", sex, "total", total)
			n, err := h.sweepCountryByAge(ctx, country, sex, all)
			added += n
			if err != nil {
				return added, err
			}
		}
	}
	return added, nil
}

func (h *Harvester) sweepCountryByAge(ctx context.Context, country, sex string, all *[]model.Notice) (int, error) {
	added := 0
	for age := h.cfg.Harvest.AgeMin; age < h.cfg.Harvest.AgeMax; age++ {
		q := interpol.NewQuery(1, h.cfg.Harvest.PerPage)
		q.Nationality = country
		q.Sex = sex
		q.AgeMin = age
		q.AgeMax = age + 1
		total, err := h.client.Total(ctx, interpol.ColorYellow, q)
		if err != nil {
			return added, fmt.Errorf("probe %s sex=%s age=%d: %w", country, sex, age, err)
		}
		if total == 0 {
			continue
		}
		n, err := h.collectFiltered(ctx, q, total, all)
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

// collectFiltered pages through one filter combination and appends the new
// flattened records (list entries only) to all.
func (h *Harvester) collectFiltered(ctx context.Context, q interpol.Query, total int, all *[]model.Notice) (int, error) {
	entries, err := h.fetchAllPages(ctx, interpol.ColorYellow, q, total)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, entry := range entries {
		key := dedupKey(entry, q)
		if h.dedup.Seen(key) {
			metrics.Duplicates.WithLabelValues(interpol.ColorYellow).Inc()
			continue
		}
		h.dedup.Mark(key)

		n := model.Flatten(entry, nil, ";")
		applyQueryFallbacks(&n, q)
		*all = append(*all, n)
		added++
		metrics.Notices.WithLabelValues(interpol.ColorYellow).Inc()
	}
	return added, nil
}
