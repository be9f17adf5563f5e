// Package harvest drives the notice collection pipelines: fetch pages from
// the public API, flatten each record, dedupe, and checkpoint to the
// configured sinks.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"interpol-harvester/internal/config"
	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/sink"
	"interpol-harvester/internal/store"
)

// API is the slice of the notices client the harvester needs.
type API interface {
	Search(ctx context.Context, color string, q interpol.Query) (model.SearchPage, error)
	Total(ctx context.Context, color string, q interpol.Query) (int, error)
	Detail(ctx context.Context, color, version, entityID string) (model.Payload, error)
}

type Harvester struct {
	cfg    config.Config
	client API
	dedup  *store.Dedup
	sinks  []sink.Sink
	log    *slog.Logger
}

func New(cfg config.Config, client API, sinks ...sink.Sink) *Harvester {
	return &Harvester{
		cfg:    cfg,
		client: client,
		dedup:  store.NewDedup(cfg.Dedup.MaxKeys, cfg.Dedup.TTL),
		sinks:  sinks,
		log:    slog.Default().With("component", "harvest"),
	}
}

// flush writes the current snapshot to every sink in parallel and reports
// the first error. Sinks rewrite their whole file, so a retried flush after
// a partial failure is safe.
func (h *Harvester) flush(ctx context.Context, notices []model.Notice) error {
	if len(h.sinks) == 0 {
		return nil
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(h.sinks))
	for _, sk := range h.sinks {
		sk := sk
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sk.Write(ctx, notices); err != nil {
				errCh <- fmt.Errorf("write %s: %w", sk.Name(), err)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		return err
	}
	h.log.Debug("checkpoint written", "records", len(notices), "sinks", len(h.sinks))
	return nil
}

// sleep pauses for d unless the context is canceled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dedupKey identifies a record across overlapping queries: entity id first,
// then the self link, then a positional composite for records with neither.
func dedupKey(p model.Payload, q interpol.Query) string {
	if id := p.EntityID(); id != "" {
		return id
	}
	if u := p.Link("self"); u != "" {
		return u
	}
	return fmt.Sprintf("%s|%s|%d|%d|%s", q.Nationality, q.Sex, q.AgeMin, q.Page, p.Str("name"))
}

// fetchAllPages pages through every result for the query, stopping early
// when the server returns a short page (it silently truncates large sets).
func (h *Harvester) fetchAllPages(ctx context.Context, color string, q interpol.Query, total int) ([]model.Payload, error) {
	perPage := q.PerPage
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}

	var out []model.Payload
	for page := 1; page <= pages; page++ {
		q.Page = page
		sp, err := h.client.Search(ctx, color, q)
		if err != nil {
			return out, err
		}
		out = append(out, sp.Notices...)
		if len(sp.Notices) < perPage {
			break
		}
		if page < pages {
			if err := sleep(ctx, h.cfg.Harvest.PageDelay); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// applyQueryFallbacks fills columns the payload did not carry from the
// filters that found the record.
func applyQueryFallbacks(n *model.Notice, q interpol.Query) {
	if n.Nationalities == "" && q.Nationality != "" {
		n.Nationalities = q.Nationality
	}
	if n.Sex == "" && q.Sex != "" {
		n.Sex = q.Sex
	}
	if n.CountryOfBirth == "" && q.CountryOfBirth != "" {
		n.CountryOfBirth = q.CountryOfBirth
	}
}

// primaryNationality returns the first nationality of a record; harvests
// join multi-valued fields with ";" (red output used ", ").
func primaryNationality(n *model.Notice) string {
	s := n.Nationalities
	for _, sep := range []string{";", ","} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
