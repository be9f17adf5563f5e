package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Requests counts API requests by endpoint kind and outcome.
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "requests_total",
		Help:      "Number of API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// PagesFetched counts successfully fetched search pages per color.
	PagesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "pages_total",
		Help:      "Number of search result pages fetched",
	}, []string{"color"})

	// Notices counts flattened records accepted into the output per color.
	Notices = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "notices_total",
		Help:      "Number of notices flattened and accepted",
	}, []string{"color"})

	// Duplicates counts records dropped by the dedup store.
	Duplicates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "duplicates_total",
		Help:      "Number of notices dropped as duplicates",
	}, []string{"color"})

	// SegmentsSplit counts demographic segments split because their probed
	// total exceeded the server-side cap.
	SegmentsSplit = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "segments_split_total",
		Help:      "Number of search segments split to stay under the API result cap",
	})

	// Retries counts retried HTTP requests.
	Retries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "harvester",
		Name:      "retries_total",
		Help:      "Number of retried API requests",
	})
)

func init() {
	prometheus.MustRegister(Requests, PagesFetched, Notices, Duplicates, SegmentsSplit, Retries)
}

// Serve exposes /metrics and /healthz on addr until ctx is canceled.
// Intended for the long-running harvests; a no-op when addr is empty.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shCtx)
	}()
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
