package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DrawsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_draws_generated_total",
		Help: "Draws created by the daily generator",
	})

	DrawsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_draws_closed_total",
		Help: "Draws transitioned SCHEDULED -> CLOSED",
	})

	DrawsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_draws_executed_total",
		Help: "Draws transitioned CLOSED -> DRAWN",
	})

	DrawsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_draws_published_total",
		Help: "Draws transitioned DRAWN -> PUBLISHED",
	})

	ChannelSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lottery_channel_sends_total",
		Help: "Per-channel publication outcomes",
	}, []string{"channel", "outcome"}) // outcome: sent|failed|skipped

	TripletasSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lottery_tripletas_settled_total",
		Help: "Tripleta wagers reaching a terminal state",
	}, []string{"outcome"}) // outcome: won|expired
)

type HealthFunc func(ctx context.Context) error

// StartMetricsServer runs a lightweight HTTP server for /metrics and /healthz
// on its own port, in a goroutine.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
