// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the seeder's Prometheus collectors. A CLI run is too short to
// be scraped, so the registry is pushed to a Pushgateway at the end.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsFetched *prometheus.CounterVec
	ObjectsSaved   *prometheus.CounterVec
	Runs           *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RecordsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_records_fetched_total",
				Help: "Total number of user records fetched from the upstream API",
			},
			[]string{"class_name"},
		),
		ObjectsSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_objects_saved_total",
				Help: "Total number of objects persisted by batch save",
			},
			[]string{"class_name", "backend"},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_runs_total",
				Help: "Total number of seeding runs by outcome",
			},
			[]string{"status", "error_code"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seeder_run_duration_seconds",
				Help:    "Duration of a seeding run in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"backend"},
		),
	}
}

// Push sends the registry to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushgateway push failed: %w", err)
	}
	return nil
}
