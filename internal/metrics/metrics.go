package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TextfileName is the file written for the node_exporter textfile collector.
const TextfileName = "unigen.prom"

// Recorder collects per-run generation and sink metrics.
type Recorder struct {
	registry     *prometheus.Registry
	tableRows    *prometheus.GaugeVec
	tableSeconds *prometheus.GaugeVec
	sinkSeconds  *prometheus.HistogramVec
	sinkFailures *prometheus.CounterVec
	seed         prometheus.Gauge
	lastRun      prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	tableRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "unigen_table_rows",
		Help: "Rows generated per table in the last run",
	}, []string{"table"})

	tableSeconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "unigen_table_generation_seconds",
		Help: "Time spent generating each table in the last run",
	}, []string{"table"})

	sinkSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unigen_sink_write_seconds",
		Help:    "Time spent writing all tables to a sink",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})

	sinkFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unigen_sink_failures_total",
		Help: "Sink writes that failed",
	}, []string{"sink"})

	seed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unigen_seed",
		Help: "Seed of the last run",
	})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unigen_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})

	registry.MustRegister(tableRows, tableSeconds, sinkSeconds, sinkFailures, seed, lastRun)

	return &Recorder{
		registry:     registry,
		tableRows:    tableRows,
		tableSeconds: tableSeconds,
		sinkSeconds:  sinkSeconds,
		sinkFailures: sinkFailures,
		seed:         seed,
		lastRun:      lastRun,
	}
}

func (r *Recorder) ObserveTable(table string, rows int, took time.Duration) {
	r.tableRows.WithLabelValues(table).Set(float64(rows))
	r.tableSeconds.WithLabelValues(table).Set(took.Seconds())
}

// ObserveSink records one sink write. Failed writes only bump the failure
// counter.
func (r *Recorder) ObserveSink(sink string, took time.Duration, err error) {
	if err != nil {
		r.sinkFailures.WithLabelValues(sink).Inc()
		return
	}
	r.sinkSeconds.WithLabelValues(sink).Observe(took.Seconds())
}

func (r *Recorder) Finish(seed int64, at time.Time) {
	r.seed.Set(float64(seed))
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text exposition format to
// dir/unigen.prom.
func (r *Recorder) WriteTextfile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}
	path := filepath.Join(dir, TextfileName)
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return "", fmt.Errorf("failed to write metrics: %w", err)
	}
	return path, nil
}
