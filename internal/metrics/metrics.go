// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes alignment counters and latencies.
//
// Components depend on the Recorder interface; Nop discards everything and
// Prometheus records into a caller-supplied registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Store query outcomes.
const (
	QueryOK      = "ok"
	QueryError   = "error"
	QueryTimeout = "timeout"
	QueryCached  = "cached"
)

// Recorder receives alignment events.
type Recorder interface {
	StoreQuery(outcome string, d time.Duration)
	StageAttempt(stage types.StageID, accepted bool, d time.Duration)
	ItemAligned(status types.Status, stage types.StageID)
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) StoreQuery(string, time.Duration)                {}
func (Nop) StageAttempt(types.StageID, bool, time.Duration) {}
func (Nop) ItemAligned(types.Status, types.StageID)         {}

// Config names the metric family.
type Config struct {
	Namespace string
	Subsystem string
}

// Prometheus records alignment events as prometheus metrics.
type Prometheus struct {
	storeQueries  *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	stageAttempts *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	items         *prometheus.CounterVec
}

// NewPrometheus registers the alignment metrics with reg.
func NewPrometheus(reg prometheus.Registerer, cfg Config) *Prometheus {
	if cfg.Namespace == "" {
		cfg.Namespace = "nutrition_align"
	}
	f := promauto.With(reg)
	return &Prometheus{
		storeQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_queries_total",
				Help:      "Candidate store queries by outcome",
			},
			[]string{"outcome"},
		),
		storeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_query_duration_seconds",
				Help:      "Candidate store query latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"outcome"},
		),
		stageAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_attempts_total",
				Help:      "Cascade stage attempts by stage and acceptance",
			},
			[]string{"stage", "accepted"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Cascade stage latency",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"stage"},
		),
		items: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "items_total",
				Help:      "Aligned items by status and final stage",
			},
			[]string{"status", "stage"},
		),
	}
}

func (p *Prometheus) StoreQuery(outcome string, d time.Duration) {
	p.storeQueries.WithLabelValues(outcome).Inc()
	p.storeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (p *Prometheus) StageAttempt(stage types.StageID, accepted bool, d time.Duration) {
	acc := "false"
	if accepted {
		acc = "true"
	}
	p.stageAttempts.WithLabelValues(string(stage), acc).Inc()
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (p *Prometheus) ItemAligned(status types.Status, stage types.StageID) {
	p.items.WithLabelValues(string(status), string(stage)).Inc()
}
