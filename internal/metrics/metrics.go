package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "attention", Name: "events_ingested_total", Help: "Raw events accepted by ingestion, by source."},
		[]string{"source"},
	)
	Outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "attention", Name: "outcomes_total", Help: "Pipeline outcomes by variant."},
		[]string{"outcome"},
	)
	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "attention", Name: "fallback_total", Help: "Deterministic fallback activations by pipeline stage."},
		[]string{"stage"},
	)
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "attention", Name: "dispatches_total", Help: "Channel delivery attempts by channel and status."},
		[]string{"channel", "status"},
	)
	ReasonerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "attention", Name: "reasoner_latency_seconds", Help: "Reasoning service call latency by method."},
		[]string{"method"},
	)
)

func init() {
	_ = prometheus.Register(EventsIngested)
	_ = prometheus.Register(Outcomes)
	_ = prometheus.Register(Fallbacks)
	_ = prometheus.Register(Dispatches)
	_ = prometheus.Register(ReasonerLatency)
}
