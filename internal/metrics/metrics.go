package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebsiteVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_website_verdicts_total",
			Help: "Website classifications by resulting status",
		},
		[]string{"status"},
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadscout_classify_duration_seconds",
			Help:    "Time spent classifying a single website",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	FragmentsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_fragments_dropped_total",
			Help: "Fragments removed by each pipeline stage",
		},
		[]string{"stage"},
	)

	SourceFragments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_fragments_total",
			Help: "Valid fragments returned by each source",
		},
		[]string{"source"},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_failures_total",
			Help: "Sources that failed and were skipped during a run",
		},
		[]string{"source"},
	)

	LeadsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_leads_total",
			Help: "Scored leads produced by hotness tier",
		},
		[]string{"hotness"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_runs_total",
			Help: "Pipeline runs by final status",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadscout_run_duration_seconds",
			Help:    "Duration of a full pipeline run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	CRMPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_crm_pages_total",
			Help: "Notion pages created, by outcome",
		},
		[]string{"outcome"},
	)
)
