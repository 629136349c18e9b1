package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_reports_received_total",
			Help: "Total number of controller status reports accepted",
		},
		[]string{"controller"},
	)

	Aggregations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_aggregations_total",
			Help: "Total number of status aggregations by resulting phase",
		},
		[]string{"phase"},
	)

	UpdateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spec_update_conflicts_total",
			Help: "Total number of spec updates rejected on generation mismatch",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of cluster events published",
		},
		[]string{"type"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of events dropped on full subscriber buffers",
		},
	)

	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_sweeps_total",
			Help: "Total number of reconcile sweeps started",
		},
	)

	SweptClusters = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_clusters_swept_total",
			Help: "Total number of lagging clusters re-aggregated by the sweeper",
		},
	)
)
