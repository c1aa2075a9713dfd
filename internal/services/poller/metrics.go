package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aquanode_poll_ticks_total",
		Help: "Completed poll scheduler ticks.",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aquanode_poll_tick_duration_seconds",
		Help:    "Wall time of one tick's device fan-out.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
	deviceResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aquanode_poll_devices_total",
		Help: "Per-device poll outcomes.",
	}, []string{"result"})
	transitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aquanode_state_transitions_total",
		Help: "Node lifecycle transitions emitted by the reconciler.",
	})
	persistErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aquanode_poll_persist_errors_total",
		Help: "Historical record or state writes that failed on both stores.",
	})
)
