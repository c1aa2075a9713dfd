package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "aquanode_store_fallbacks_total",
	Help: "Queries answered by the non-preferred store after the preferred one failed.",
}, []string{"to"})
