package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RefreshTotal counts dashboard refreshes by outcome: "ok", "superseded" or an error kind.
var RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_dashboard_refresh_total",
	Help: "Total number of dashboard refreshes by outcome.",
}, []string{"outcome"})

// UpstreamRequestsTotal counts calls to the weather API by endpoint and result kind.
var UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_dashboard_upstream_requests_total",
	Help: "Total number of upstream weather API requests by endpoint and result.",
}, []string{"endpoint", "result"})

// SearchLookupsTotal counts debounced city lookups by outcome.
var SearchLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_dashboard_search_lookups_total",
	Help: "Total number of debounced city lookups by outcome.",
}, []string{"outcome"})
