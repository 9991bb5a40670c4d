// Package metrics wires up the Prometheus collectors exposed by the cache
// server, modeled on go-server-3/internal/metrics/metrics.go.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps the Prometheus collectors used across the server.
type Registry struct {
	ActiveConnections prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	CacheEntries      prometheus.Gauge
	PurgePasses       prometheus.Counter
	PurgeSampled      prometheus.Counter
	PurgeRemoved      prometheus.Counter
}

// NewRegistry creates the Prometheus collectors for the cache server.
func NewRegistry() *Registry {
	return &Registry{
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "odin_cache_connections_active",
			Help: "Number of currently open client connections.",
		}),
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "odin_cache_commands_total",
			Help: "Total number of commands dispatched, by command name.",
		}, []string{"command"}),
		CacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "odin_cache_entries",
			Help: "Number of entries currently stored, expired or not.",
		}),
		PurgePasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "odin_cache_purge_passes_total",
			Help: "Total number of inner purge sampling passes performed.",
		}),
		PurgeSampled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "odin_cache_purge_sampled_total",
			Help: "Total number of keys sampled by the purge loop.",
		}),
		PurgeRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "odin_cache_purge_removed_total",
			Help: "Total number of keys evicted by the purge loop.",
		}),
	}
}

// Handler returns an HTTP handler exposing the Prometheus collectors.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
