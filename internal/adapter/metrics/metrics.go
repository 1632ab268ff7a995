package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vcposter"

// Set bundles every metric group the process exports on one registry.
type Set struct {
	Registry *prometheus.Registry
	Poster   *PosterMetrics
	Forum    *ForumMetrics
	HTTP     *HTTPMetrics
}

// NewSet creates a registry and registers all metric groups on it.
func NewSet() *Set {
	reg := NewRegistry()
	return &Set{
		Registry: reg,
		Poster:   NewPosterMetrics(reg),
		Forum:    NewForumMetrics(reg),
		HTTP:     NewHTTPMetrics(reg),
	}
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the metrics gathered from reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
