// Package metrics registers the Prometheus collectors for directory fetches
// and block renders.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DirectoryFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "centres_directory_fetch_total",
		Help: "Upstream directory fetches by outcome",
	}, []string{"outcome"})
	DirectoryFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "centres_directory_fetch_duration_ms",
		Help:    "Upstream directory fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
	})
	RenderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "centres_render_total",
		Help: "Publish-time block renders by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(DirectoryFetchTotal)
	prometheus.MustRegister(DirectoryFetchDurationMs)
	prometheus.MustRegister(RenderTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
