// Package metrics exposes Prometheus counters for region list activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geofencer",
		Subsystem: "regions",
		Name:      "mutations_total",
		Help:      "Region list mutations by operation",
	}, []string{"op"})

	Regions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geofencer",
		Subsystem: "regions",
		Name:      "count",
		Help:      "Regions currently held in the list",
	})

	Saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geofencer",
		Subsystem: "store",
		Name:      "saves_total",
		Help:      "Full-list saves handed to the store, by result",
	}, []string{"result"})

	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geofencer",
		Subsystem: "store",
		Name:      "decode_failures_total",
		Help:      "Persisted entries skipped because they could not be decoded",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geofencer",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Change events published to the message bus, by result",
	}, []string{"result"})
)

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps an error to a "ok"/"error" label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
