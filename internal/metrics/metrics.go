// Package metrics exposes Prometheus counters for the overlay engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RingBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "rings",
		Name:      "builds_total",
		Help:      "Ring sets regenerated, by viewport",
	}, []string{"viewport"})

	RingBuildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "rings",
		Name:      "build_errors_total",
		Help:      "Ring regenerations skipped because of invalid geometry",
	}, []string{"viewport"})

	ZoomMirrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "zoom",
		Name:      "mirrors_total",
		Help:      "Zoom commands mirrored into the sibling viewport",
	})

	ZoomSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "zoom",
		Name:      "suppressed_total",
		Help:      "Zoom-settled signals ignored during the guard window",
	})

	HighlightChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "highlight",
		Name:      "changes_total",
		Help:      "Changes of the hovered ring radius",
	})

	ViewportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "twinmap",
		Subsystem: "viewport",
		Name:      "transitions_total",
		Help:      "Viewport state transitions, by viewport and kind",
	}, []string{"viewport", "kind"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
