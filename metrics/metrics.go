// Package metrics exposes the pipeline's operational counters and gauges
// on the standard Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aisentinel_frames_decoded_total",
		Help: "Number of upstream/injected frames successfully decoded.",
	})

	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisentinel_frames_dropped_total",
		Help: "Number of frames dropped during decode, by reason.",
	}, []string{"reason"})

	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aisentinel_alerts_emitted_total",
		Help: "Number of anomaly alerts emitted, by type.",
	}, []string{"type"})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aisentinel_queue_depth",
		Help: "Current number of pending items in the dispatcher's input queue.",
	})

	ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aisentinel_active_subscribers",
		Help: "Current number of attached broadcast-hub subscribers.",
	})
)
