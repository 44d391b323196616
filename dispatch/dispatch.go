// Package dispatch is the pipeline's single consumer: it drains the shared
// queue in FIFO order and is the only goroutine that mutates the vessel
// store, so it alone gives the store its ordering guarantees. It plays the
// role the teacher's SourceMerger plays for NMEA sentences — accept, log,
// forward — generalized to decode→enrich→detect→publish.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/aisentinel/aisentinel/anomaly"
	"github.com/aisentinel/aisentinel/decode"
	"github.com/aisentinel/aisentinel/enrich"
	"github.com/aisentinel/aisentinel/hub"
	"github.com/aisentinel/aisentinel/metrics"
	"github.com/aisentinel/aisentinel/vessel"
)

// Dispatcher owns the vessel store and broadcast hub and is the sole
// consumer of the shared queue.
type Dispatcher struct {
	log   *slog.Logger
	store *vessel.Store
	hub   *hub.Hub
}

// New returns a Dispatcher wired to store and hub.
func New(log *slog.Logger, store *vessel.Store, h *hub.Hub) *Dispatcher {
	return &Dispatcher{log: log, store: store, hub: h}
}

// Run drains queue until it is closed or ctx is cancelled, processing each
// item in order. On cancellation it keeps draining whatever is already
// buffered before returning, so a shutdown doesn't lose in-flight work.
func (d *Dispatcher) Run(ctx context.Context, queue <-chan []byte) {
	for {
		select {
		case raw, ok := <-queue:
			if !ok {
				return
			}
			metrics.QueueDepth.Set(float64(len(queue)))
			d.process(raw)
		case <-ctx.Done():
			d.drain(queue)
			return
		}
	}
}

// drain processes whatever is already buffered on queue without blocking,
// giving a shutdown a chance to flush recently-queued work.
func (d *Dispatcher) drain(queue <-chan []byte) {
	for {
		select {
		case raw, ok := <-queue:
			if !ok {
				return
			}
			d.process(raw)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(raw []byte) {
	ev, err := decode.Decode(raw)
	if err != nil {
		metrics.FramesDropped.WithLabelValues(reasonFor(err)).Inc()
		d.log.Warn("dropped frame", "error", err)
		return
	}

	pt := enrich.Enrich(d.store, ev, time.Now())

	if ev.Position != nil {
		err := d.store.UpsertPosition(ev.MMSI, pt.Lat, pt.Lon, pt.SOG, pt.Heading,
			pt.RateOfTurn, pt.NavigationalStatus, pt.Flag, pt.MID)
		if err != nil {
			metrics.FramesDropped.WithLabelValues("invalid_coordinates").Inc()
			return
		}
	}

	d.store.AppendHistory(ev.MMSI, pt)
	metrics.FramesDecoded.Inc()

	if ev.Position != nil {
		history := d.store.History(ev.MMSI)
		if alert := anomaly.Detect(history); alert != nil {
			d.store.SetAlertOnLast(ev.MMSI, alert)
			pt.Alert = alert
			metrics.AlertsEmitted.WithLabelValues(string(alert.Type)).Inc()
			d.log.Warn("anomaly detected", "mmsi", alert.MMSI, "type", alert.Type, "message", alert.Message)
		}
	}

	d.hub.Publish(pt)
}

func reasonFor(err error) string {
	switch err {
	case decode.ErrUnknownKind:
		return "unknown_kind"
	case decode.ErrMissingIdentity:
		return "missing_identity"
	case decode.ErrInvalidCoordinates:
		return "invalid_coordinates"
	default:
		return "decode_error"
	}
}
