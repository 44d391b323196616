// Package ingest connects to the upstream AIS WebSocket stream, subscribes
// to it, and pushes every inbound frame onto a shared queue for the
// dispatcher to consume. Reconnection uses the teacher's
// cenkalti/backoff-based retry shape, but with this pipeline's own
// constants: a 5s initial interval doubling up to a 60s cap, and no
// give-up — unlike the teacher's multi-source listeners, there is exactly
// one upstream and losing it is not optional.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"github.com/aisentinel/aisentinel/config"
)

const (
	initialInterval = 5 * time.Second
	maxInterval      = 60 * time.Second

	// subscribeWithin is how long after connecting the subscription frame
	// must be sent.
	subscribeWithin = 3 * time.Second
)

// subscription is the frame sent to the upstream immediately after connect.
type subscription struct {
	APIKey             string               `json:"APIKey"`
	BoundingBoxes      [1]config.BoundingBox `json:"BoundingBoxes"`
	FilterMessageTypes []string             `json:"FilterMessageTypes"`
}

func newBackOff() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = initialInterval
	eb.MaxInterval = maxInterval
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0 // never give up
	eb.Reset()
	return eb
}

// Loop connects to the upstream stream and pushes every frame it reads onto
// queue, reconnecting with backoff until ctx is cancelled. filterTypes is
// the set of AIS message kinds to subscribe to.
func Loop(ctx context.Context, log *slog.Logger, cfg config.Config, filterTypes []string, queue chan<- []byte) {
	b := newBackOff()
	for {
		if ctx.Err() != nil {
			return
		}
		err := runOnce(ctx, log, cfg, filterTypes, queue, b)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			wait := b.NextBackOff()
			log.Warn("upstream stream disconnected, reconnecting", "error", err, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, cfg config.Config, filterTypes []string, queue chan<- []byte, b *backoff.ExponentialBackOff) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, cfg.StreamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := subscription{
		APIKey:             cfg.StreamAPIKey,
		BoundingBoxes:      [1]config.BoundingBox{cfg.BoundingBox},
		FilterMessageTypes: filterTypes,
	}
	conn.SetWriteDeadline(time.Now().Add(subscribeWithin))
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	b.Reset()
	log.Info("subscribed to upstream stream", "url", cfg.StreamURL)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if !json.Valid(raw) {
			log.Warn("dropped non-JSON frame from upstream")
			continue
		}
		select {
		case queue <- raw:
		case <-ctx.Done():
			return nil
		}
	}
}
