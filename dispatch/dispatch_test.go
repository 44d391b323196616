package dispatch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aisentinel/aisentinel/hub"
	"github.com/aisentinel/aisentinel/vessel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessAppendsHistoryAndPublishes(t *testing.T) {
	store := vessel.NewStore()
	h := hub.New(discardLogger())
	d := New(discardLogger(), store, h)

	_, ch := h.Subscribe()

	raw := []byte(`{
		"MessageType": "PositionReport",
		"Message": {"PositionReport": {"Latitude": 37.5, "Longitude": -122.3, "Sog": 12.3, "TrueHeading": 90, "UserID": 366123456}},
		"MetaData": {"MMSI": 366123456, "ShipName": "TESTSHIP"}
	}`)

	d.process(raw)

	select {
	case pt := <-ch:
		if pt.MMSI != 366123456 {
			t.Errorf("published MMSI = %d, want 366123456", pt.MMSI)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher never published the enriched point")
	}

	if !store.Known(366123456) {
		t.Error("store does not know about the vessel after processing")
	}
	history := store.History(366123456)
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}

func TestProcessDropsUndecodableFrame(t *testing.T) {
	store := vessel.NewStore()
	h := hub.New(discardLogger())
	d := New(discardLogger(), store, h)

	d.process([]byte(`not json`))

	if store.Known(1) {
		t.Error("store should not have recorded anything from a malformed frame")
	}
}

func TestRunDrainsQueueOnShutdown(t *testing.T) {
	store := vessel.NewStore()
	h := hub.New(discardLogger())
	d := New(discardLogger(), store, h)

	queue := make(chan []byte, 2)
	ctx, cancel := context.WithCancel(context.Background())

	raw := []byte(`{
		"MessageType": "PositionReport",
		"Message": {"PositionReport": {"Latitude": 1, "Longitude": 1, "UserID": 1}},
		"MetaData": {}
	}`)
	queue <- raw
	cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx, queue)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly after cancellation")
	}

	if !store.Known(1) {
		t.Error("Run should have drained the already-buffered frame before returning")
	}
}
