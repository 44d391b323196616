package ingest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aisentinel/aisentinel/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoopSendsSubscriptionAndQueuesFrames(t *testing.T) {
	var upgrader websocket.Upgrader
	received := make(chan subscription, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var sub subscription
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("reading subscription frame: %v", err)
			return
		}
		received <- sub

		conn.WriteMessage(websocket.TextMessage, []byte(`{"MessageType":"PositionReport"}`))
	}))
	defer srv.Close()

	cfg := config.Config{
		StreamAPIKey: "test-key",
		StreamURL:    "ws" + strings.TrimPrefix(srv.URL, "http"),
		BoundingBox:  config.DefaultBoundingBox,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := make(chan []byte, 4)
	go Loop(ctx, discardLogger(), cfg, []string{"PositionReport"}, queue)

	select {
	case sub := <-received:
		if sub.APIKey != "test-key" {
			t.Errorf("APIKey = %q, want test-key", sub.APIKey)
		}
		if len(sub.FilterMessageTypes) != 1 || sub.FilterMessageTypes[0] != "PositionReport" {
			t.Errorf("FilterMessageTypes = %v, want [PositionReport]", sub.FilterMessageTypes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received a subscription frame")
	}

	select {
	case raw := <-queue:
		var env struct{ MessageType string }
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal queued frame: %v", err)
		}
		if env.MessageType != "PositionReport" {
			t.Errorf("MessageType = %q, want PositionReport", env.MessageType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame never reached the queue")
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var sub subscription
		conn.ReadJSON(&sub)
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := config.Config{
		StreamAPIKey: "test-key",
		StreamURL:    "ws" + strings.TrimPrefix(srv.URL, "http"),
		BoundingBox:  config.DefaultBoundingBox,
	}

	ctx, cancel := context.WithCancel(context.Background())
	queue := make(chan []byte, 1)
	done := make(chan struct{})
	go func() {
		Loop(ctx, discardLogger(), cfg, []string{"PositionReport"}, queue)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not return after context cancellation")
	}
}
