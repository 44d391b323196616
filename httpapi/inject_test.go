package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aisentinel/aisentinel/vessel"
)

func TestHandleInjectTelemetryQueuesPositionReport(t *testing.T) {
	store := vessel.NewStore()
	s, queue := newTestServer(store)

	body, _ := json.Marshal(map[string]interface{}{
		"mmsi": 366123456, "lat": 37.5, "lon": -122.3, "navigational_status": 5,
	})
	req := httptest.NewRequest(http.MethodPost, "/inject/telemetry", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	select {
	case raw := <-queue:
		var env wireEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal queued frame: %v", err)
		}
		if env.MessageType != "PositionReport" {
			t.Errorf("MessageType = %q, want PositionReport", env.MessageType)
		}
		if !env.Injected {
			t.Error("Injected = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("telemetry injection never reached the queue")
	}
}

func TestHandleInjectDarkPeriodQueuesTwoFramesWithDefaultGap(t *testing.T) {
	store := vessel.NewStore()
	s, queue := newTestServer(store)

	body, _ := json.Marshal(map[string]interface{}{"mmsi": 1, "lat": 1.0, "lon": 2.0})
	req := httptest.NewRequest(http.MethodPost, "/inject/dark_period", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}

	var first, second wireEnvelope
	json.Unmarshal(<-queue, &first)
	json.Unmarshal(<-queue, &second)

	t1, _ := time.Parse(time.RFC3339, first.MetaData["time_utc"].(string))
	t2, _ := time.Parse(time.RFC3339, second.MetaData["time_utc"].(string))
	gap := t2.Sub(t1)
	if gap < 7199*time.Second || gap > 7201*time.Second {
		t.Errorf("gap between frames = %s, want ~7200s", gap)
	}
}

func TestHandleInjectIdentitySwapRenamesSecondFrame(t *testing.T) {
	store := vessel.NewStore()
	s, queue := newTestServer(store)

	body, _ := json.Marshal(map[string]interface{}{"mmsi": 42, "lat": 1.0, "lon": 2.0})
	req := httptest.NewRequest(http.MethodPost, "/inject/identity_swap", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	<-queue
	var second wireEnvelope
	json.Unmarshal(<-queue, &second)
	name, _ := second.MetaData["ShipName"].(string)
	if name != "TestVessel42_SWAP" {
		t.Errorf("second frame ShipName = %q, want TestVessel42_SWAP", name)
	}
}
