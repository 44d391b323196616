// Package httpapi exposes the query, injection, metrics, and live-stream
// HTTP surface. Its helper style — small writeJSON/writeError functions and
// a method check at the top of each handler — follows the teacher's
// server/http.go, adapted to JSON responses since this pipeline has no
// static site to serve.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aisentinel/aisentinel/geo"
	"github.com/aisentinel/aisentinel/hub"
	"github.com/aisentinel/aisentinel/vessel"
)

// Server holds everything the HTTP handlers need.
type Server struct {
	log   *slog.Logger
	store *vessel.Store
	hub   *hub.Hub
	queue chan<- []byte
}

// New returns a Server wired to store, hub, and the shared ingestion queue
// that injection endpoints feed into.
func New(log *slog.Logger, store *vessel.Store, h *hub.Hub, queue chan<- []byte) *Server {
	return &Server{log: log, store: store, hub: h, queue: queue}
}

// Routes returns the configured handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/history/", s.handleHistory)
	mux.HandleFunc("/spatial_query", s.handleSpatialQuery)
	mux.HandleFunc("/reset_data", s.handleReset)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/inject/static_data", s.handleInjectStaticData)
	mux.HandleFunc("/inject/dark_period", s.handleInjectDarkPeriod)
	mux.HandleFunc("/inject/teleport", s.handleInjectTeleport)
	mux.HandleFunc("/inject/identity_swap", s.handleInjectIdentitySwap)
	mux.HandleFunc("/inject/telemetry", s.handleInjectTelemetry)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, desc string) {
	writeJSON(w, status, map[string]string{"error": desc})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	param := strings.TrimPrefix(r.URL.Path, "/history/")
	mmsi, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid MMSI")
		return
	}
	writeJSON(w, http.StatusOK, s.store.History(uint32(mmsi)))
}

func (s *Server) handleSpatialQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	q := r.URL.Query()
	minLat, err1 := strconv.ParseFloat(q.Get("min_lat"), 64)
	maxLat, err2 := strconv.ParseFloat(q.Get("max_lat"), 64)
	minLon, err3 := strconv.ParseFloat(q.Get("min_lon"), 64)
	maxLon, err4 := strconv.ParseFloat(q.Get("max_lon"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		writeError(w, http.StatusBadRequest, "Malformed coordinates")
		return
	}
	if !geo.LegalCoord(minLat, minLon) || !geo.LegalCoord(maxLat, maxLon) {
		writeError(w, http.StatusBadRequest, "Malformed coordinates")
		return
	}

	// A box that crosses the date line splits into an east and a west
	// rectangle; query each and merge, since the grid index is defined in
	// plain longitude, not wrapped degrees.
	rects := geo.SplitViewRect(minLat, minLon, maxLat, maxLon)
	if rects == nil {
		writeError(w, http.StatusBadRequest, "Malformed coordinates")
		return
	}
	seen := make(map[uint32]vessel.Vessel)
	for _, rect := range rects {
		min, max := rect.Min(), rect.Max()
		for _, v := range s.store.SpatialQuery(min.Lat, max.Lat, min.Long, max.Long) {
			seen[v.MMSI] = v
		}
	}
	out := make([]vessel.Vessel, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.store.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset complete"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type vesselUpdateFrame struct {
	Type         string              `json:"type"`
	HistoryPoint vessel.HistoryPoint `json:"history_point"`
}

// handleWebSocket upgrades the connection, replays every known history
// point across all vessels, then forwards live updates until the client
// disconnects or falls behind and is evicted by the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	for _, mmsi := range s.store.AllMMSIs() {
		for _, pt := range s.store.History(mmsi) {
			if err := conn.WriteJSON(vesselUpdateFrame{Type: "vessel_update", HistoryPoint: pt}); err != nil {
				return
			}
		}
	}

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case pt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(vesselUpdateFrame{Type: "vessel_update", HistoryPoint: pt}); err != nil {
				return
			}
		case <-disconnected:
			return
		}
	}
}

// enqueue pushes raw onto the shared queue, giving up after a short
// deadline so a stalled dispatcher can't hang an HTTP request forever.
func (s *Server) enqueue(ctx context.Context, raw []byte) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	select {
	case s.queue <- raw:
		return true
	case <-ctx.Done():
		return false
	}
}
