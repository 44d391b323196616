package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// wireEnvelope mirrors the shape decode.Decode expects, built directly
// rather than through decode's types since injection handlers fabricate
// synthetic frames instead of parsing real ones.
type wireEnvelope struct {
	MessageType string                 `json:"MessageType"`
	Message     map[string]interface{} `json:"Message"`
	MetaData    map[string]interface{} `json:"MetaData"`
	Injected    bool                   `json:"injected"`
}

func positionMessage(mmsi int64, lat, lon, sog, cog, heading float64, navStatus int) map[string]interface{} {
	return map[string]interface{}{
		"Latitude":           lat,
		"Longitude":          lon,
		"Sog":                sog,
		"Cog":                cog,
		"TrueHeading":        heading,
		"MessageID":          1,
		"UserID":             mmsi,
		"NavigationalStatus": navStatus,
	}
}

func positionMeta(mmsi int64, shipName string, lat, lon float64, when time.Time) map[string]interface{} {
	return map[string]interface{}{
		"MMSI":      mmsi,
		"ShipName":  shipName,
		"latitude":  lat,
		"longitude": lon,
		"time_utc":  when.UTC().Format(time.RFC3339),
	}
}

func marshalEnvelope(env wireEnvelope) []byte {
	raw, _ := json.Marshal(env)
	return raw
}

type staticDataRequest struct {
	MMSI        int64   `json:"mmsi"`
	Name        string  `json:"name"`
	IMO         int64   `json:"imo"`
	Callsign    string  `json:"callsign"`
	ShipType    string  `json:"ship_type"`
	Destination string  `json:"destination"`
	ETA         string  `json:"eta"`
	Draught     float64 `json:"draught"`
	DimA        int     `json:"dim_a"`
	DimB        int     `json:"dim_b"`
	DimC        int     `json:"dim_c"`
	DimD        int     `json:"dim_d"`
}

func (s *Server) handleInjectStaticData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req staticDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body")
		return
	}
	now := time.Now()
	env := wireEnvelope{
		MessageType: "ShipStaticData",
		Message: map[string]interface{}{
			"ShipStaticData": map[string]interface{}{
				"IMO":         req.IMO,
				"Callsign":    req.Callsign,
				"ShipName":    req.Name,
				"ShipType":    req.ShipType,
				"Destination": req.Destination,
				"ETA":         req.ETA,
				"Draught":     req.Draught,
				"ToBow":       req.DimA,
				"ToStern":     req.DimB,
				"ToPort":      req.DimC,
				"ToStarboard": req.DimD,
			},
		},
		MetaData: map[string]interface{}{
			"MMSI":     req.MMSI,
			"ShipName": req.Name,
			"time_utc": now.UTC().Format(time.RFC3339),
		},
		Injected: true,
	}
	if s.enqueue(r.Context(), marshalEnvelope(env)) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "static data injected", "mmsi": req.MMSI, "name": req.Name})
	} else {
		writeError(w, http.StatusServiceUnavailable, "queue full")
	}
}

type darkPeriodRequest struct {
	MMSI       int64   `json:"mmsi"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	GapSeconds int     `json:"gap_seconds"`
}

func (s *Server) handleInjectDarkPeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req := darkPeriodRequest{GapSeconds: 7200}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body")
		return
	}
	now := time.Now()
	name := fmt.Sprintf("TestVessel%d", req.MMSI)
	env1 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat, req.Lon, 10, 45, 45, 0)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat, req.Lon, now),
		Injected:    true,
	}
	later := now.Add(time.Duration(req.GapSeconds) * time.Second)
	env2 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat+0.001, req.Lon+0.001, 10, 45, 45, 0)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat+0.001, req.Lon+0.001, later),
		Injected:    true,
	}
	s.enqueue(r.Context(), marshalEnvelope(env1))
	s.enqueue(r.Context(), marshalEnvelope(env2))
	writeJSON(w, http.StatusOK, map[string]string{"status": "dark period anomaly injected"})
}

type teleportRequest struct {
	MMSI         int64   `json:"mmsi"`
	Lat1         float64 `json:"lat1"`
	Lon1         float64 `json:"lon1"`
	Lat2         float64 `json:"lat2"`
	Lon2         float64 `json:"lon2"`
	SecondsApart int     `json:"seconds_apart"`
}

func (s *Server) handleInjectTeleport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req := teleportRequest{SecondsApart: 60}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body")
		return
	}
	now := time.Now()
	name := fmt.Sprintf("TestVessel%d", req.MMSI)
	env1 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat1, req.Lon1, 12, 90, 90, 0)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat1, req.Lon1, now),
		Injected:    true,
	}
	later := now.Add(time.Duration(req.SecondsApart) * time.Second)
	env2 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat2, req.Lon2, 12, 90, 90, 0)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat2, req.Lon2, later),
		Injected:    true,
	}
	s.enqueue(r.Context(), marshalEnvelope(env1))
	s.enqueue(r.Context(), marshalEnvelope(env2))
	writeJSON(w, http.StatusOK, map[string]string{"status": "teleport anomaly injected"})
}

type identitySwapRequest struct {
	MMSI int64   `json:"mmsi"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (s *Server) handleInjectIdentitySwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req identitySwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body")
		return
	}
	now := time.Now()
	name := fmt.Sprintf("TestVessel%d", req.MMSI)
	env1 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat, req.Lon, 10, 45, 45, 0)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat, req.Lon, now),
		Injected:    true,
	}
	later := now.Add(60 * time.Second)
	env2 := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat+0.001, req.Lon+0.001, 10, 45, 45, 0)},
		MetaData:    positionMeta(req.MMSI, name+"_SWAP", req.Lat+0.001, req.Lon+0.001, later),
		Injected:    true,
	}
	s.enqueue(r.Context(), marshalEnvelope(env1))
	s.enqueue(r.Context(), marshalEnvelope(env2))
	writeJSON(w, http.StatusOK, map[string]string{"status": "identity swap anomaly injected"})
}

type telemetryRequest struct {
	MMSI               int64    `json:"mmsi"`
	Lat                float64  `json:"lat"`
	Lon                float64  `json:"lon"`
	NavigationalStatus int      `json:"navigational_status"`
	SOG                *float64 `json:"sog,omitempty"`
	Heading            *float64 `json:"heading,omitempty"`
}

func (s *Server) handleInjectTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req telemetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed body")
		return
	}
	var sog, heading float64
	if req.SOG != nil {
		sog = *req.SOG
	}
	if req.Heading != nil {
		heading = *req.Heading
	}
	now := time.Now()
	name := fmt.Sprintf("TestVessel%d", req.MMSI)
	env := wireEnvelope{
		MessageType: "PositionReport",
		Message:     map[string]interface{}{"PositionReport": positionMessage(req.MMSI, req.Lat, req.Lon, sog, heading, heading, req.NavigationalStatus)},
		MetaData:    positionMeta(req.MMSI, name, req.Lat, req.Lon, now),
		Injected:    true,
	}
	if s.enqueue(r.Context(), marshalEnvelope(env)) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "telemetry injected"})
	} else {
		writeError(w, http.StatusServiceUnavailable, "queue full")
	}
}
