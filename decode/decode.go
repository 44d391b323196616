// Package decode turns one upstream JSON envelope into a typed Event ready
// for enrichment, mirroring the message-kind dispatch of the AIS stream
// this service consumes.
package decode

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Kind classifies the message types the pipeline cares about. Every other
// recognized-but-uninspected AIS message type is recorded as KindOther so
// it still reaches history, matching the upstream "raw_other" catch-all.
type Kind string

const (
	KindPositionReport                 Kind = "PositionReport"
	KindStandardClassBPositionReport   Kind = "StandardClassBPositionReport"
	KindExtendedClassBPositionReport   Kind = "ExtendedClassBPositionReport"
	KindStaticDataReport               Kind = "StaticDataReport"
	KindShipStaticData                 Kind = "ShipStaticData"
	KindAidsToNavigationReport         Kind = "AidsToNavigationReport"
	KindBaseStationReport              Kind = "BaseStationReport"
	KindSafetyBroadcastMessage         Kind = "SafetyBroadcastMessage"
	KindAddressedSafetyMessage         Kind = "AddressedSafetyMessage"
	KindDataLinkManagementMessage      Kind = "DataLinkManagementMessage"
	KindOther                          Kind = "Other"
)

// FilterMessageTypes is the full set of AIS message kinds subscribed to on
// the upstream stream, in the order the subscription frame lists them.
var FilterMessageTypes = []string{
	"PositionReport", "UnknownMessage", "AddressedSafetyMessage", "AddressedBinaryMessage",
	"AidsToNavigationReport", "AssignedModeCommand", "BaseStationReport", "BinaryAcknowledge",
	"BinaryBroadcastMessage", "ChannelManagement", "CoordinatedUTCInquiry",
	"DataLinkManagementMessage", "DataLinkManagementMessageData", "ExtendedClassBPositionReport",
	"GroupAssignmentCommand", "GnssBroadcastBinaryMessage", "Interrogation",
	"LongRangeAisBroadcastMessage", "MultiSlotBinaryMessage", "SafetyBroadcastMessage",
	"ShipStaticData", "SingleSlotBinaryMessage", "StandardClassBPositionReport",
	"StandardSearchAndRescueAircraftReport", "StaticDataReport",
}

var (
	ErrUnknownKind        = errors.New("decode: envelope has no MessageType")
	ErrMissingIdentity     = errors.New("decode: could not resolve an MMSI")
	ErrInvalidCoordinates  = errors.New("decode: latitude or longitude out of range")
)

// MetaData is the envelope's MetaData block.
type MetaData struct {
	MMSI       *uint32 `json:"MMSI"`
	MMSIString string  `json:"MMSI_String"`
	ShipName   string  `json:"ShipName"`
	TimeUTC    string  `json:"time_utc"`
}

// Envelope is one raw upstream (or injected) message.
type Envelope struct {
	MessageType string                     `json:"MessageType"`
	Message     map[string]json.RawMessage `json:"Message"`
	MetaData    MetaData                   `json:"MetaData"`
	Injected    bool                       `json:"injected"`
}

// PositionFields carries the dynamic fields of a position-report payload.
type PositionFields struct {
	Lat                float64
	Lon                float64
	SOG                *float64
	TrueHeading        *float64
	COG                *float64
	NavigationalStatus *int
	RateOfTurn         *float64
}

// StaticPayload carries the static-data fields of a ShipStaticData /
// StaticDataReport payload.
type StaticPayload struct {
	IMO          *int64
	Callsign     string
	ShipName     string
	ShipType     *int
	Destination  string
	ETA          string
	Draught      *float64
	DimBow       *int
	DimStern     *int
	DimPort      *int
	DimStarboard *int
}

// Event is the decoder's output: a classified, partially-typed message
// ready for enrichment.
type Event struct {
	Kind        Kind
	MMSI        uint32
	MetaData    MetaData
	Position    *PositionFields // set for position-report kinds
	Static      *StaticPayload  // set for static-data kinds
	Raw         json.RawMessage // the message's own sub-object, for history
	FullMessage json.RawMessage // the whole envelope, verbatim
	Injected    bool
}

func kindOf(messageType string) Kind {
	switch Kind(messageType) {
	case KindPositionReport, KindStandardClassBPositionReport, KindExtendedClassBPositionReport,
		KindStaticDataReport, KindShipStaticData, KindAidsToNavigationReport, KindBaseStationReport,
		KindSafetyBroadcastMessage, KindAddressedSafetyMessage, KindDataLinkManagementMessage:
		return Kind(messageType)
	default:
		return KindOther
	}
}

// Decode unmarshals raw (one JSON-encoded envelope), classifies it, and
// extracts the fields the rest of the pipeline needs.
func Decode(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	if env.MessageType == "" {
		return Event{}, ErrUnknownKind
	}
	kind := kindOf(env.MessageType)

	sub, hasSub := env.Message[env.MessageType]
	var subMap map[string]json.RawMessage
	if hasSub {
		_ = json.Unmarshal(sub, &subMap)
	}

	mmsi, err := resolveMMSI(env, subMap)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		Kind:        kind,
		MMSI:        mmsi,
		MetaData:    env.MetaData,
		Raw:         sub,
		FullMessage: raw,
		Injected:    env.Injected,
	}

	switch kind {
	case KindPositionReport, KindStandardClassBPositionReport, KindExtendedClassBPositionReport:
		pos, err := parsePosition(subMap)
		if err != nil {
			return Event{}, err
		}
		ev.Position = &pos
	case KindStaticDataReport, KindShipStaticData:
		ev.Static = parseStatic(subMap)
	}
	return ev, nil
}

func resolveMMSI(env Envelope, subMap map[string]json.RawMessage) (uint32, error) {
	if env.MetaData.MMSI != nil {
		return *env.MetaData.MMSI, nil
	}
	if subMap != nil {
		if raw, ok := subMap["UserID"]; ok {
			var id uint32
			if err := json.Unmarshal(raw, &id); err == nil && id != 0 {
				return id, nil
			}
		}
	}
	if env.MetaData.MMSIString != "" {
		id, err := strconv.ParseUint(env.MetaData.MMSIString, 10, 32)
		if err == nil {
			return uint32(id), nil
		}
	}
	return 0, ErrMissingIdentity
}

func numField(m map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func parsePosition(m map[string]json.RawMessage) (PositionFields, error) {
	lat, okLat := numField(m, "Latitude")
	lon, okLon := numField(m, "Longitude")
	if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return PositionFields{}, ErrInvalidCoordinates
	}
	pf := PositionFields{Lat: lat, Lon: lon}

	if sog, ok := numField(m, "Sog"); ok && sog >= 0 && sog < 102.2 {
		pf.SOG = &sog
	} else if sog, ok := numField(m, "SOG"); ok && sog >= 0 && sog < 102.2 {
		pf.SOG = &sog
	}
	if h, ok := numField(m, "TrueHeading"); ok {
		pf.TrueHeading = &h
	}
	if c, ok := numField(m, "Cog"); ok {
		pf.COG = &c
	}
	if ns, ok := numField(m, "NavigationalStatus"); ok {
		n := int(ns)
		pf.NavigationalStatus = &n
	}
	if rot, ok := numField(m, "RateOfTurn"); ok {
		pf.RateOfTurn = &rot
	}
	return pf, nil
}

func strField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func parseStatic(m map[string]json.RawMessage) *StaticPayload {
	sp := &StaticPayload{
		Callsign:    strField(m, "Callsign"),
		ShipName:    strField(m, "ShipName"),
		Destination: strField(m, "Destination"),
		ETA:         strField(m, "ETA"),
	}
	if imo, ok := numField(m, "IMO"); ok {
		v := int64(imo)
		sp.IMO = &v
	}
	if st, ok := numField(m, "ShipType"); ok {
		v := int(st)
		sp.ShipType = &v
	}
	if d, ok := numField(m, "Draught"); ok {
		sp.Draught = &d
	}
	if v, ok := numField(m, "ToBow"); ok {
		n := int(v)
		sp.DimBow = &n
	}
	if v, ok := numField(m, "ToStern"); ok {
		n := int(v)
		sp.DimStern = &n
	}
	if v, ok := numField(m, "ToPort"); ok {
		n := int(v)
		sp.DimPort = &n
	}
	if v, ok := numField(m, "ToStarboard"); ok {
		n := int(v)
		sp.DimStarboard = &n
	}
	return sp
}
