// Package enrich turns a decoded event plus a vessel's current state into
// a fully enriched vessel.HistoryPoint: resolved heading/SOG, time/speed/
// heading deltas, a recomputed normal profile, and overlaid static fields.
package enrich

import (
	"math"
	"time"

	"github.com/aisentinel/aisentinel/decode"
	"github.com/aisentinel/aisentinel/reference"
	"github.com/aisentinel/aisentinel/vessel"
)

// ProfileWindow is how many of the most recent history points the normal
// profile is recomputed over.
const ProfileWindow = 100

// Enrich builds the HistoryPoint for ev against store's current knowledge
// of the vessel. For a static-data event it merges the static fields into
// the store's latest vessel state; it never appends to history or touches
// position state, which the dispatcher commits from the result.
func Enrich(store *vessel.Store, ev decode.Event, now time.Time) vessel.HistoryPoint {
	pt := vessel.HistoryPoint{
		MMSI:        ev.MMSI,
		Timestamp:   now,
		MessageType: string(ev.Kind),
		Injected:    ev.Injected,
		FullMessage: ev.FullMessage,
		Flag:        reference.Country(ev.MMSI),
		MID:         reference.MID(ev.MMSI),
	}
	if ev.MetaData.TimeUTC != "" {
		if t, err := time.Parse(time.RFC3339, ev.MetaData.TimeUTC); err == nil {
			pt.Timestamp = t
		}
	}
	pt.ShipName = ev.MetaData.ShipName

	history := store.History(ev.MMSI)

	if ev.Position != nil {
		pt.Lat = ev.Position.Lat
		pt.Lon = ev.Position.Lon
		pt.SOG = ev.Position.SOG
		pt.NavigationalStatus = ev.Position.NavigationalStatus
		pt.RateOfTurn = ev.Position.RateOfTurn
		pt.Heading = resolveHeading(ev.Position.TrueHeading, ev.Position.COG)

		pt.NormalProfile = computeProfile(history)

		if len(history) > 0 {
			prev := history[len(history)-1]
			if diff := pt.Timestamp.Sub(prev.Timestamp).Seconds(); !math.IsNaN(diff) {
				pt.TimeDiff = &diff
			}
			if prev.SOG != nil && pt.SOG != nil {
				d := *pt.SOG - *prev.SOG
				pt.DeltaSpeed = &d
			}
			if prev.Heading != nil && pt.Heading != nil {
				d := wrapDelta(*pt.Heading - *prev.Heading)
				pt.DeltaHeading = &d
			}
		}
	}

	if ev.Static != nil {
		fields := vessel.StaticFields{
			IMO:         ev.Static.IMO,
			Callsign:    ev.Static.Callsign,
			ShipName:    ev.Static.ShipName,
			ShipTypeCode: ev.Static.ShipType,
			Destination: ev.Static.Destination,
			ETA:         ev.Static.ETA,
			Draught:     ev.Static.Draught,
			DimBow:      ev.Static.DimBow,
			DimStern:    ev.Static.DimStern,
			DimPort:     ev.Static.DimPort,
			DimStarboard: ev.Static.DimStarboard,
		}
		if fields.ShipTypeCode != nil {
			fields.ShipTypeMeaning = reference.ShipTypeText(*fields.ShipTypeCode)
		}
		store.UpdateStatic(ev.MMSI, fields)
	}

	v, _ := store.Latest(ev.MMSI)
	pt.Static = v.Static
	if pt.ShipName == "" {
		pt.ShipName = v.Static.ShipName
	}

	return pt
}

// resolveHeading prefers true heading unless it's absent or the
// "unavailable" sentinel 511, in which case it falls back to course over
// ground.
func resolveHeading(trueHeading, cog *float64) *float64 {
	if trueHeading != nil && *trueHeading != 511 {
		return trueHeading
	}
	return cog
}

// wrapDelta wraps a raw heading difference to (-180, +180]. math.Mod keeps
// the sign of its dividend (unlike Python's %, which the formula this is
// ported from assumes), so the intermediate result is normalized back into
// [0, 360) before the final shift. That shift yields [-180, 180), so a
// result of -180 is reported as +180.
func wrapDelta(raw float64) float64 {
	d := math.Mod(math.Mod(raw+180, 360)+360, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}

func computeProfile(history []vessel.HistoryPoint) vessel.NormalProfile {
	window := history
	if len(window) > ProfileWindow {
		window = window[len(window)-ProfileWindow:]
	}
	var speeds, headings []float64
	for _, pt := range window {
		if pt.SOG != nil && *pt.SOG >= 0 && *pt.SOG < 102.2 {
			speeds = append(speeds, *pt.SOG)
		}
		if pt.Heading != nil && *pt.Heading != 511 && *pt.Heading >= 0 && *pt.Heading < 360 {
			headings = append(headings, *pt.Heading)
		}
	}
	profile := vessel.NormalProfile{N: len(speeds)}
	if len(speeds) > 0 {
		mean, std := meanStd(speeds)
		profile.SpeedMean = &mean
		profile.SpeedStd = &std
	}
	if len(headings) > 0 {
		mean, std := meanStd(headings)
		profile.HeadingMean = &mean
		profile.HeadingStd = &std
	}
	return profile
}

func meanStd(values []float64) (mean, std float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))
	if len(values) <= 1 {
		return mean, 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return mean, math.Sqrt(sqDiff / float64(len(values)))
}
