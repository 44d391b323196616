package enrich

import (
	"testing"
	"time"

	"github.com/aisentinel/aisentinel/decode"
	"github.com/aisentinel/aisentinel/vessel"
)

func f64(v float64) *float64 { return &v }

func TestEnrichComputesDeltas(t *testing.T) {
	store := vessel.NewStore()
	base := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	first := Enrich(store, decode.Event{
		MMSI:     257123456,
		Kind:     decode.KindPositionReport,
		Position: &decode.PositionFields{Lat: 1, Lon: 1, SOG: f64(10), TrueHeading: f64(90)},
	}, base)
	store.AppendHistory(257123456, first)

	second := Enrich(store, decode.Event{
		MMSI:     257123456,
		Kind:     decode.KindPositionReport,
		Position: &decode.PositionFields{Lat: 1.01, Lon: 1.01, SOG: f64(15), TrueHeading: f64(100)},
	}, base.Add(60*time.Second))

	if second.TimeDiff == nil || *second.TimeDiff != 60 {
		t.Errorf("TimeDiff = %v, want 60", second.TimeDiff)
	}
	if second.DeltaSpeed == nil || *second.DeltaSpeed != 5 {
		t.Errorf("DeltaSpeed = %v, want 5", second.DeltaSpeed)
	}
	if second.DeltaHeading == nil || *second.DeltaHeading != 10 {
		t.Errorf("DeltaHeading = %v, want 10", second.DeltaHeading)
	}
}

func TestWrapDeltaAcrossZero(t *testing.T) {
	d := wrapDelta(350 - 10) // raw diff 340, should wrap to -20
	if d != -20 {
		t.Errorf("wrapDelta(340) = %v, want -20", d)
	}
}

func TestWrapDeltaAcrossNorth(t *testing.T) {
	// 350 -> 10 is a +20 turn through north, not a -340 turn.
	d := wrapDelta(10 - 350)
	if d != 20 {
		t.Errorf("wrapDelta(-340) = %v, want 20", d)
	}
}

func TestResolveHeadingFallsBackFromSentinel(t *testing.T) {
	unavailable := f64(511)
	cog := f64(42)
	if got := resolveHeading(unavailable, cog); got == nil || *got != 42 {
		t.Errorf("resolveHeading with sentinel true heading = %v, want cog fallback 42", got)
	}
}

func TestEnrichOverlaysStaticFields(t *testing.T) {
	store := vessel.NewStore()
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	Enrich(store, decode.Event{
		MMSI: 257123456,
		Kind: decode.KindShipStaticData,
		Static: &decode.StaticPayload{
			ShipName: "FIRST NAME",
		},
	}, now)

	pt := Enrich(store, decode.Event{
		MMSI:     257123456,
		Kind:     decode.KindPositionReport,
		Position: &decode.PositionFields{Lat: 1, Lon: 1},
	}, now.Add(time.Minute))

	if pt.Static.ShipName != "FIRST NAME" {
		t.Errorf("Static.ShipName = %q, want carried-over %q", pt.Static.ShipName, "FIRST NAME")
	}
}
