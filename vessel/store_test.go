package vessel

import "testing"

func f64(v float64) *float64 { return &v }

func TestUpsertPositionRejectsInvalidCoordinates(t *testing.T) {
	s := NewStore()
	if err := s.UpsertPosition(1, 999, 0, nil, nil, nil, nil, "", 0); err != ErrInvalidCoordinates {
		t.Errorf("UpsertPosition with lat=999: err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestUpsertPositionMovesGridCell(t *testing.T) {
	s := NewStore()
	const mmsi = 257123456
	if err := s.UpsertPosition(mmsi, 1.0, 1.0, nil, nil, nil, nil, "Norway", 257); err != nil {
		t.Fatalf("UpsertPosition: %v", err)
	}
	got := s.SpatialQuery(0.5, 1.5, 0.5, 1.5)
	if len(got) != 1 || got[0].MMSI != mmsi {
		t.Fatalf("SpatialQuery around (1,1) = %v, want one match for %d", got, mmsi)
	}

	if err := s.UpsertPosition(mmsi, 10.0, 10.0, nil, nil, nil, nil, "Norway", 257); err != nil {
		t.Fatalf("UpsertPosition: %v", err)
	}
	got = s.SpatialQuery(0.5, 1.5, 0.5, 1.5)
	if len(got) != 0 {
		t.Errorf("SpatialQuery around old position after move = %v, want empty", got)
	}
	got = s.SpatialQuery(9.5, 10.5, 9.5, 10.5)
	if len(got) != 1 || got[0].MMSI != mmsi {
		t.Errorf("SpatialQuery around new position = %v, want one match for %d", got, mmsi)
	}
}

func TestAppendHistoryPurgesToFloor(t *testing.T) {
	s := NewStore()
	const mmsi = 257123456
	for i := 0; i < HistoryMax+5; i++ {
		s.AppendHistory(mmsi, HistoryPoint{MMSI: mmsi})
	}
	// Appending the HistoryMax-th point purges down to HistoryMin; the
	// remaining 5 appends then grow the history again.
	h := s.History(mmsi)
	if len(h) != HistoryMin+5 {
		t.Errorf("len(History) after exceeding HistoryMax = %d, want %d", len(h), HistoryMin+5)
	}
}

func TestStaticFieldsMergeKeepsUnsetFields(t *testing.T) {
	s := NewStore()
	const mmsi = 257123456
	name := "FIRST"
	s.UpdateStatic(mmsi, StaticFields{ShipName: name})
	dest := "ROTTERDAM"
	s.UpdateStatic(mmsi, StaticFields{Destination: dest})

	v, _ := s.Latest(mmsi)
	if v.Static.ShipName != name {
		t.Errorf("ShipName = %q, want %q to survive a later update that doesn't set it", v.Static.ShipName, name)
	}
	if v.Static.Destination != dest {
		t.Errorf("Destination = %q, want %q", v.Static.Destination, dest)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore()
	s.UpsertPosition(1, 1, 1, nil, nil, nil, nil, "", 0)
	s.Reset()
	if s.Known(1) {
		t.Error("Known(1) after Reset = true, want false")
	}
	if got := s.SpatialQuery(-90, 90, -180, 180); len(got) != 0 {
		t.Errorf("SpatialQuery after Reset = %v, want empty", got)
	}
}
