package app

import (
	"testing"
	"time"
)

func TestMapKennel_AliasesAndCapacityClamp(t *testing.T) {
	k := mapKennel(map[string]any{
		"kennel_id":   "K-9",
		"kennel_name": "Quarantine 9",
		"short_code":  "Q9",
		"capacity":    "3",
	})
	if k.ID != "K-9" || k.Name != "Quarantine 9" || k.Code != "Q9" || k.Capacity != 3 {
		t.Fatalf("unexpected kennel: %+v", k)
	}

	legacy := mapKennel(map[string]any{"id": "K-1", "name": "Run 1", "capacity": 0.0})
	if legacy.ID != "K-1" || legacy.Capacity != 1 {
		t.Fatalf("non-positive capacity must clamp to 1: %+v", legacy)
	}
}

func TestMapStays_TimeShapesAndSkips(t *testing.T) {
	in := []map[string]any{
		{
			"id":       "s1",
			"start_at": "2026-04-01T10:00:00Z",
			"end_at":   "2026-04-05",
			"is_hotel": true,
			"animal":   map[string]any{"id": "a1", "name": "Rex", "species": "dog"},
		},
		{
			// open-ended, legacy field names
			"stay_id": "s2",
			"checkin": "2026-04-02 08:30:00",
			"hotel":   "true",
		},
		{"id": "s3", "start_at": "not-a-date"}, // skipped
		{"start_at": "2026-04-01"},             // no id, skipped
	}
	out := mapStays("K-1", in)
	if len(out) != 2 {
		t.Fatalf("expected 2 mapped stays, got %d: %+v", len(out), out)
	}

	s1 := out[0]
	if s1.ID != "s1" || s1.KennelID != "K-1" || !s1.IsHotel {
		t.Fatalf("unexpected s1: %+v", s1)
	}
	if !s1.StartAt.Equal(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("s1 start: %v", s1.StartAt)
	}
	if s1.EndAt == nil || !s1.EndAt.Equal(time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("s1 end: %v", s1.EndAt)
	}
	if s1.AnimalName != "Rex" || s1.AnimalSpecies != "dog" {
		t.Fatalf("nested animal fields: %+v", s1)
	}

	s2 := out[1]
	if s2.ID != "s2" || !s2.IsHotel || s2.EndAt != nil {
		t.Fatalf("unexpected s2: %+v", s2)
	}
}
