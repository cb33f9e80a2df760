package timeline_test

import (
	"reflect"
	"testing"
	"time"

	"shelter_board/internal/domain"
	"shelter_board/internal/timeline"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func pt(t time.Time) *time.Time { return &t }

func stay(id string, start int, end *int) domain.Stay {
	s := domain.Stay{ID: id, KennelID: "k1", StartAt: day(start), IsHotel: true}
	if end != nil {
		s.EndAt = pt(day(*end))
	}
	return s
}

func pint(i int) *int { return &i }

// flagsByID collapses detector output for easy assertions.
func flagsByID(ls []domain.LanedStay) map[string]bool {
	m := make(map[string]bool, len(ls))
	for _, s := range ls {
		m[s.ID] = s.HasConflict
	}
	return m
}

func lanesByID(lanes []domain.Lane) map[string]int {
	m := map[string]int{}
	for i, lane := range lanes {
		for _, s := range lane {
			m[s.ID] = i
		}
	}
	return m
}

func TestDetectConflicts_Empty_And_Single(t *testing.T) {
	if got := timeline.DetectConflicts(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
	out := timeline.DetectConflicts([]domain.Stay{stay("a", 1, pint(5))})
	if len(out) != 1 || out[0].HasConflict {
		t.Fatalf("single stay must not conflict: %+v", out)
	}
}

func TestDetectConflicts_OverlapFlagsLaterStart(t *testing.T) {
	out := timeline.DetectConflicts([]domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 3, pint(8)),
	})
	f := flagsByID(out)
	if f["a"] {
		t.Fatalf("earlier stay must stay clean")
	}
	if !f["b"] {
		t.Fatalf("later stay must be flagged")
	}
}

func TestDetectConflicts_BackToBack_NotConflicting(t *testing.T) {
	out := timeline.DetectConflicts([]domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 5, pint(10)),
	})
	for id, c := range flagsByID(out) {
		if c {
			t.Fatalf("touching boundary flagged %s as conflicting", id)
		}
	}
}

func TestDetectConflicts_OrderIndependent(t *testing.T) {
	a := stay("a", 1, pint(5))
	b := stay("b", 3, pint(8))
	c := stay("c", 4, pint(6))
	first := timeline.DetectConflicts([]domain.Stay{a, b, c})
	second := timeline.DetectConflicts([]domain.Stay{c, a, b})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("detector output depends on input order:\n%+v\n%+v", first, second)
	}
}

func TestDetectConflicts_FlaggedStayDoesNotPromote(t *testing.T) {
	// b overlaps a and is flagged; c overlaps only b, so c stays clean.
	out := timeline.DetectConflicts([]domain.Stay{
		stay("a", 1, pint(4)),
		stay("b", 3, pint(8)),
		stay("c", 6, pint(10)),
	})
	f := flagsByID(out)
	if f["a"] || f["c"] {
		t.Fatalf("unexpected flags: %v", f)
	}
	if !f["b"] {
		t.Fatalf("b must be flagged: %v", f)
	}
}

func TestDetectConflicts_OpenEnded_SkippedInFirstPass(t *testing.T) {
	// Open-ended a overlaps b only under the residual open-end rule; b must
	// not be flagged by the primary sweep, but both carry the residual flag.
	out := timeline.DetectConflicts([]domain.Stay{
		stay("a", 1, nil),
		stay("b", 3, pint(8)),
	})
	f := flagsByID(out)
	if !f["a"] || !f["b"] {
		t.Fatalf("residual open-end overlap must flag both: %v", f)
	}
}

func TestDetectConflicts_OpenEnded_AfterClosedStay(t *testing.T) {
	// b starts after a ends: no overlap even with b open-ended.
	out := timeline.DetectConflicts([]domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 6, nil),
	})
	for id, c := range flagsByID(out) {
		if c {
			t.Fatalf("%s flagged without overlap", id)
		}
	}
}

func TestPackLanes_EveryStayExactlyOnce(t *testing.T) {
	in := []domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 2, pint(6)),
		stay("c", 3, pint(7)),
		stay("d", 5, nil),
		stay("e", 8, pint(9)),
	}
	lanes := timeline.PackLanes(timeline.DetectConflicts(in), 2)
	if len(lanes) != 2 {
		t.Fatalf("expected 2 lanes, got %d", len(lanes))
	}
	seen := map[string]int{}
	for i, lane := range lanes {
		for _, s := range lane {
			seen[s.ID]++
			if s.Lane != i {
				t.Fatalf("stay %s recorded lane %d but sits in lane %d", s.ID, s.Lane, i)
			}
		}
	}
	for _, s := range in {
		if seen[s.ID] != 1 {
			t.Fatalf("stay %s placed %d times", s.ID, seen[s.ID])
		}
	}
}

func TestPackLanes_CapacityClampedToOne(t *testing.T) {
	lanes := timeline.PackLanes(timeline.DetectConflicts([]domain.Stay{stay("a", 1, pint(2))}), 0)
	if len(lanes) != 1 || len(lanes[0]) != 1 {
		t.Fatalf("capacity<=0 must pack into a single lane: %+v", lanes)
	}
}

func TestPackLanes_Deterministic(t *testing.T) {
	in := []domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 1, pint(5)),
		stay("c", 1, pint(5)),
		stay("d", 2, nil),
	}
	one := timeline.PackLanes(timeline.DetectConflicts(in), 2)
	two := timeline.PackLanes(timeline.DetectConflicts(in), 2)
	if !reflect.DeepEqual(one, two) {
		t.Fatalf("same input produced different packings")
	}
}

func TestPackLanes_OpenEndedMemberReservesLane(t *testing.T) {
	// Open-ended a holds lane 0; b lands in lane 1 even though it starts
	// long after a began.
	in := []domain.Stay{
		stay("a", 1, nil),
		stay("b", 20, pint(25)),
	}
	byID := lanesByID(timeline.PackLanes(timeline.DetectConflicts(in), 2))
	if byID["a"] != 0 || byID["b"] != 1 {
		t.Fatalf("unexpected lanes: %v", byID)
	}
}

func TestPackLanes_OpenEndedCandidateAfterClosedStays(t *testing.T) {
	// Candidate with unknown end can follow a terminated stay in the lane.
	in := []domain.Stay{
		stay("a", 1, pint(5)),
		stay("b", 6, nil),
	}
	byID := lanesByID(timeline.PackLanes(timeline.DetectConflicts(in), 2))
	if byID["a"] != 0 || byID["b"] != 0 {
		t.Fatalf("expected both in lane 0, got %v", byID)
	}
}

// Scenario grid from the occupancy view's behaviour contract.
func TestScenarios(t *testing.T) {
	t.Run("capacity1_single", func(t *testing.T) {
		lanes := timeline.PackLanes(timeline.DetectConflicts([]domain.Stay{stay("a", 1, pint(5))}), 1)
		if len(lanes) != 1 || len(lanes[0]) != 1 || lanes[0][0].Lane != 0 || lanes[0][0].HasConflict {
			t.Fatalf("unexpected: %+v", lanes)
		}
	})

	t.Run("capacity1_overlap_overflows_and_flags", func(t *testing.T) {
		annotated := timeline.DetectConflicts([]domain.Stay{
			stay("A", 1, pint(5)),
			stay("B", 3, pint(8)),
		})
		f := flagsByID(annotated)
		if f["A"] || !f["B"] {
			t.Fatalf("flags: %v", f)
		}
		lanes := timeline.PackLanes(annotated, 1)
		if len(lanes[0]) != 2 {
			t.Fatalf("both stays must land in the single lane: %+v", lanes)
		}
	})

	t.Run("capacity2_absorbs_overlap", func(t *testing.T) {
		annotated := timeline.DetectConflicts([]domain.Stay{
			stay("A", 1, pint(5)),
			stay("B", 3, pint(8)),
		})
		byID := lanesByID(timeline.PackLanes(annotated, 2))
		if byID["A"] != 0 || byID["B"] != 1 {
			t.Fatalf("lanes: %v", byID)
		}
	})

	t.Run("capacity1_back_to_back_share_lane", func(t *testing.T) {
		annotated := timeline.DetectConflicts([]domain.Stay{
			stay("A", 1, pint(5)),
			stay("B", 5, pint(10)),
		})
		for _, s := range annotated {
			if s.HasConflict {
				t.Fatalf("back-to-back flagged: %+v", s)
			}
		}
		lanes := timeline.PackLanes(annotated, 1)
		if len(lanes[0]) != 2 {
			t.Fatalf("expected shared lane: %+v", lanes)
		}
	})

	t.Run("capacity2_triple_overlap_overflows_lane0", func(t *testing.T) {
		annotated := timeline.DetectConflicts([]domain.Stay{
			stay("A", 1, pint(5)),
			stay("B", 1, pint(5)),
			stay("C", 1, pint(5)),
		})
		byID := lanesByID(timeline.PackLanes(annotated, 2))
		if byID["A"] != 0 || byID["B"] != 1 || byID["C"] != 0 {
			t.Fatalf("lanes: %v", byID)
		}
		f := flagsByID(annotated)
		if f["A"] || !f["B"] || !f["C"] {
			t.Fatalf("flags: %v", f)
		}
	})
}

func TestPosition_Geometry(t *testing.T) {
	from, to := day(10), day(20)

	cases := []struct {
		name          string
		s             domain.Stay
		offset, width int
		open          bool
	}{
		{"inside_window", stay("a", 12, pint(15)), 2, 3, false},
		{"starts_before_window", stay("b", 5, pint(14)), 0, 4, false},
		{"ends_after_window", stay("c", 18, pint(30)), 8, 2, false},
		{"open_ended_runs_to_window_end", stay("d", 15, nil), 5, 5, true},
		{"zero_width_clamped_to_one_day", stay("e", 12, pint(12)), 2, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := timeline.Position(domain.LanedStay{Stay: tc.s}, from, to)
			if p.OffsetDays != tc.offset || p.WidthDays != tc.width || p.OpenEnded != tc.open {
				t.Fatalf("got offset=%d width=%d open=%v", p.OffsetDays, p.WidthDays, p.OpenEnded)
			}
		})
	}
}

func TestTodayOffset(t *testing.T) {
	from, to := day(10), day(20)
	if off := timeline.TodayOffset(day(14), from, to); off == nil || *off != 4 {
		t.Fatalf("expected offset 4, got %v", off)
	}
	if off := timeline.TodayOffset(day(14).Add(13*time.Hour+30*time.Minute), from, to); off == nil || *off != 4 {
		t.Fatalf("intra-day time must not shift the marker, got %v", off)
	}
	if off := timeline.TodayOffset(day(9), from, to); off != nil {
		t.Fatalf("before window: expected nil, got %d", *off)
	}
	if off := timeline.TodayOffset(day(21), from, to); off != nil {
		t.Fatalf("after window: expected nil, got %d", *off)
	}
	if off := timeline.TodayOffset(day(20), from, to); off == nil || *off != 10 {
		t.Fatalf("window end is inclusive for the marker, got %v", off)
	}
}
