// Package timeline packs a kennel's stays into parallel lanes for the
// occupancy grid and flags double-booked stays.
package timeline

import (
	"sort"
	"time"

	"shelter_board/internal/domain"
)

// DetectConflicts classifies every stay as a clean occupant or a
// double-booking. Output is sorted by (StartAt, ID), so the result is
// deterministic regardless of input order. Flags are monotone: once a stay
// is marked conflicting it stays marked for the rest of the computation.
func DetectConflicts(stays []domain.Stay) []domain.LanedStay {
	out := make([]domain.LanedStay, len(stays))
	for i, s := range stays {
		out[i] = domain.LanedStay{Stay: s}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	if len(out) < 2 {
		return out
	}

	// First sweep: pairwise over sorted order, both ends known. The later
	// stay of an overlapping pair takes the flag; an already-flagged earlier
	// stay does not promote further flags.
	flagged := make(map[string]bool, len(out))
	for j := 1; j < len(out); j++ {
		for i := 0; i < j; i++ {
			if flagged[out[i].ID] {
				continue
			}
			if closedOverlap(out[i].Stay, out[j].Stay) {
				flagged[out[j].ID] = true
				break
			}
		}
	}
	for i := range out {
		if flagged[out[i].ID] {
			out[i].HasConflict = true
		}
	}

	// Residual sweep among the clean stays, covering the open-ended pairs
	// the first sweep skipped. Marks HasConflict only; the packing input
	// keeps its order and membership.
	for i := range out {
		if flagged[out[i].ID] {
			continue
		}
		for k := range out {
			if k == i || flagged[out[k].ID] {
				continue
			}
			if openOverlap(out[i].Stay, out[k].Stay) {
				out[i].HasConflict = true
				break
			}
		}
	}
	return out
}

// PackLanes assigns every stay (conflicting or not) to one of capacity
// lanes, first-fit from lane 0. Over-capacity input overflows into the
// least-crowded lane instead of failing: the grid always renders something.
func PackLanes(stays []domain.LanedStay, capacity int) []domain.Lane {
	if capacity < 1 {
		capacity = 1
	}
	lanes := make([]domain.Lane, capacity)
	for _, s := range stays {
		idx := -1
		for l := range lanes {
			if laneAdmits(lanes[l], s) {
				idx = l
				break
			}
		}
		if idx < 0 {
			idx = leastCrowded(lanes, s)
		}
		s.Lane = idx
		lanes[idx] = append(lanes[idx], s)
	}
	return lanes
}

// laneAdmits reports whether cand can share the lane with every current
// member. An unterminated member reserves the whole lane: its future end is
// unknown, so nothing may be scheduled after it.
func laneAdmits(lane domain.Lane, cand domain.LanedStay) bool {
	for _, m := range lane {
		if m.EndAt == nil {
			return false
		}
		if cand.EndAt == nil {
			if m.EndAt.After(cand.StartAt) {
				return false
			}
			continue
		}
		if m.StartAt.Before(*cand.EndAt) && cand.StartAt.Before(*m.EndAt) {
			return false
		}
	}
	return true
}

// leastCrowded picks the overflow lane with the fewest members overlapping
// cand; any pairing involving an unknown end counts as an overlap. Ties go
// to the lowest index.
func leastCrowded(lanes []domain.Lane, cand domain.LanedStay) int {
	best, bestCount := 0, -1
	for l, lane := range lanes {
		n := 0
		for _, m := range lane {
			if m.EndAt == nil || cand.EndAt == nil ||
				(m.StartAt.Before(*cand.EndAt) && cand.StartAt.Before(*m.EndAt)) {
				n++
			}
		}
		if bestCount < 0 || n < bestCount {
			best, bestCount = l, n
		}
	}
	return best
}

// closedOverlap: half-open [start, end) intersection, both ends known.
// Touching boundaries (end == start) do not overlap.
func closedOverlap(a, b domain.Stay) bool {
	if a.EndAt == nil || b.EndAt == nil {
		return false
	}
	return a.StartAt.Before(*b.EndAt) && b.StartAt.Before(*a.EndAt)
}

// openOverlap treats a nil end as extending forever.
func openOverlap(a, b domain.Stay) bool {
	if a.EndAt != nil && !a.EndAt.After(b.StartAt) {
		return false
	}
	if b.EndAt != nil && !b.EndAt.After(a.StartAt) {
		return false
	}
	return true
}

// Position computes the renderer geometry for one stay within [from, to].
// Offsets are whole days; an open end extends the bar to the window end.
func Position(s domain.LanedStay, from, to time.Time) domain.PositionedStay {
	start := s.StartAt
	if start.Before(from) {
		start = from
	}
	end := to
	if s.EndAt != nil && s.EndAt.Before(to) {
		end = *s.EndAt
	}
	width := daysBetween(start, end)
	if width < 1 {
		width = 1
	}
	offset := daysBetween(from, start)
	if offset < 0 {
		offset = 0
	}
	return domain.PositionedStay{
		LanedStay:  s,
		OffsetDays: offset,
		WidthDays:  width,
		OpenEnded:  s.EndAt == nil,
	}
}

// TodayOffset returns the day offset of now within [from, to], or nil when
// today is outside the window and no marker should be drawn.
func TodayOffset(now, from, to time.Time) *int {
	day := now.UTC().Truncate(24 * time.Hour)
	if day.Before(from.UTC().Truncate(24*time.Hour)) || day.After(to.UTC().Truncate(24*time.Hour)) {
		return nil
	}
	d := daysBetween(from, day)
	return &d
}

func daysBetween(a, b time.Time) int {
	ad := a.UTC().Truncate(24 * time.Hour)
	bd := b.UTC().Truncate(24 * time.Hour)
	return int(bd.Sub(ad) / (24 * time.Hour))
}
