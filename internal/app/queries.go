package app

import (
	"context"
	"fmt"
	"time"

	"shelter_board/internal/adapters/observability"
	"shelter_board/internal/domain"
	"shelter_board/internal/timeline"
)

// Timeline scopes. Hotel keeps only hotel bookings; all keeps every stay.
const (
	ScopeHotel = "hotel"
	ScopeAll   = "all"
)

type TimelineQueryService struct {
	repo     domain.KennelRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewTimelineQueryService(r domain.KennelRepository, c domain.Cache, ttl time.Duration) *TimelineQueryService {
	return &TimelineQueryService{repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

// WithClock overrides the today-marker clock; tests use it to pin "today".
func (s *TimelineQueryService) WithClock(now func() time.Time) *TimelineQueryService {
	s.now = now
	return s
}

func (s *TimelineQueryService) HotelTimeline(ctx context.Context, from, to time.Time) (domain.TimelineView, error) {
	return s.compute(ctx, ScopeHotel, from, to)
}

func (s *TimelineQueryService) KennelTimeline(ctx context.Context, from, to time.Time) (domain.TimelineView, error) {
	return s.compute(ctx, ScopeAll, from, to)
}

func (s *TimelineQueryService) compute(ctx context.Context, scope string, from, to time.Time) (domain.TimelineView, error) {
	key := TimelineCacheKey(scope, from, to)
	var cached domain.TimelineView
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	kennels, err := s.repo.ListKennelsWithStays(ctx, from, to)
	if err != nil {
		return domain.TimelineView{}, err
	}

	view := domain.TimelineView{
		From:            from,
		To:              to,
		TodayOffsetDays: timeline.TodayOffset(s.now(), from, to),
	}
	conflicts := 0
	for _, k := range kennels {
		stays := k.Stays
		if scope == ScopeHotel {
			stays = filterHotel(stays)
		}
		if len(stays) == 0 {
			continue
		}
		annotated := timeline.DetectConflicts(stays)
		lanes := timeline.PackLanes(annotated, k.Capacity)

		kt := domain.KennelTimeline{
			KennelID:   k.ID,
			KennelName: k.Name,
			KennelCode: k.Code,
			Capacity:   k.Capacity,
			Lanes:      make([][]domain.PositionedStay, len(lanes)),
		}
		for i, lane := range lanes {
			row := make([]domain.PositionedStay, 0, len(lane))
			for _, ls := range lane {
				if ls.HasConflict {
					conflicts++
				}
				row = append(row, timeline.Position(ls, from, to))
			}
			kt.Lanes[i] = row
		}
		view.Kennels = append(view.Kennels, kt)
	}
	observability.ObserveTimeline(scope, conflicts)

	// copy before caching so later callers can't mutate the cached value
	_ = s.cache.Set(ctx, key, deepCopyView(view), int(s.cacheTTL.Seconds()))
	return view, nil
}

func TimelineCacheKey(scope string, from, to time.Time) string {
	return fmt.Sprintf("timeline:%s:%s:%s", scope, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func filterHotel(in []domain.Stay) []domain.Stay {
	out := make([]domain.Stay, 0, len(in))
	for _, s := range in {
		if s.IsHotel {
			out = append(out, s)
		}
	}
	return out
}

func deepCopyView(in domain.TimelineView) domain.TimelineView {
	out := in
	if in.TodayOffsetDays != nil {
		d := *in.TodayOffsetDays
		out.TodayOffsetDays = &d
	}
	out.Kennels = make([]domain.KennelTimeline, len(in.Kennels))
	for i, k := range in.Kennels {
		ck := k
		ck.Lanes = make([][]domain.PositionedStay, len(k.Lanes))
		for j, lane := range k.Lanes {
			ck.Lanes[j] = append([]domain.PositionedStay(nil), lane...)
		}
		out.Kennels[i] = ck
	}
	return out
}
