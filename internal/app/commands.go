package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shelter_board/internal/domain"
)

// SyncService pulls kennel and reservation data from the upstream
// shelter-management backend into local storage. This repo never mutates
// reservations; checkout and rebooking happen upstream.
type SyncService struct {
	client domain.ShelterClient
	repo   domain.KennelRepository
	cache  domain.Cache
}

func NewSyncService(c domain.ShelterClient, r domain.KennelRepository, cache domain.Cache) *SyncService {
	return &SyncService{client: c, repo: r, cache: cache}
}

// SyncKennel refreshes one kennel and its stays inside [from, to].
// Known upstream misses (gone or inaccessible kennels) are recorded and
// swallowed; anything unexpected bubbles up.
func (s *SyncService) SyncKennel(ctx context.Context, kennelID string, from, to time.Time) error {
	k, err := s.client.GetKennel(ctx, kennelID)
	if err != nil {
		low := strings.ToLower(err.Error())

		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogMiss(ctx, kennelID, 404, "not found")
			s.invalidateTimelines(ctx, from, to)
			return nil
		}
		if strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogMiss(ctx, kennelID, 403, "inaccessible")
			s.invalidateTimelines(ctx, from, to)
			return nil
		}
		return err
	}

	// Parent first to satisfy the stays FK.
	if err := s.repo.UpsertKennel(ctx, mapKennel(k)); err != nil {
		return err
	}

	stays, serr := s.client.GetStays(ctx, kennelID, from, to)
	if serr != nil {
		low := strings.ToLower(serr.Error())
		switch {
		case errors.Is(serr, domain.ErrNotFound) || strings.Contains(low, "not found"):
			_ = s.repo.LogMiss(ctx, kennelID, 404, "stays")
		case strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized"):
			_ = s.repo.LogMiss(ctx, kennelID, 403, "stays")
		default:
			return serr
		}
	} else if len(stays) > 0 {
		if err := s.repo.UpsertStays(ctx, mapStays(kennelID, stays)); err != nil {
			return fmt.Errorf("upsert stays failed for kennel %s: %w", kennelID, err)
		}
	}

	// Even an empty result invalidates: a checkout upstream may have
	// removed the last stay in the window.
	s.invalidateTimelines(ctx, from, to)
	return nil
}

// invalidateTimelines drops the cached views most likely to be stale: the
// synced window itself plus the API's default display window.
func (s *SyncService) invalidateTimelines(ctx context.Context, from, to time.Time) {
	if s.cache == nil {
		return
	}
	for _, scope := range []string{ScopeHotel, ScopeAll} {
		_ = s.cache.Del(ctx, TimelineCacheKey(scope, from, to))
		dfrom, dto := DefaultWindow(time.Now())
		_ = s.cache.Del(ctx, TimelineCacheKey(scope, dfrom, dto))
	}
}

// DefaultWindow is the display window the API uses when the client sends no
// explicit range: one week back, three weeks ahead.
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -7), day.AddDate(0, 0, 21)
}
