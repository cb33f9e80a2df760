package domain

import (
	"context"
	"time"
)

type KennelRepository interface {
	// Write paths
	UpsertKennel(ctx context.Context, k Kennel) error
	UpsertStays(ctx context.Context, ss []Stay) error
	LogMiss(ctx context.Context, kennelID string, status int, reason string) error

	// Read paths
	ListKennelsWithStays(ctx context.Context, from, to time.Time) ([]Kennel, error)
}

type ShelterClient interface {
	ListKennels(ctx context.Context) ([]map[string]any, error)
	GetKennel(ctx context.Context, id string) (map[string]any, error)
	GetStays(ctx context.Context, kennelID string, from, to time.Time) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

// PositionedStay carries everything the grid renderer needs for one bar:
// the lane index for the vertical offset and day counts for the horizontal
// placement within the visible window.
type PositionedStay struct {
	LanedStay
	OffsetDays int
	WidthDays  int
	OpenEnded  bool
}

type KennelTimeline struct {
	KennelID   string
	KennelName string
	KennelCode string
	Capacity   int
	Lanes      [][]PositionedStay
}

type TimelineView struct {
	From            time.Time
	To              time.Time
	TodayOffsetDays *int
	Kennels         []KennelTimeline
}
