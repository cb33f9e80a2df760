package app

import (
	"context"
	"time"

	"shelter_board/internal/domain"
)

// WeatherFetcher is implemented by the upstream weather adapter.
type WeatherFetcher interface {
	Current(ctx context.Context, orgID string) (map[string]any, error)
}

// The dashboard widget tolerates half-hour-old weather.
const weatherTTL = 30 * time.Minute

// WeatherService proxies the dashboard weather widget's upstream call,
// cached per organization.
type WeatherService struct {
	fetch WeatherFetcher
	cache domain.Cache
}

func NewWeatherService(f WeatherFetcher, c domain.Cache) *WeatherService {
	return &WeatherService{fetch: f, cache: c}
}

func (s *WeatherService) Current(ctx context.Context, orgID string) (map[string]any, error) {
	key := "weather:" + orgID
	var cached map[string]any
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	w, err := s.fetch.Current(ctx, orgID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, w, int(weatherTTL.Seconds()))
	return w, nil
}
