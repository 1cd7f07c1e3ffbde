// Package forecast turns raw provider data into the beach-driving forecast:
// avoid windows, safe periods and the interpolated tide curve.
package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/cache"
	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/internal/safety"
)

// curveStep is the sampling interval for the charted tide curve. Six
// minutes keeps the JSON payload small while staying visually smooth.
const curveStep = 6 * time.Minute

// Options bound the safety calculations.
type Options struct {
	BufferBefore time.Duration // avoid this long before each high tide
	BufferAfter  time.Duration // and this long after
	SafeMargin   time.Duration // safe period reaches this far around low tide
	Season       safety.NestingSeason
}

// DefaultOptions mirrors the published guidance: three hours either side.
func DefaultOptions() Options {
	return Options{
		BufferBefore: 3 * time.Hour,
		BufferAfter:  3 * time.Hour,
		SafeMargin:   3 * time.Hour,
		Season:       safety.DefaultNestingSeason(),
	}
}

type Service struct {
	provider TideProvider
	cache    Cache
	opts     Options
}

func NewService(provider TideProvider, forecastCache Cache, opts Options) *Service {
	return &Service{
		provider: provider,
		cache:    forecastCache,
		opts:     opts,
	}
}

// GetForecast fetches provider data and derives the full forecast. Results
// are cached per (location, start, days); one fetch serves many page views.
func (s *Service) GetForecast(ctx context.Context, locationID int, start time.Time, days int) (*models.Forecast, error) {
	key := cache.Key(locationID, start, days)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			log.Debug().Str("key", key).Msg("Forecast cache HIT")
			return cached, nil
		}
		log.Debug().Str("key", key).Msg("Forecast cache MISS")
	}

	raw, err := s.provider.GetForecast(ctx, locationID, start, days)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	result, err := s.derive(raw, start, days)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Save(key, result)
	}
	return result, nil
}

// Search passes a location lookup through to the provider.
func (s *Service) Search(ctx context.Context, query string) ([]models.LocationMatch, error) {
	return s.provider.Search(ctx, query)
}

func (s *Service) derive(raw *models.TideForecast, start time.Time, days int) (*models.Forecast, error) {
	windows, err := safety.ComputeAvoidWindows(raw.Events, s.opts.BufferBefore, s.opts.BufferAfter)
	if err != nil {
		return nil, fmt.Errorf("computing avoid windows: %w", err)
	}

	// Nesting-season nights are layered on top of the tide windows and the
	// combined list ordered by start. Overlaps stay unmerged.
	windows = append(windows, s.opts.Season.Windows(raw.Sun)...)
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	return &models.Forecast{
		Location:     raw.Location,
		GeneratedAt:  time.Now(),
		Start:        start,
		Days:         days,
		Events:       raw.Events,
		Sun:          raw.Sun,
		AvoidWindows: windows,
		SafePeriods:  safety.SafePeriods(raw.Events, raw.Sun, s.opts.SafeMargin),
		Curve:        safety.Curve(raw.Events, curveStep),
	}, nil
}

// WeekendStart returns the Thursday on or after t, the first day of the
// forecast window shown on the page.
func WeekendStart(t time.Time) time.Time {
	offset := (int(time.Thursday) - int(t.Weekday()) + 7) % 7
	day := t.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
