package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoid/tides/internal/cache"
	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/internal/safety"
	"github.com/quantoid/tides/internal/willy"
)

var brisbane = time.FixedZone("AEST", 10*3600)

type mockProvider struct {
	forecast *models.TideForecast
	matches  []models.LocationMatch
	err      error
	calls    int
}

func (m *mockProvider) GetForecast(_ context.Context, _ int, _ time.Time, _ int) (*models.TideForecast, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.forecast, nil
}

func (m *mockProvider) Search(_ context.Context, _ string) ([]models.LocationMatch, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, brisbane)
}

// winterForecast has one high tide and falls outside the nesting season.
func winterForecast() *models.TideForecast {
	return &models.TideForecast{
		Location: models.Location{ID: 17924, Name: "Bongaree", TimeZone: "Australia/Brisbane"},
		Events: []models.TideEvent{
			{Time: at(2023, time.June, 10, 4, 0), Kind: models.TideKindLow, Height: 0.4},
			{Time: at(2023, time.June, 10, 10, 10), Kind: models.TideKindHigh, Height: 1.9},
			{Time: at(2023, time.June, 10, 16, 20), Kind: models.TideKindLow, Height: 0.3},
		},
		Sun: []models.SunDay{
			{Dawn: at(2023, time.June, 10, 6, 30), Dusk: at(2023, time.June, 10, 17, 25)},
			{Dawn: at(2023, time.June, 11, 6, 30), Dusk: at(2023, time.June, 11, 17, 25)},
		},
		Units: "m",
	}
}

// summerForecast falls inside the nesting season, so nights count too.
func summerForecast() *models.TideForecast {
	return &models.TideForecast{
		Location: models.Location{ID: 17924, Name: "Bongaree", TimeZone: "Australia/Brisbane"},
		Events: []models.TideEvent{
			{Time: at(2023, time.December, 1, 5, 0), Kind: models.TideKindLow, Height: 0.4},
			{Time: at(2023, time.December, 1, 11, 10), Kind: models.TideKindHigh, Height: 2.0},
		},
		Sun: []models.SunDay{
			{Dawn: at(2023, time.December, 1, 4, 45), Dusk: at(2023, time.December, 1, 18, 40)},
			{Dawn: at(2023, time.December, 2, 4, 45), Dusk: at(2023, time.December, 2, 18, 41)},
		},
		Units: "m",
	}
}

func TestGetForecastDerivesWindows(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{forecast: winterForecast()}
	svc := NewService(provider, nil, DefaultOptions())

	start := at(2023, time.June, 10, 0, 0)
	result, err := svc.GetForecast(context.Background(), 17924, start, 2)
	require.NoError(t, err)

	assert.Equal(t, 17924, result.Location.ID)
	assert.True(t, result.Start.Equal(start))
	assert.Equal(t, 2, result.Days)

	// One avoid window per high tide, none for the nesting season in June.
	require.Len(t, result.AvoidWindows, 1)
	assert.Equal(t, models.ReasonHighTide, result.AvoidWindows[0].Reason)
	assert.True(t, result.AvoidWindows[0].Start.Equal(at(2023, time.June, 10, 7, 10)))
	assert.True(t, result.AvoidWindows[0].End.Equal(at(2023, time.June, 10, 13, 10)))

	// A safe period around each daylight low tide.
	require.Len(t, result.SafePeriods, 2)

	assert.NotEmpty(t, result.Curve)
}

func TestGetForecastLayersNestingWindows(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{forecast: summerForecast()}
	svc := NewService(provider, nil, DefaultOptions())

	result, err := svc.GetForecast(context.Background(), 17924, at(2023, time.December, 1, 0, 0), 2)
	require.NoError(t, err)

	// One high-tide window plus one dusk-to-dawn night.
	require.Len(t, result.AvoidWindows, 2)
	for i := 1; i < len(result.AvoidWindows); i++ {
		assert.False(t, result.AvoidWindows[i].Start.Before(result.AvoidWindows[i-1].Start),
			"windows must be ordered by start")
	}

	reasons := map[models.WindowReason]int{}
	for _, w := range result.AvoidWindows {
		reasons[w.Reason]++
	}
	assert.Equal(t, 1, reasons[models.ReasonHighTide])
	assert.Equal(t, 1, reasons[models.ReasonNestingSeason])
}

func TestGetForecastUsesCache(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{forecast: winterForecast()}
	forecastCache, err := cache.NewForecastCache(4, time.Minute)
	require.NoError(t, err)
	svc := NewService(provider, forecastCache, DefaultOptions())

	start := at(2023, time.June, 10, 0, 0)
	first, err := svc.GetForecast(context.Background(), 17924, start, 2)
	require.NoError(t, err)
	second, err := svc.GetForecast(context.Background(), 17924, start, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "second call should be served from cache")
	assert.Same(t, first, second)
}

func TestGetForecastProviderError(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{err: willy.NewAPIError("willyweather is down", nil)}
	svc := NewService(provider, nil, DefaultOptions())

	_, err := svc.GetForecast(context.Background(), 17924, at(2023, time.June, 10, 0, 0), 2)
	require.Error(t, err)

	var apiErr *willy.APIError
	assert.True(t, errors.As(err, &apiErr), "provider error should survive wrapping")
}

func TestGetForecastUnsortedEvents(t *testing.T) {
	t.Parallel()

	raw := winterForecast()
	raw.Events[0], raw.Events[2] = raw.Events[2], raw.Events[0]
	provider := &mockProvider{forecast: raw}
	svc := NewService(provider, nil, DefaultOptions())

	_, err := svc.GetForecast(context.Background(), 17924, at(2023, time.June, 10, 0, 0), 2)
	require.Error(t, err)

	var unsortedErr *safety.UnsortedEventsError
	assert.True(t, errors.As(err, &unsortedErr))
}

func TestSearchPassesThrough(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{matches: []models.LocationMatch{{ID: 17924, Name: "Bongaree"}}}
	svc := NewService(provider, nil, DefaultOptions())

	matches, err := svc.Search(context.Background(), "bongaree")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Bongaree", matches[0].Name)
}

func TestWeekendStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "wednesday rolls to thursday",
			now:  at(2023, time.November, 1, 9, 30),
			want: at(2023, time.November, 2, 0, 0),
		},
		{
			name: "thursday keeps the same day",
			now:  at(2023, time.November, 2, 15, 0),
			want: at(2023, time.November, 2, 0, 0),
		},
		{
			name: "friday rolls to next week",
			now:  at(2023, time.November, 3, 8, 0),
			want: at(2023, time.November, 9, 0, 0),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := WeekendStart(tt.now)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
