package willy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/pkg/http/client"
)

const weatherFixture = `{
	"location": {
		"id": 17924,
		"name": "Bongaree",
		"region": "Brisbane",
		"state": "QLD",
		"timeZone": "Australia/Brisbane",
		"lat": -27.0833,
		"lng": 153.1554
	},
	"forecasts": {
		"tides": {
			"days": [
				{
					"dateTime": "2023-11-02 00:00:00",
					"entries": [
						{"dateTime": "2023-11-02 10:45:00", "height": 1.9, "type": "high"},
						{"dateTime": "2023-11-02 04:30:00", "height": 0.4, "type": "low"},
						{"dateTime": "2023-11-02 16:50:00", "height": 0.3, "type": "low"}
					]
				}
			],
			"units": {"height": "m"}
		},
		"sunrisesunset": {
			"days": [
				{
					"dateTime": "2023-11-02 00:00:00",
					"entries": [
						{
							"firstLightDateTime": "2023-11-02 04:28:00",
							"riseDateTime": "2023-11-02 04:52:00",
							"setDateTime": "2023-11-02 18:09:00",
							"lastLightDateTime": "2023-11-02 18:33:00"
						}
					]
				}
			]
		}
	}
}`

const searchFixture = `[
	{"id": 17924, "name": "Bongaree", "region": "Brisbane", "state": "QLD", "postcode": "4507"}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := client.New(client.Options{
		BaseURL:    server.URL,
		Timeout:    time.Second,
		MaxRetries: 1,
	})
	return NewClient(httpClient, "testkey")
}

func TestGetForecast(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(weatherFixture))
	})

	start := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)
	forecast, err := c.GetForecast(context.Background(), 17924, start, 2)
	require.NoError(t, err)

	// The key is carried in the path, per the v2 API.
	assert.Equal(t, "/v2/testkey/locations/17924/weather.json", gotPath)
	assert.Contains(t, gotQuery, "forecasts=tides,sunrisesunset")
	assert.Contains(t, gotQuery, "days=2")
	assert.Contains(t, gotQuery, "startDate=2023-11-02")

	assert.Equal(t, "Bongaree", forecast.Location.Name)
	assert.Equal(t, models.SourceWillyWeather, forecast.Location.Source)
	assert.Equal(t, "m", forecast.Units)

	// Entries arrive unordered; the client sorts them.
	require.Len(t, forecast.Events, 3)
	assert.Equal(t, models.TideKindLow, forecast.Events[0].Kind)
	assert.Equal(t, models.TideKindHigh, forecast.Events[1].Kind)
	assert.Equal(t, models.TideKindLow, forecast.Events[2].Kind)
	assert.InDelta(t, 1.9, forecast.Events[1].Height, 0.0001)

	brisbane, err := time.LoadLocation("Australia/Brisbane")
	require.NoError(t, err)
	wantHigh := time.Date(2023, 11, 2, 10, 45, 0, 0, brisbane)
	assert.True(t, forecast.Events[1].Time.Equal(wantHigh),
		"times must be parsed in the location's zone")

	require.Len(t, forecast.Sun, 1)
	assert.True(t, forecast.Sun[0].Dawn.Equal(time.Date(2023, 11, 2, 4, 28, 0, 0, brisbane)))
	assert.True(t, forecast.Sun[0].Dusk.Equal(time.Date(2023, 11, 2, 18, 33, 0, 0, brisbane)))
}

func TestGetForecastRejectedKey(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetForecast(context.Background(), 17924, time.Now(), 2)
	require.Error(t, err)

	var credErr *InvalidCredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, http.StatusUnauthorized, credErr.StatusCode)
}

func TestGetForecastServerError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetForecast(context.Background(), 17924, time.Now(), 2)
	require.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestGetForecastNoTides(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"location":{"id":1,"timeZone":"UTC"},"forecasts":{}}`))
	})

	_, err := c.GetForecast(context.Background(), 1, time.Now(), 2)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "no tide forecast")
}

func TestGetForecastBadJSON(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.GetForecast(context.Background(), 17924, time.Now(), 2)
	require.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(searchFixture))
	})

	matches, err := c.Search(context.Background(), "bribie island")
	require.NoError(t, err)

	assert.Equal(t, "/v2/testkey/search.json", gotPath)
	assert.Contains(t, gotQuery, "query=bribie+island")

	require.Len(t, matches, 1)
	assert.Equal(t, 17924, matches[0].ID)
	assert.Equal(t, "Bongaree", matches[0].Name)
	assert.Equal(t, "4507", matches[0].Postcode)
}

func TestSearchRejectedKey(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), "bongaree")
	require.Error(t, err)

	var credErr *InvalidCredentialError
	assert.True(t, errors.As(err, &credErr))
}

func TestBuildForecastSkipsUnknownEntryTypes(t *testing.T) {
	t.Parallel()

	weather := &models.WillyWeatherResponse{}
	weather.Location.TimeZone = "UTC"
	weather.Forecasts.Tides = &models.WillyTides{
		Days: []models.WillyTideDay{
			{
				Entries: []models.WillyTideEntry{
					{DateTime: "2023-11-02 04:30:00", Height: 0.4, Type: "low"},
					{DateTime: "2023-11-02 07:30:00", Height: 1.0, Type: "interpolated"},
					{DateTime: "2023-11-02 10:45:00", Height: 1.9, Type: "high"},
				},
			},
		},
	}

	forecast, err := buildForecast(weather)
	require.NoError(t, err)
	require.Len(t, forecast.Events, 2)
	assert.Equal(t, models.TideKindLow, forecast.Events[0].Kind)
	assert.Equal(t, models.TideKindHigh, forecast.Events[1].Kind)
}

func TestBuildForecastUnknownTimeZone(t *testing.T) {
	t.Parallel()

	weather := &models.WillyWeatherResponse{}
	weather.Location.TimeZone = "Mars/Olympus"
	weather.Forecasts.Tides = &models.WillyTides{
		Days: []models.WillyTideDay{{Entries: []models.WillyTideEntry{
			{DateTime: "2023-11-02 04:30:00", Height: 0.4, Type: "low"},
		}}},
	}

	_, err := buildForecast(weather)
	require.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}
