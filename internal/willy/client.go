// Package willy is a client for the Willy Weather v2 REST API, which
// publishes BOM tide predictions. https://www.willyweather.com.au/info/api.html
package willy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/pkg/http/client"
)

// Willy Weather date-times are local to the location's own time zone.
const willyTimeFormat = "2006-01-02 15:04:05"

type Client struct {
	httpClient *client.Client
	apiKey     string
}

// NewClient wraps an HTTP client with the API key. The key becomes part of
// every request path, so it must never be logged.
func NewClient(httpClient *client.Client, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
	}
}

// GetForecast fetches tide extremes and sun times for a location starting at
// the given date. Returns an InvalidCredentialError if the key is rejected
// and an APIError for any other failure.
func (c *Client) GetForecast(ctx context.Context, locationID int, start time.Time, days int) (*models.TideForecast, error) {
	path := fmt.Sprintf("/v2/%s/locations/%d/weather.json?forecasts=tides,sunrisesunset&days=%d&startDate=%s",
		c.apiKey, locationID, days, start.Format("2006-01-02"))

	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return nil, NewAPIError("fetching forecast", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &InvalidCredentialError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var weather models.WillyWeatherResponse
	if err := json.Unmarshal(resp.Body, &weather); err != nil {
		return nil, NewAPIError("decoding forecast response", err)
	}

	log.Debug().
		Int("location_id", locationID).
		Str("start", start.Format("2006-01-02")).
		Int("days", days).
		Msg("Fetched forecast from willyweather")

	return buildForecast(&weather)
}

// Search looks up Willy Weather location IDs by name or postcode.
func (c *Client) Search(ctx context.Context, query string) ([]models.LocationMatch, error) {
	path := fmt.Sprintf("/v2/%s/search.json?query=%s", c.apiKey, url.QueryEscape(query))

	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return nil, NewAPIError("searching locations", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &InvalidCredentialError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var results []models.WillySearchResult
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return nil, NewAPIError("decoding search response", err)
	}

	matches := make([]models.LocationMatch, len(results))
	for i, r := range results {
		matches[i] = models.LocationMatch{
			ID:       r.ID,
			Name:     r.Name,
			Region:   r.Region,
			State:    r.State,
			Postcode: r.Postcode,
		}
	}
	return matches, nil
}

func buildForecast(weather *models.WillyWeatherResponse) (*models.TideForecast, error) {
	tides := weather.Forecasts.Tides
	sun := weather.Forecasts.SunriseSunset
	if tides == nil || len(tides.Days) == 0 {
		return nil, NewAPIError("no tide forecast in response", nil)
	}

	location, err := time.LoadLocation(weather.Location.TimeZone)
	if err != nil {
		return nil, NewAPIError(fmt.Sprintf("unknown time zone %q", weather.Location.TimeZone), err)
	}

	events := make([]models.TideEvent, 0, len(tides.Days)*4)
	for _, day := range tides.Days {
		for _, entry := range day.Entries {
			var kind models.TideKind
			switch entry.Type {
			case "high":
				kind = models.TideKindHigh
			case "low":
				kind = models.TideKindLow
			default:
				// Some endpoints include interpolated entries; only the
				// extremes matter here.
				continue
			}
			t, err := parseWillyTime(entry.DateTime, location)
			if err != nil {
				return nil, err
			}
			events = append(events, models.TideEvent{
				Time:   t,
				Kind:   kind,
				Height: entry.Height,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	var sunDays []models.SunDay
	if sun != nil {
		for _, day := range sun.Days {
			if len(day.Entries) == 0 {
				continue
			}
			dawn, err := parseWillyTime(day.Entries[0].FirstLightDateTime, location)
			if err != nil {
				return nil, err
			}
			dusk, err := parseWillyTime(day.Entries[0].LastLightDateTime, location)
			if err != nil {
				return nil, err
			}
			sunDays = append(sunDays, models.SunDay{Dawn: dawn, Dusk: dusk})
		}
	}

	return &models.TideForecast{
		Location: models.Location{
			ID:        weather.Location.ID,
			Name:      weather.Location.Name,
			Region:    weather.Location.Region,
			State:     weather.Location.State,
			TimeZone:  weather.Location.TimeZone,
			Latitude:  weather.Location.Lat,
			Longitude: weather.Location.Lng,
			Source:    models.SourceWillyWeather,
		},
		Events: events,
		Sun:    sunDays,
		Units:  tides.Units.Height,
	}, nil
}

func parseWillyTime(timeStr string, location *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(willyTimeFormat, timeStr, location)
	if err != nil {
		return time.Time{}, NewAPIError(fmt.Sprintf("parsing time %q", timeStr), err)
	}
	return t, nil
}
