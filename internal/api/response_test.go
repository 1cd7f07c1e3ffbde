package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoid/tides/internal/models"
)

func TestSuccess(t *testing.T) {
	t.Parallel()

	forecast := &models.Forecast{
		Location: models.Location{ID: 17924, Name: "Bongaree"},
	}

	resp, err := Success(NewForecastResponse(forecast))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	var decoded ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, "forecast", decoded.ResponseType)
	assert.Equal(t, 17924, decoded.Forecast.Location.ID)
}

func TestError(t *testing.T) {
	t.Parallel()

	resp, err := Error("something broke", http.StatusBadGateway)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, "error", decoded.ResponseType)
	assert.Equal(t, "something broke", decoded.Error)
}

func TestNewSearchResponse(t *testing.T) {
	t.Parallel()

	resp := NewSearchResponse([]models.LocationMatch{{ID: 1, Name: "Bongaree"}})
	assert.Equal(t, "search", resp.ResponseType)
	assert.Len(t, resp.Matches, 1)
}

func TestParseForecastParams(t *testing.T) {
	t.Parallel()

	sydney := time.FixedZone("AEDT", 11*3600)

	tests := []struct {
		name    string
		params  map[string]string
		want    ForecastParams
		wantErr string
	}{
		{
			name:   "empty params mean defaults",
			params: map[string]string{},
			want:   ForecastParams{},
		},
		{
			name: "all params",
			params: map[string]string{
				"locationId": "17924",
				"startDate":  "2023-11-02",
				"days":       "5",
			},
			want: ForecastParams{
				LocationID: 17924,
				Start:      time.Date(2023, 11, 2, 0, 0, 0, 0, sydney),
				Days:       5,
			},
		},
		{
			name:    "bad location",
			params:  map[string]string{"locationId": "abc"},
			wantErr: "locationId",
		},
		{
			name:    "bad date",
			params:  map[string]string{"startDate": "02/11/2023"},
			wantErr: "startDate",
		},
		{
			name:    "days out of range",
			params:  map[string]string{"days": "30"},
			wantErr: "days",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseForecastParams(tt.params, sydney)

			if tt.wantErr != "" {
				require.Error(t, err)
				var paramErr InvalidParamError
				require.ErrorAs(t, err, &paramErr)
				assert.Equal(t, tt.wantErr, paramErr.Name)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.LocationID, got.LocationID)
			assert.Equal(t, tt.want.Days, got.Days)
			assert.True(t, got.Start.Equal(tt.want.Start))
		})
	}
}
