package forecast

import (
	"context"
	"time"

	"github.com/quantoid/tides/internal/models"
)

// TideProvider supplies raw tide and sun forecasts for a location.
type TideProvider interface {
	GetForecast(ctx context.Context, locationID int, start time.Time, days int) (*models.TideForecast, error)
	Search(ctx context.Context, query string) ([]models.LocationMatch, error)
}

// Cache holds computed forecasts between render cycles.
type Cache interface {
	Get(key string) (*models.Forecast, bool)
	Save(key string, forecast *models.Forecast)
}
