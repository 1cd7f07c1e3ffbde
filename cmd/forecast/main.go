package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/api"
	"github.com/quantoid/tides/internal/cache"
	"github.com/quantoid/tides/internal/config"
	"github.com/quantoid/tides/internal/forecast"
	"github.com/quantoid/tides/internal/safety"
	"github.com/quantoid/tides/internal/secrets"
	"github.com/quantoid/tides/internal/willy"
	"github.com/quantoid/tides/pkg/http/client"
)

var (
	cfg         *config.Config
	forecastSvc *forecast.Service
	setupOnce   sync.Once
)

func init() {
	setupOnce.Do(func() {
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Loading configuration")
		}
		cfg.InitializeLogging()

		secretStore, err := secrets.Open(cfg.SecretsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Opening secrets store")
		}
		apiKey, err := secretStore.Get("willy", "key")
		if err != nil {
			log.Fatal().Err(err).Msg("Willy Weather API key not configured")
		}

		httpClient := client.New(client.Options{
			BaseURL:    cfg.WillyBaseURL,
			Timeout:    cfg.GetHTTPTimeout(),
			MaxRetries: cfg.MaxRetries,
		})

		forecastCache, err := cache.NewForecastCache(cfg.CacheSize, cfg.GetCacheTTL())
		if err != nil {
			log.Fatal().Err(err).Msg("Creating forecast cache")
		}

		forecastSvc = forecast.NewService(willy.NewClient(httpClient, apiKey), forecastCache, forecast.Options{
			BufferBefore: cfg.GetBufferBefore(),
			BufferAfter:  cfg.GetBufferAfter(),
			SafeMargin:   cfg.GetSafeMargin(),
			Season: safety.NestingSeason{
				StartMonth: time.Month(cfg.NestingStartMonth),
				StartDay:   cfg.NestingStartDay,
				EndMonth:   time.Month(cfg.NestingEndMonth),
				EndDay:     cfg.NestingEndDay,
			},
		})
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Info().Msg("Handling forecast request")

	params, err := api.ParseForecastParams(request.QueryStringParameters, time.Local)
	if err != nil {
		var paramErr api.InvalidParamError
		if errors.As(err, &paramErr) {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}
	if params.LocationID == 0 {
		params.LocationID = cfg.LocationID
	}
	if params.Start.IsZero() {
		params.Start = forecast.WeekendStart(time.Now())
	}
	if params.Days == 0 {
		params.Days = cfg.ForecastDays
	}

	result, err := forecastSvc.GetForecast(ctx, params.LocationID, params.Start, params.Days)
	if err != nil {
		log.Error().Err(err).Msg("Error getting forecast")
		var credErr *willy.InvalidCredentialError
		if errors.As(err, &credErr) {
			return api.Error("Tide service credentials were rejected", http.StatusUnauthorized)
		}
		return api.Error("Error getting tide data", http.StatusBadGateway)
	}

	return api.Success(api.NewForecastResponse(result))
}

func main() {
	lambda.Start(handleRequest)
}
