package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/assets"
	"github.com/quantoid/tides/internal/cache"
	"github.com/quantoid/tides/internal/config"
	"github.com/quantoid/tides/internal/forecast"
	"github.com/quantoid/tides/internal/handlers"
	"github.com/quantoid/tides/internal/safety"
	"github.com/quantoid/tides/internal/secrets"
	"github.com/quantoid/tides/internal/willy"
	"github.com/quantoid/tides/pkg/http/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration")
	}
	cfg.InitializeLogging()

	// The app cannot run without the provider credential.
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
	provider := willy.NewClient(httpClient, apiKey)

	forecastCache, err := cache.NewForecastCache(cfg.CacheSize, cfg.GetCacheTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("Creating forecast cache")
	}

	svc := forecast.NewService(provider, forecastCache, forecast.Options{
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

	assetStore, err := assets.NewStore(context.Background(), cfg.AssetsBucket, cfg.AssetsEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating asset store")
	}

	r := mux.NewRouter().StrictSlash(true)
	handlers.Register(r, svc, assetStore, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	log.Info().Str("addr", cfg.Addr).Int("location_id", cfg.LocationID).Msg("Listening")
	log.Fatal().Err(srv.ListenAndServe()).Msg("Server stopped")
}
