package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/willy"
)

// RequestLogger tags each request with an ID and logs it on completion.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

// userMessage maps provider failures onto the banner text shown to users.
func userMessage(err error) string {
	var credErr *willy.InvalidCredentialError
	if errors.As(err, &credErr) {
		return "Tide service credentials were rejected; please try again later."
	}
	var apiErr *willy.APIError
	if errors.As(err, &apiErr) {
		return "No tide data available for selected location"
	}
	return "Something went wrong fetching tide data."
}

func errorKind(err error) string {
	var credErr *willy.InvalidCredentialError
	if errors.As(err, &credErr) {
		return "invalid_credential"
	}
	var apiErr *willy.APIError
	if errors.As(err, &apiErr) {
		return "provider_unavailable"
	}
	return "internal"
}

func statusFor(err error) int {
	var credErr *willy.InvalidCredentialError
	if errors.As(err, &credErr) {
		return http.StatusUnauthorized
	}
	var apiErr *willy.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
