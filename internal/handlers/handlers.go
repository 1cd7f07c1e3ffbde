// Package handlers wires the HTTP surface: the server-rendered dashboard,
// the JSON API, static assets and health/metrics endpoints.
package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/quantoid/tides/internal/api"
	"github.com/quantoid/tides/internal/assets"
	"github.com/quantoid/tides/internal/config"
	"github.com/quantoid/tides/internal/forecast"
	"github.com/quantoid/tides/internal/metrics"
	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/internal/visualize"
)

//go:embed templates
var content embed.FS

const (
	dayFormat   = "Mon 2 Jan 2006"
	clockFormat = "3:04 PM"
)

// Register mounts all routes on the router.
func Register(r *mux.Router, svc *forecast.Service, store *assets.Store, cfg *config.Config) {
	r.Use(RequestLogger)
	r.Use(metrics.LatencyHandler)

	r.Handle("/", makeIndex(svc, cfg)).Methods(http.MethodGet)
	r.Handle("/api/v1/forecast", makeForecastAPI(svc, cfg)).Methods(http.MethodGet)
	r.Handle("/api/v1/search", makeSearchAPI(svc)).Methods(http.MethodGet)
	r.Handle("/static/{name}", makeAsset(store)).Methods(http.MethodGet)
	r.Handle("/healthz", makeHealth()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
}

// TemplateInput is everything the dashboard template needs, preformatted.
type TemplateInput struct {
	Title     string
	Location  string
	TimeZone  string
	MapsURL   string
	Days      []DayView
	Windows   []WindowView
	SafeHours int
	Error     string
}

// DayView is one day of the forecast: its chart and safe periods.
type DayView struct {
	Date      string
	TideChart template.HTML
	Periods   []PeriodView
}

type PeriodView struct {
	Day  string
	From string
	To   string
}

type WindowView struct {
	From   string
	To     string
	Reason string
}

func makeIndex(svc *forecast.Service, cfg *config.Config) http.Handler {
	indexTemplate := template.Must(template.ParseFS(content, "templates/index.template.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := forecast.WeekendStart(time.Now())
		if str := r.FormValue("start"); str != "" {
			parsed, err := time.ParseInLocation("2006-01-02", str, time.Local)
			if err != nil {
				log.Warn().Str("start", str).Msg("Ignoring unparseable start date")
			} else {
				start = parsed
			}
		}

		tinput := TemplateInput{
			Title:     "Tread Lightly",
			SafeHours: int(cfg.GetSafeMargin().Hours()),
		}

		result, err := svc.GetForecast(r.Context(), cfg.LocationID, start, cfg.ForecastDays)
		if err != nil {
			// The page still renders; the forecast section becomes a banner.
			tinput.Error = userMessage(err)
			metrics.CountProviderError(errorKind(err))
			log.Error().Err(err).Msg("Error getting forecast for page")
		} else {
			fillTemplateInput(&tinput, result)
		}

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := indexTemplate.Execute(w, tinput); err != nil {
			log.Error().Err(err).Msg("Failed to execute index template")
		}
	})
}

func fillTemplateInput(tinput *TemplateInput, result *models.Forecast) {
	tinput.Location = fmt.Sprintf("%s, %s, %s", result.Location.Name, result.Location.Region, result.Location.State)
	tinput.TimeZone = result.Location.TimeZone
	tinput.MapsURL = fmt.Sprintf(
		"https://www.google.com/maps/@?api=1&map_action=map&zoom=14&basemap=terrain&center=%f%%2C%f",
		result.Location.Latitude, result.Location.Longitude)

	chart := visualize.New(result)
	for i := 0; i < result.Days; i++ {
		date := result.Start.AddDate(0, 0, i)
		day := DayView{
			Date:      date.Format(dayFormat),
			TideChart: renderChart(chart, date),
		}
		for _, period := range result.SafePeriods {
			if !sameDay(period.LowTide, date) {
				continue
			}
			day.Periods = append(day.Periods, PeriodView{
				Day:  period.LowTide.Format(dayFormat),
				From: period.From.Format(clockFormat),
				To:   period.To.Format(clockFormat),
			})
		}
		tinput.Days = append(tinput.Days, day)
	}

	for _, window := range result.AvoidWindows {
		reason := "high tide"
		if window.Reason == models.ReasonNestingSeason {
			reason = "turtle nesting"
		}
		tinput.Windows = append(tinput.Windows, WindowView{
			From:   window.Start.Format(dayFormat + " " + clockFormat),
			To:     window.End.Format(dayFormat + " " + clockFormat),
			Reason: reason,
		})
	}
}

func renderChart(chart *visualize.Chart, date time.Time) template.HTML {
	chart.SetDate(date)
	var b bytes.Buffer
	if _, err := chart.Encode(&b); err != nil {
		log.Error().Err(err).Msg("Failed to render tide chart")
		return ""
	}
	return template.HTML(b.String())
}

func makeForecastAPI(svc *forecast.Service, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := api.ParseForecastParams(queryParams(r), time.Local)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
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

		result, err := svc.GetForecast(r.Context(), params.LocationID, params.Start, params.Days)
		if err != nil {
			metrics.CountProviderError(errorKind(err))
			log.Error().Err(err).Msg("Error getting forecast for API")
			writeJSONError(w, userMessage(err), statusFor(err))
			return
		}

		writeJSON(w, api.NewForecastResponse(result))
	})
}

func makeSearchAPI(svc *forecast.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.FormValue("query")
		if query == "" {
			writeJSONError(w, "missing query parameter", http.StatusBadRequest)
			return
		}

		matches, err := svc.Search(r.Context(), query)
		if err != nil {
			metrics.CountProviderError(errorKind(err))
			log.Error().Err(err).Msg("Error searching locations")
			writeJSONError(w, userMessage(err), statusFor(err))
			return
		}

		writeJSON(w, api.NewSearchResponse(matches))
	})
}

func makeAsset(store *assets.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		data, contentType, err := store.Get(r.Context(), name)
		if err != nil {
			var notFound *assets.NotFoundError
			if errors.As(err, &notFound) {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Add("Content-Type", contentType)
		w.Header().Add("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Error().Err(err).Str("asset", name).Msg("Failed writing asset")
		}
	})
}

func makeHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(api.NewErrorResponse(message)); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON error")
	}
}

func queryParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
