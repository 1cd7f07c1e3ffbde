package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/quantoid/tides/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type ForecastResponse struct {
	APIResponse
	Forecast *models.Forecast `json:"forecast"`
}

type SearchResponse struct {
	APIResponse
	Matches []models.LocationMatch `json:"matches"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewForecastResponse(forecast *models.Forecast) *ForecastResponse {
	return &ForecastResponse{
		APIResponse: APIResponse{ResponseType: "forecast"},
		Forecast:    forecast,
	}
}

func NewSearchResponse(matches []models.LocationMatch) *SearchResponse {
	return &SearchResponse{
		APIResponse: APIResponse{ResponseType: "search"},
		Matches:     matches,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// Response helpers for the API Gateway entrypoint.
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}

// ForecastParams are the query parameters accepted by the forecast API.
// Zero values mean the caller's defaults apply.
type ForecastParams struct {
	LocationID int
	Start      time.Time
	Days       int
}

// ParseForecastParams reads locationId, startDate (YYYY-MM-DD, in the given
// zone) and days from query parameters.
func ParseForecastParams(params map[string]string, location *time.Location) (ForecastParams, error) {
	var parsed ForecastParams

	if str, ok := params["locationId"]; ok {
		id, err := strconv.Atoi(str)
		if err != nil || id <= 0 {
			return parsed, InvalidParamError{Name: "locationId", Value: str}
		}
		parsed.LocationID = id
	}

	if str, ok := params["startDate"]; ok {
		start, err := time.ParseInLocation("2006-01-02", str, location)
		if err != nil {
			return parsed, InvalidParamError{Name: "startDate", Value: str}
		}
		parsed.Start = start
	}

	if str, ok := params["days"]; ok {
		days, err := strconv.Atoi(str)
		if err != nil || days < 1 || days > 14 {
			return parsed, InvalidParamError{Name: "days", Value: str}
		}
		parsed.Days = days
	}

	return parsed, nil
}

type InvalidParamError struct {
	Name  string
	Value string
}

func (e InvalidParamError) Error() string {
	return "invalid " + e.Name + ": " + e.Value
}
