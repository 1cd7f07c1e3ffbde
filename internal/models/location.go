package models

type Source string

const (
	SourceWillyWeather Source = "WILLY_WEATHER"
)

// Location describes a Willy Weather tide location.
type Location struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	State     string  `json:"state,omitempty"`
	TimeZone  string  `json:"timeZone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    Source  `json:"source"`
}

// LocationMatch is one result from a location search.
type LocationMatch struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Region   string `json:"region,omitempty"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}
