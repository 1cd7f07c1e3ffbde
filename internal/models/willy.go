package models

// Raw Willy Weather v2 API response shapes. Date-times are strings in the
// location's own time zone ("2006-01-02 15:04:05"); the client parses them
// once the zone is known.

type WillyLocation struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Region   string  `json:"region"`
	State    string  `json:"state"`
	TimeZone string  `json:"timeZone"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type WillyTideEntry struct {
	DateTime string  `json:"dateTime"`
	Height   float64 `json:"height"`
	Type     string  `json:"type"` // "high" or "low"
}

type WillyTideDay struct {
	DateTime string           `json:"dateTime"`
	Entries  []WillyTideEntry `json:"entries"`
}

type WillyTides struct {
	Days  []WillyTideDay `json:"days"`
	Units struct {
		Height string `json:"height"`
	} `json:"units"`
}

type WillySunEntry struct {
	FirstLightDateTime string `json:"firstLightDateTime"`
	RiseDateTime       string `json:"riseDateTime"`
	SetDateTime        string `json:"setDateTime"`
	LastLightDateTime  string `json:"lastLightDateTime"`
}

type WillySunDay struct {
	DateTime string          `json:"dateTime"`
	Entries  []WillySunEntry `json:"entries"`
}

type WillySun struct {
	Days []WillySunDay `json:"days"`
}

type WillyWeatherResponse struct {
	Location  WillyLocation `json:"location"`
	Forecasts struct {
		Tides         *WillyTides `json:"tides"`
		SunriseSunset *WillySun   `json:"sunrisesunset"`
	} `json:"forecasts"`
}

type WillySearchResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}
