package models

import "time"

type TideKind string

const (
	TideKindHigh TideKind = "HIGH"
	TideKindLow  TideKind = "LOW"
)

// TideEvent is a single predicted high or low tide at the station.
type TideEvent struct {
	Time   time.Time `json:"time"`
	Kind   TideKind  `json:"kind"`
	Height float64   `json:"height"` // metres above datum
}

// TidePoint is an interpolated height on the tide curve between two events.
type TidePoint struct {
	Time   time.Time `json:"time"`
	Height float64   `json:"height"`
}

type WindowReason string

const (
	ReasonHighTide      WindowReason = "HIGH_TIDE"
	ReasonNestingSeason WindowReason = "NESTING_SEASON"
)

// AvoidWindow is an interval during which beach driving is discouraged.
type AvoidWindow struct {
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Reason WindowReason `json:"reason"`
}

// Contains reports whether t falls inside the window, endpoints included.
func (w AvoidWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether two windows share any instant.
func (w AvoidWindow) Overlaps(other AvoidWindow) bool {
	return !w.Start.After(other.End) && !other.Start.After(w.End)
}

// SafePeriod is the turtle-friendly driving period around one low tide,
// clamped to daylight.
type SafePeriod struct {
	LowTide time.Time `json:"lowTide"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// SunDay holds first and last light for one calendar day at the station.
type SunDay struct {
	Dawn time.Time `json:"dawn"`
	Dusk time.Time `json:"dusk"`
}

// TideForecast is the raw bundle returned by the data provider: tide
// extremes and sun times for a location, events sorted ascending by time.
type TideForecast struct {
	Location Location    `json:"location"`
	Events   []TideEvent `json:"events"`
	Sun      []SunDay    `json:"sun"`
	Units    string      `json:"units"`
}

// Forecast is the derived view served to clients: provider data plus the
// computed avoid windows, safe periods and interpolated curve. It exists
// only for the duration of one render cycle (or its cache TTL).
type Forecast struct {
	Location     Location      `json:"location"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	Start        time.Time     `json:"start"`
	Days         int           `json:"days"`
	Events       []TideEvent   `json:"events"`
	Sun          []SunDay      `json:"sun"`
	AvoidWindows []AvoidWindow `json:"avoidWindows"`
	SafePeriods  []SafePeriod  `json:"safePeriods"`
	Curve        []TidePoint   `json:"curve,omitempty"`
}

// HighTideCount returns the number of HIGH events in the forecast.
func (f *Forecast) HighTideCount() int {
	n := 0
	for _, e := range f.Events {
		if e.Kind == TideKindHigh {
			n++
		}
	}
	return n
}
