// Package safety derives beach-driving guidance from tide and sun data:
// which periods to avoid and which are turtle-friendly.
package safety

import (
	"time"

	"github.com/quantoid/tides/internal/models"
)

const periodGrain = 5 * time.Minute

// ComputeAvoidWindows maps tide events onto avoid-driving windows. Each HIGH
// event at time t yields one window [t-before, t+after] with reason
// HIGH_TIDE; LOW events yield nothing. Events must be sorted ascending by
// time or the call fails with an UnsortedEventsError. Windows from
// consecutive high tides may overlap and are never merged; the display
// decides how to draw them. An empty input yields an empty result.
func ComputeAvoidWindows(events []models.TideEvent, before, after time.Duration) ([]models.AvoidWindow, error) {
	windows := make([]models.AvoidWindow, 0, len(events)/2+1)
	for i, e := range events {
		if i > 0 && e.Time.Before(events[i-1].Time) {
			return nil, NewUnsortedEventsError(i)
		}
		if e.Kind != models.TideKindHigh {
			continue
		}
		windows = append(windows, models.AvoidWindow{
			Start:  e.Time.Add(-before),
			End:    e.Time.Add(after),
			Reason: models.ReasonHighTide,
		})
	}
	return windows, nil
}

// NestingSeason is a recurring span of the year, possibly wrapping the year
// boundary, during which turtles nest and hatch on the beach.
type NestingSeason struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// DefaultNestingSeason covers November through March, when loggerhead
// mothers and hatchlings are on the beach.
func DefaultNestingSeason() NestingSeason {
	return NestingSeason{
		StartMonth: time.November,
		StartDay:   1,
		EndMonth:   time.March,
		EndDay:     31,
	}
}

// Contains reports whether t's calendar date falls inside the season.
func (s NestingSeason) Contains(t time.Time) bool {
	day := int(t.Month())*100 + t.Day()
	start := int(s.StartMonth)*100 + s.StartDay
	end := int(s.EndMonth)*100 + s.EndDay
	if start <= end {
		return day >= start && day <= end
	}
	// Season wraps the year boundary, e.g. November to March.
	return day >= start || day <= end
}

// Windows returns one NESTING_SEASON avoid window for each night (dusk to
// the following dawn) that begins inside the season. The sun days must be
// consecutive; the final day has no following dawn and yields no window.
// These windows are layered on top of tide windows, never merged with them.
func (s NestingSeason) Windows(sun []models.SunDay) []models.AvoidWindow {
	var windows []models.AvoidWindow
	for i := 0; i+1 < len(sun); i++ {
		dusk := sun[i].Dusk
		if !s.Contains(dusk) {
			continue
		}
		windows = append(windows, models.AvoidWindow{
			Start:  dusk,
			End:    sun[i+1].Dawn,
			Reason: models.ReasonNestingSeason,
		})
	}
	return windows
}

// SafePeriods finds the turtle-friendly driving period around each low
// tide: margin either side of the low, clamped to that day's daylight, with
// the start rounded up and the end rounded down to five minutes. Periods
// that round away to nothing are dropped.
func SafePeriods(events []models.TideEvent, sun []models.SunDay, margin time.Duration) []models.SafePeriod {
	var periods []models.SafePeriod
	for _, e := range events {
		if e.Kind != models.TideKindLow {
			continue
		}
		day, ok := sunDayFor(sun, e.Time)
		if !ok {
			continue
		}
		from := e.Time.Add(-margin)
		if from.Before(day.Dawn) {
			from = day.Dawn
		}
		to := e.Time.Add(margin)
		if to.After(day.Dusk) {
			to = day.Dusk
		}
		from = roundUp(from, periodGrain)
		to = roundDown(to, periodGrain)
		if !from.Before(to) {
			continue
		}
		periods = append(periods, models.SafePeriod{
			LowTide: e.Time,
			From:    from,
			To:      to,
		})
	}
	return periods
}

func sunDayFor(sun []models.SunDay, t time.Time) (models.SunDay, bool) {
	for _, d := range sun {
		if sameDay(d.Dawn, t) {
			return d, true
		}
	}
	return models.SunDay{}, false
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func roundDown(t time.Time, grain time.Duration) time.Time {
	return t.Truncate(grain)
}

func roundUp(t time.Time, grain time.Duration) time.Time {
	down := t.Truncate(grain)
	if down.Equal(t) {
		return t
	}
	return down.Add(grain)
}
