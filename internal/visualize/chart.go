// Package visualize renders the daily tide chart as inline SVG: tide curve,
// daylight band, avoid windows in red and safe periods in green.
package visualize

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/quantoid/tides/internal/models"
	"github.com/quantoid/tides/internal/safety"
)

const (
	width  = 1200
	height = 300

	// Vertical scale tops out above the highest spring tides on the island.
	maxTideHeight = 3.0 // metres

	sampleStep = 10 * time.Minute
)

// Colours match the published chart.
const (
	colourNight = "#d1d3ea"
	colourSafe  = "#30a639"
	colourAvoid = "#c0141b"
	colourWater = "#bcdaf2"
	colourDays  = "#767676"
)

// Chart draws one calendar day of a forecast.
type Chart struct {
	date     time.Time
	forecast *models.Forecast
}

func New(forecast *models.Forecast) *Chart {
	return &Chart{forecast: forecast}
}

// SetDate selects the day to draw; the clock portion is discarded.
func (c *Chart) SetDate(t time.Time) {
	c.date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Encode writes the SVG for the selected day.
func (c *Chart) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	out := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil {
			err = nexterr
		}
	}

	dayEnd := c.date.AddDate(0, 0, 1)

	out(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height))

	// Night background with a daylight cut-out.
	out(fmt.Fprintf(w, `<rect class="night" fill="%s" x="0" y="0" width="%d" height="%d"/>`,
		colourNight, width, height))
	if day, ok := c.sunDay(); ok {
		risex := c.timeToX(day.Dawn)
		setx := c.timeToX(day.Dusk)
		out(fmt.Fprintf(w, `<rect class="daytime" fill="white" x="%d" y="0" width="%d" height="%d"/>`,
			risex, setx-risex, height))
	}

	// Tide area, sampled along the interpolated curve.
	out(fmt.Fprintf(w, `<path class="tide" fill="%s" fill-opacity="0.6" d="M 0,%d `, colourWater, height))
	for t := c.date; !t.After(dayEnd); t = t.Add(sampleStep) {
		out(fmt.Fprintf(w, `L %d,%d `, c.timeToX(t), heightToY(safety.HeightAt(c.forecast.Events, t))))
	}
	out(fmt.Fprintf(w, `L %d,%d z"/>`, width, height))

	// Avoid windows shade the affected hours.
	for _, window := range c.forecast.AvoidWindows {
		x1, x2, ok := c.clipToDay(window.Start, window.End)
		if !ok {
			continue
		}
		out(fmt.Fprintf(w, `<rect class="avoid" fill="%s" fill-opacity="0.25" x="%d" y="0" width="%d" height="%d"/>`,
			colourAvoid, x1, x2-x1, height))
	}

	// Safe periods get a bar along the bottom and a time-range hint.
	for _, period := range c.forecast.SafePeriods {
		x1, x2, ok := c.clipToDay(period.From, period.To)
		if !ok {
			continue
		}
		out(fmt.Fprintf(w, `<rect class="safe" fill="%s" x="%d" y="%d" width="%d" height="6"/>`,
			colourSafe, x1, height-10, x2-x1))
		if period.LowTide.After(c.date) && period.LowTide.Before(dayEnd) {
			out(fmt.Fprintf(w, `<text class="hint" fill="%s" font-size="16" x="%d" y="%d">&#10003; %s - %s</text>`,
				colourSafe,
				c.timeToX(period.LowTide),
				heightToY(safety.HeightAt(c.forecast.Events, period.LowTide))-8,
				clockLabel(period.From), clockLabel(period.To)))
		}
	}

	// Day label at noon.
	out(fmt.Fprintf(w, `<text class="day" fill="%s" font-size="16" x="%d" y="20">%s</text>`,
		colourDays, width/2-40, c.date.Format("Mon 02 Jan")))

	out(fmt.Fprintf(w, `</svg>`))

	return n, err
}

func (c *Chart) sunDay() (models.SunDay, bool) {
	for _, d := range c.forecast.Sun {
		if d.Dawn.Year() == c.date.Year() && d.Dawn.YearDay() == c.date.YearDay() {
			return d, true
		}
	}
	return models.SunDay{}, false
}

// clipToDay maps an interval to chart coordinates, clipped to the selected
// day. Returns false when the interval misses the day entirely.
func (c *Chart) clipToDay(start, end time.Time) (int, int, bool) {
	dayEnd := c.date.AddDate(0, 0, 1)
	if !end.After(c.date) || !start.Before(dayEnd) {
		return 0, 0, false
	}
	if start.Before(c.date) {
		start = c.date
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	return c.timeToX(start), c.timeToX(end), true
}

func (c *Chart) timeToX(t time.Time) int {
	return int(t.Unix()-c.date.Unix()) * width / (60 * 60 * 24)
}

func heightToY(h float64) int {
	y := height - int(h/maxTideHeight*float64(height))
	if y < 0 {
		y = 0
	}
	if y > height {
		y = height
	}
	return y
}

func clockLabel(t time.Time) string {
	return strings.ToLower(strings.TrimPrefix(t.Format("3:04pm"), "0"))
}
