package safety

import (
	"math"
	"sort"
	"time"

	"github.com/quantoid/tides/internal/models"
)

// HeightAt estimates the water height at time t from the surrounding tide
// events using the standard cosine rule for heights between high and low
// waters. Outside the covered range it clamps to the nearest event.
func HeightAt(events []models.TideEvent, t time.Time) float64 {
	if len(events) == 0 {
		return 0
	}
	idx := sort.Search(len(events), func(i int) bool {
		return !events[i].Time.Before(t)
	})
	if idx <= 0 {
		return events[0].Height
	}
	if idx >= len(events) {
		return events[len(events)-1].Height
	}
	return heightBetween(t, events[idx-1], events[idx])
}

// Curve samples the tide height between the first and last event at the
// given step, returning a smooth series for charting. Events must be sorted;
// a step of zero defaults to one minute.
func Curve(events []models.TideEvent, step time.Duration) []models.TidePoint {
	if len(events) < 2 {
		return nil
	}
	if step <= 0 {
		step = time.Minute
	}
	first, last := events[0].Time, events[len(events)-1].Time
	points := make([]models.TidePoint, 0, int(last.Sub(first)/step)+1)
	for t := first; !t.After(last); t = t.Add(step) {
		points = append(points, models.TidePoint{
			Time:   t,
			Height: HeightAt(events, t),
		})
	}
	return points
}

func heightBetween(t time.Time, e1, e2 models.TideEvent) float64 {
	span := e2.Time.Sub(e1.Time)
	if span <= 0 {
		return e1.Height
	}
	frac := float64(t.Sub(e1.Time)) / float64(span)
	a := math.Pi * (frac + 1)
	return e1.Height + (e2.Height-e1.Height)*((math.Cos(a)+1)/2)
}
