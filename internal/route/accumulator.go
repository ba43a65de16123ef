// Package route turns a stream of noisy location samples into an
// accumulated distance, rolling pace and the retained route geometry.
package route

import (
	"time"

	"backend-runaway/internal/geo"
)

// Sample is one fix from the location provider. SpeedMps below zero means
// the provider did not report a speed.
type Sample struct {
	Coord     geo.Coordinate `json:"coord"`
	AccuracyM float64        `json:"accuracy_m"`
	SpeedMps  float64        `json:"speed_mps"`
	At        time.Time      `json:"at"`
}

// Point is a retained, filtered sample forming the persisted route.
type Point struct {
	Coord geo.Coordinate `json:"coord"`
	At    time.Time      `json:"at"`
}

type Metrics struct {
	TotalDistanceM      float64 `json:"total_distance_m"`
	ActiveSeconds       float64 `json:"active_seconds"`
	CurrentSpeedMps     float64 `json:"current_speed_mps"`
	CurrentPaceSecPerKm float64 `json:"current_pace_sec_per_km"`
	AvgSpeedMps         float64 `json:"avg_speed_mps"`
	AvgPaceSecPerKm     float64 `json:"avg_pace_sec_per_km"`
	PointCount          int     `json:"point_count"`
}

// Options holds the noise-rejection tuning. The defaults live in config,
// not here, so hosts decide the product values.
type Options struct {
	MaxAccuracyM float64
	MaxSpeedMps  float64
	SpeedWindow  int
}

// Accumulator is single-owner state: the recorder serializes all calls.
type Accumulator struct {
	opts Options
	now  func() time.Time

	points      []Point
	totalM      float64
	active      time.Duration
	activeSince time.Time

	// windowFrom marks the first point after the latest resume, so the
	// current-speed window never spans a paused gap.
	windowFrom int
}

func NewAccumulator(opts Options, now func() time.Time) *Accumulator {
	if now == nil {
		now = time.Now
	}
	if opts.SpeedWindow < 2 {
		opts.SpeedWindow = 2
	}
	a := &Accumulator{opts: opts, now: now}
	a.activeSince = now()
	return a
}

// Ingest filters the sample and, when accepted, extends the route and the
// total distance. Rejection is silent: noisy fixes are not errors.
func (a *Accumulator) Ingest(s Sample) bool {
	if !s.Coord.Valid() {
		return false
	}
	if s.AccuracyM > a.opts.MaxAccuracyM {
		return false
	}

	if len(a.points) > 0 {
		last := a.points[len(a.points)-1]
		if !s.At.After(last.At) {
			return false
		}
		if !geo.Plausible(last.Coord, last.At, s.Coord, s.At, a.opts.MaxSpeedMps) {
			return false
		}
		a.totalM += geo.HaversineM(last.Coord, s.Coord)
	}

	a.points = append(a.points, Point{Coord: s.Coord, At: s.At})
	return true
}

// Pause stops the active-time clock. The recorder calls this on both
// manual and automatic pause boundaries.
func (a *Accumulator) Pause() {
	if a.activeSince.IsZero() {
		return
	}
	a.active += a.now().Sub(a.activeSince)
	a.activeSince = time.Time{}
}

func (a *Accumulator) Resume() {
	if !a.activeSince.IsZero() {
		return
	}
	a.activeSince = a.now()
	a.windowFrom = len(a.points)
}

func (a *Accumulator) Reset() {
	a.points = nil
	a.totalM = 0
	a.active = 0
	a.activeSince = a.now()
	a.windowFrom = 0
}

func (a *Accumulator) Points() []Point {
	out := make([]Point, len(a.points))
	copy(out, a.points)
	return out
}

func (a *Accumulator) Coordinates() []geo.Coordinate {
	out := make([]geo.Coordinate, len(a.points))
	for i, p := range a.points {
		out[i] = p.Coord
	}
	return out
}

func (a *Accumulator) LastPoint() (Point, bool) {
	if len(a.points) == 0 {
		return Point{}, false
	}
	return a.points[len(a.points)-1], true
}

func (a *Accumulator) activeSeconds() float64 {
	active := a.active
	if !a.activeSince.IsZero() {
		active += a.now().Sub(a.activeSince)
	}
	return active.Seconds()
}

// Metrics recomputes the derived numbers on demand. Current speed is
// averaged over the trailing SpeedWindow accepted points to damp jitter.
func (a *Accumulator) Metrics() Metrics {
	m := Metrics{
		TotalDistanceM: a.totalM,
		ActiveSeconds:  a.activeSeconds(),
		PointCount:     len(a.points),
	}

	if m.ActiveSeconds > 0 {
		m.AvgSpeedMps = m.TotalDistanceM / m.ActiveSeconds
	}
	m.AvgPaceSecPerKm = paceSecPerKm(m.AvgSpeedMps)

	m.CurrentSpeedMps = a.windowSpeed()
	m.CurrentPaceSecPerKm = paceSecPerKm(m.CurrentSpeedMps)

	return m
}

func (a *Accumulator) windowSpeed() float64 {
	window := a.points[a.windowFrom:]
	if len(window) > a.opts.SpeedWindow {
		window = window[len(window)-a.opts.SpeedWindow:]
	}
	if len(window) < 2 {
		return 0
	}

	var dist float64
	for i := 1; i < len(window); i++ {
		dist += geo.HaversineM(window[i-1].Coord, window[i].Coord)
	}
	span := window[len(window)-1].At.Sub(window[0].At).Seconds()
	if span <= 0 {
		return 0
	}
	return dist / span
}

func paceSecPerKm(speedMps float64) float64 {
	if speedMps <= 0 {
		return 0
	}
	return 1000 / speedMps
}
