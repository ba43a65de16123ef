// Package autopause watches instantaneous speed and signals when a
// recording should pause or resume without user input.
package autopause

import "time"

type Signal int

const (
	SignalNone Signal = iota
	SignalPause
	SignalResume
)

type State int

const (
	StateActive State = iota
	StateAutoPaused
)

// Options carries the hysteresis band. ResumeAboveMps must sit above
// PauseBelowMps so borderline speeds cannot toggle the detector.
type Options struct {
	PauseBelowMps  float64
	ResumeAboveMps float64
	Debounce       time.Duration
}

// Detector is a two-state machine. It only signals transitions; the
// recorder decides whether to apply them.
type Detector struct {
	opts Options

	state     State
	slowSince time.Time
}

func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts}
}

func (d *Detector) State() State { return d.state }

// Observe feeds one speed reading. A pause is only signaled after the
// speed has stayed under the threshold for the full debounce window; a
// resume fires as soon as the resume threshold is crossed.
func (d *Detector) Observe(speedMps float64, at time.Time) Signal {
	switch d.state {
	case StateActive:
		if speedMps >= d.opts.PauseBelowMps {
			d.slowSince = time.Time{}
			return SignalNone
		}
		if d.slowSince.IsZero() {
			d.slowSince = at
			return SignalNone
		}
		if at.Sub(d.slowSince) >= d.opts.Debounce {
			d.state = StateAutoPaused
			d.slowSince = time.Time{}
			return SignalPause
		}
		return SignalNone

	case StateAutoPaused:
		if speedMps > d.opts.ResumeAboveMps {
			d.state = StateActive
			return SignalResume
		}
		return SignalNone
	}

	return SignalNone
}

// Reset returns the detector to active with no pending debounce. The
// recorder calls it on session start and on manual resume.
func (d *Detector) Reset() {
	d.state = StateActive
	d.slowSince = time.Time{}
}
