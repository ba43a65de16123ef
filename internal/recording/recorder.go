// Package recording owns the session state machine: it drives the route
// accumulator and autopause detector, guards every command with the
// current state, and hands finished activities to the persistence
// collaborator.
package recording

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"backend-runaway/internal/autopause"
	"backend-runaway/internal/geo"
	"backend-runaway/internal/metrics"
	"backend-runaway/internal/polyline"
	"backend-runaway/internal/route"
	"backend-runaway/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrProviderUnavailable = errors.New("location provider unavailable or not authorized")
	ErrSessionActive       = errors.New("a session is already active")
	ErrNoActiveSession     = errors.New("no active session")
	ErrAlreadyPaused       = errors.New("session already paused")
	ErrNotPaused           = errors.New("session is not paused")
	ErrNotStopped          = errors.New("session is not stopped")
	ErrUnknownCommand      = errors.New("unknown command")
)

// LocationProvider is the sensor collaborator. The recorder only asks it
// for authorization and to start or stop pushing samples.
type LocationProvider interface {
	Authorized() bool
	StartUpdates() error
	StopUpdates() error
}

// PushProvider stands in for devices that push fixes over the network:
// always authorized, nothing to start or stop locally.
type PushProvider struct{}

func (PushProvider) Authorized() bool    { return true }
func (PushProvider) StartUpdates() error { return nil }
func (PushProvider) StopUpdates() error  { return nil }

// Store is the persistence collaborator receiving finalized activities.
type Store interface {
	SaveActivity(ctx context.Context, a Activity) error
}

type Options struct {
	Route     route.Options
	Autopause autopause.Options

	// DefaultActivityType is used when a command arrives by name only
	// (voice assistants cannot fill a form).
	DefaultActivityType string
}

// Recorder is the single owner of one session, accumulator and detector.
// The mutex is the owner boundary: commands and ingestion from any
// goroutine serialize here, and the sub-components below it are never
// shared.
type Recorder struct {
	mu sync.Mutex

	opts     Options
	now      func() time.Time
	provider LocationProvider
	store    Store
	hub      *stream.Hub

	summaries *metrics.Cache[Snapshot]
	routes    *metrics.Cache[string]

	session *Session
	acc     *route.Accumulator
	det     *autopause.Detector
	frozen  *route.Metrics
}

func NewRecorder(opts Options, now func() time.Time, provider LocationProvider, store Store, hub *stream.Hub,
	summaries *metrics.Cache[Snapshot], routes *metrics.Cache[string]) *Recorder {
	if now == nil {
		now = time.Now
	}
	if opts.DefaultActivityType == "" {
		opts.DefaultActivityType = "Run"
	}
	return &Recorder{
		opts:      opts,
		now:       now,
		provider:  provider,
		store:     store,
		hub:       hub,
		summaries: summaries,
		routes:    routes,
	}
}

// Start begins a new session. Rejected when the provider is missing or
// unauthorized, or when a session is already in flight.
func (r *Recorder) Start(activityType, name string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.provider == nil || !r.provider.Authorized() {
		return Session{}, ErrProviderUnavailable
	}
	if r.session != nil {
		return Session{}, ErrSessionActive
	}
	if activityType == "" {
		activityType = r.opts.DefaultActivityType
	}

	if err := r.provider.StartUpdates(); err != nil {
		return Session{}, ErrProviderUnavailable
	}

	r.session = &Session{
		ID:           uuid.NewString(),
		ActivityType: activityType,
		Name:         name,
		StartedAt:    r.now(),
		State:        StateRecording,
	}
	r.acc = route.NewAccumulator(r.opts.Route, r.now)
	r.det = autopause.NewDetector(r.opts.Autopause)
	r.frozen = nil

	r.broadcastLocked()
	return *r.session, nil
}

// Pause is the manual pause. From autopause it records explicit user
// intent: the clock is already stopped, only the state changes.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.stateLocked() {
	case StateRecording:
		r.acc.Pause()
	case StateAutoPaused:
		// clock already stopped
	case StateManuallyPaused:
		return ErrAlreadyPaused
	default:
		return ErrNoActiveSession
	}

	r.session.State = StateManuallyPaused
	r.broadcastLocked()
	return nil
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.stateLocked() {
	case StateManuallyPaused, StateAutoPaused:
		r.acc.Resume()
		r.det.Reset()
	case StateRecording:
		return ErrNotPaused
	default:
		return ErrNoActiveSession
	}

	r.session.State = StateRecording
	r.broadcastLocked()
	return nil
}

// Stop finalizes the session and freezes its metrics. The session stays
// resident until Save or Discard hands it off.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.stateLocked() {
	case StateRecording, StateManuallyPaused, StateAutoPaused:
	default:
		return ErrNoActiveSession
	}

	r.acc.Pause()
	_ = r.provider.StopUpdates()

	endedAt := r.now()
	r.session.EndedAt = &endedAt
	r.session.State = StateStopped
	m := r.acc.Metrics()
	r.frozen = &m

	r.broadcastLocked()
	return nil
}

// Save hands the stopped session to the store, caches the derived
// results, and releases the session.
func (r *Recorder) Save(ctx context.Context) (Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stateLocked() != StateStopped {
		return Activity{}, ErrNotStopped
	}

	activity := Activity{
		Session:  *r.session,
		Metrics:  *r.frozen,
		Points:   r.acc.Points(),
		Polyline: polyline.Encode(r.acc.Coordinates()),
	}

	if r.store != nil {
		if err := r.store.SaveActivity(ctx, activity); err != nil {
			return Activity{}, err
		}
	}

	if r.summaries != nil {
		snap := Snapshot{SessionID: activity.Session.ID, State: StateStopped, Metrics: activity.Metrics}
		_ = r.summaries.Set(ctx, metrics.Key{Kind: metrics.KindSummary, Fingerprint: activity.Session.ID}, snap)
	}
	if r.routes != nil {
		_ = r.routes.Set(ctx, metrics.Key{Kind: metrics.KindRoute, Fingerprint: activity.Session.ID}, activity.Polyline)
	}

	r.releaseLocked()
	return activity, nil
}

// Discard is the cancellation path: safe from any non-idle state, drops
// everything, persists nothing.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return ErrNoActiveSession
	}
	if r.session.State != StateStopped {
		_ = r.provider.StopUpdates()
	}

	r.releaseLocked()
	return nil
}

// Ingest feeds one location sample. Samples are silently dropped unless
// the session is recording or autopaused; a manual pause suppresses the
// detector entirely. The return value reports whether the sample was
// accepted into the route.
func (r *Recorder) Ingest(s route.Sample) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.stateLocked()
	if state != StateRecording && state != StateAutoPaused {
		return false
	}

	switch r.det.Observe(r.instantSpeedLocked(s), s.At) {
	case autopause.SignalPause:
		if state == StateRecording {
			r.acc.Pause()
			r.session.State = StateAutoPaused
			r.broadcastLocked()
		}
	case autopause.SignalResume:
		if state == StateAutoPaused {
			r.acc.Resume()
			r.session.State = StateRecording
			r.broadcastLocked()
		}
	}

	if r.session.State != StateRecording {
		return false
	}

	accepted := r.acc.Ingest(s)
	if accepted {
		r.broadcastLocked()
	}
	return accepted
}

// Dispatch executes a command by name, the surface voice assistants use.
func (r *Recorder) Dispatch(name string) error {
	switch name {
	case "start":
		_, err := r.Start("", "")
		return err
	case "stop":
		return r.Stop()
	case "pause":
		return r.Pause()
	case "resume":
		return r.Resume()
	default:
		return ErrUnknownCommand
	}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Recorder) Session() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// RoutePolyline returns the encoded route so far. Fewer than two points
// means there is no route worth drawing, reported as an empty string.
func (r *Recorder) RoutePolyline() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acc == nil {
		return ""
	}
	coords := r.acc.Coordinates()
	if len(coords) < 2 {
		return ""
	}
	return polyline.Encode(coords)
}

func (r *Recorder) stateLocked() State {
	if r.session == nil {
		return StateIdle
	}
	return r.session.State
}

// instantSpeedLocked prefers the provider's own speed reading and falls
// back to the speed implied by the last accepted point.
func (r *Recorder) instantSpeedLocked(s route.Sample) float64 {
	if s.SpeedMps >= 0 {
		return s.SpeedMps
	}
	last, ok := r.acc.LastPoint()
	if !ok {
		return 0
	}
	dt := s.At.Sub(last.At).Seconds()
	if dt <= 0 {
		return 0
	}
	return geo.HaversineM(last.Coord, s.Coord) / dt
}

func (r *Recorder) snapshotLocked() Snapshot {
	snap := Snapshot{State: r.stateLocked()}
	if r.session != nil {
		snap.SessionID = r.session.ID
	}
	if r.frozen != nil {
		snap.Metrics = *r.frozen
	} else if r.acc != nil {
		snap.Metrics = r.acc.Metrics()
	}
	return snap
}

func (r *Recorder) broadcastLocked() {
	if r.hub == nil || r.session == nil {
		return
	}
	payload, err := json.Marshal(r.snapshotLocked())
	if err != nil {
		return
	}
	r.hub.Broadcast(r.session.ID, payload)
}

func (r *Recorder) releaseLocked() {
	r.session = nil
	r.acc = nil
	r.det = nil
	r.frozen = nil
}
