package recording

import (
	"time"

	"backend-runaway/internal/route"
)

type State string

const (
	StateIdle           State = "idle"
	StateRecording      State = "recording"
	StateManuallyPaused State = "manually_paused"
	StateAutoPaused     State = "auto_paused"
	StateStopped        State = "stopped"
)

// Session is one recording lifecycle. Only the Recorder mutates it; once
// saved or discarded it is handed off and never touched again.
type Session struct {
	ID           string    `json:"id"`
	ActivityType string    `json:"activity_type"`
	Name         string    `json:"name"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	State        State     `json:"state"`
}

// Snapshot is what status queries and the live stream see.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	State     State         `json:"state"`
	Metrics   route.Metrics `json:"metrics"`
}

// Activity is the finalized result handed to the persistence collaborator.
type Activity struct {
	Session  Session       `json:"session"`
	Metrics  route.Metrics `json:"metrics"`
	Points   []route.Point `json:"points"`
	Polyline string        `json:"polyline"`
}
