package autopause

import (
	"testing"
	"time"
)

var testOpts = Options{PauseBelowMps: 0.5, ResumeAboveMps: 1.5, Debounce: 5 * time.Second}

func TestPauseRequiresSustainedLowSpeed(t *testing.T) {
	d := NewDetector(testOpts)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// One slow sample is not enough.
	if sig := d.Observe(0.1, at); sig != SignalNone {
		t.Fatalf("expected no signal on first slow sample")
	}
	if sig := d.Observe(0.1, at.Add(2*time.Second)); sig != SignalNone {
		t.Fatalf("expected no signal inside debounce window")
	}
	if sig := d.Observe(0.1, at.Add(5*time.Second)); sig != SignalPause {
		t.Fatalf("expected pause after debounce")
	}
	if d.State() != StateAutoPaused {
		t.Fatalf("expected autopaused state")
	}
}

func TestFastSampleResetsDebounce(t *testing.T) {
	d := NewDetector(testOpts)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	d.Observe(0.1, at)
	d.Observe(3, at.Add(3*time.Second))

	// The slow streak restarts, so 4 more seconds of crawling stay silent.
	if sig := d.Observe(0.1, at.Add(4*time.Second)); sig != SignalNone {
		t.Fatalf("expected debounce restart")
	}
	if sig := d.Observe(0.1, at.Add(8*time.Second)); sig != SignalNone {
		t.Fatalf("expected no pause before new debounce elapses")
	}
	if sig := d.Observe(0.1, at.Add(9*time.Second)); sig != SignalPause {
		t.Fatalf("expected pause once new streak reaches debounce")
	}
}

func TestResumeOnThresholdCross(t *testing.T) {
	d := NewDetector(testOpts)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	d.Observe(0.1, at)
	d.Observe(0.1, at.Add(5*time.Second))

	if sig := d.Observe(3, at.Add(6*time.Second)); sig != SignalResume {
		t.Fatalf("expected resume above threshold")
	}
	if d.State() != StateActive {
		t.Fatalf("expected active state")
	}
}

func TestHysteresisNeverToggles(t *testing.T) {
	d := NewDetector(testOpts)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// Latch into autopause.
	d.Observe(0.1, at)
	if sig := d.Observe(0.1, at.Add(5*time.Second)); sig != SignalPause {
		t.Fatalf("expected pause")
	}

	// Oscillate inside the hysteresis band: above the pause threshold,
	// never above the resume threshold. The detector must stay latched.
	for i := 0; i < 20; i++ {
		speed := 0.6
		if i%2 == 0 {
			speed = 1.4
		}
		if sig := d.Observe(speed, at.Add(time.Duration(6+i)*time.Second)); sig != SignalNone {
			t.Fatalf("unexpected signal %v at step %d", sig, i)
		}
		if d.State() != StateAutoPaused {
			t.Fatalf("detector toggled at step %d", i)
		}
	}

	if sig := d.Observe(1.6, at.Add(30*time.Second)); sig != SignalResume {
		t.Fatalf("expected resume once threshold is actually crossed")
	}
}

func TestReset(t *testing.T) {
	d := NewDetector(testOpts)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	d.Observe(0.1, at)
	d.Observe(0.1, at.Add(5*time.Second))
	d.Reset()

	if d.State() != StateActive {
		t.Fatalf("expected active after reset")
	}
	if sig := d.Observe(0.1, at.Add(6*time.Second)); sig != SignalNone {
		t.Fatalf("expected fresh debounce after reset")
	}
}
