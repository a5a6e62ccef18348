// Package attach carries metadata for voice notes and video walkthroughs
// attached to a review session. Media capture and upload happen outside
// this module; only the descriptive records flow through here.
package attach

import (
	"sync"
	"time"

	"proofmark/internal/scene"
)

// MaxVoiceSeconds caps voice note length.
const MaxVoiceSeconds = 120

// VoiceNote is a recorded spoken comment, optionally anchored to a pin.
type VoiceNote struct {
	ID              string         `json:"id"`
	PinID           string         `json:"pin_id,omitempty"`
	Layer           scene.LayerKey `json:"layer"`
	AudioURL        string         `json:"audio_url"`
	Transcript      string         `json:"transcript,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Walkthrough is a recorded video tour of the proof.
type Walkthrough struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	VideoURL        string    `json:"video_url"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordingTimer tracks an in-progress recording and enforces the voice
// length cap. Stop is idempotent so UI teardown paths can always call it.
type RecordingTimer struct {
	mu       sync.Mutex
	started  time.Time
	limit    time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopped  bool
	onTick   func(elapsed time.Duration)
	onExpire func()
}

// NewRecordingTimer creates a timer that ticks once per second and calls
// onExpire when the limit elapses. Either callback may be nil.
func NewRecordingTimer(limit time.Duration, onTick func(time.Duration), onExpire func()) *RecordingTimer {
	return &RecordingTimer{
		limit:    limit,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start begins the countdown. Calling Start on a running timer is a no-op.
func (r *RecordingTimer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker != nil {
		return
	}
	r.started = time.Now()
	r.stopped = false
	r.ticker = time.NewTicker(time.Second)
	r.done = make(chan struct{})

	go func(ticker *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				elapsed := r.Elapsed()
				if r.onTick != nil {
					r.onTick(elapsed)
				}
				if r.limit > 0 && elapsed >= r.limit {
					r.Stop()
					if r.onExpire != nil {
						r.onExpire()
					}
					return
				}
			}
		}
	}(r.ticker, r.done)
}

// Stop halts the countdown. Safe to call multiple times.
func (r *RecordingTimer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.ticker == nil {
		r.stopped = true
		return
	}
	r.ticker.Stop()
	close(r.done)
	r.ticker = nil
	r.stopped = true
}

// Elapsed returns how long the recording has been running.
func (r *RecordingTimer) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.IsZero() {
		return 0
	}
	return time.Since(r.started)
}

// Running reports whether the timer is active.
func (r *RecordingTimer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticker != nil && !r.stopped
}
