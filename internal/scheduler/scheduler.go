// Package scheduler drives the cooperative poll and render loop. One
// goroutine owns all state; every action runs to completion before the next
// timer check.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrcode/nightscout-display/internal/display"
	"github.com/mrcode/nightscout-display/internal/models"
	"github.com/mrcode/nightscout-display/internal/state"
)

// Poll intervals and the tick cadence. Timers start at their zero value so
// every action is due on the first connected tick.
const (
	statusInterval = time.Hour
	dataInterval   = 30 * time.Second
	renderInterval = 10 * time.Second

	tickInterval = time.Second

	connectAttempts = 30
	connectDelay    = 500 * time.Millisecond
)

// Source is the server the loop polls.
type Source interface {
	GetStatus() (*models.ServerStatus, error)
	GetProperties() (*models.Properties, error)
}

// Link is the network connection the polls depend on.
type Link interface {
	// Up reports whether the server is currently reachable.
	Up() bool
	// Connect makes a single association attempt; the scheduler owns the
	// retry policy.
	Connect() error
}

// Renderer paints the current state to the display and LED.
type Renderer interface {
	Render(snap display.Snapshot) error
	ShowError(msg string)
}

// Alerter is notified of every newly accepted reading. May be nil.
type Alerter interface {
	ReadingAccepted(r state.Reading, th state.Thresholds)
}

// Scheduler owns the device state and the three poll timers.
type Scheduler struct {
	source   Source
	link     Link
	renderer Renderer
	alerter  Alerter

	thresholds state.Thresholds
	readings   state.ReadingStore

	lastStatus time.Time
	lastData   time.Time
	lastRender time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a scheduler with default thresholds. alerter may be nil.
func New(source Source, link Link, renderer Renderer, alerter Alerter) *Scheduler {
	return &Scheduler{
		source:     source,
		link:       link,
		renderer:   renderer,
		alerter:    alerter,
		thresholds: state.DefaultThresholds(),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Run drives ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	s.Tick()
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one pass of the loop: reconnect if the link is down, otherwise
// the due polls in fixed order, then the render. Poll timers advance only
// on success, so a failing endpoint is retried on every tick once due.
func (s *Scheduler) Tick() {
	now := s.now()

	if !s.link.Up() {
		if s.reconnect() {
			// Force both polls immediately regardless of their timers;
			// only the render waits for the next tick. A failed forced
			// poll leaves its timer zeroed, so the next tick retries.
			s.lastStatus = time.Time{}
			s.lastData = time.Time{}
			s.poll(now)
		}
		return
	}

	statusFailed, dataFailed := s.poll(now)

	if statusFailed || dataFailed {
		s.renderer.ShowError("server unreachable")
		return
	}

	if due(s.lastRender, renderInterval, now) {
		if err := s.renderer.Render(s.snapshot(now)); err != nil {
			slog.Warn("render failed", "err", err)
		}
		s.lastRender = now
	}
}

// poll runs the due polls in fixed order: status, then data. The failure
// flags are per call and never carry over between ticks.
func (s *Scheduler) poll(now time.Time) (statusFailed, dataFailed bool) {
	if due(s.lastStatus, statusInterval, now) {
		if err := s.pollStatus(); err != nil {
			statusFailed = true
			slog.Warn("status poll failed", "err", err)
		} else {
			s.lastStatus = now
		}
	}

	if due(s.lastData, dataInterval, now) {
		if err := s.pollData(now); err != nil {
			dataFailed = true
			slog.Warn("data poll failed", "err", err)
		} else {
			s.lastData = now
		}
	}

	return statusFailed, dataFailed
}

func due(last time.Time, interval time.Duration, now time.Time) bool {
	return last.IsZero() || now.Sub(last) >= interval
}

// reconnect makes bounded blocking attempts to bring the link up. The loop
// stalls for its duration; there is nothing useful to do offline.
func (s *Scheduler) reconnect() bool {
	slog.Info("network down, reconnecting")
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err := s.link.Connect(); err == nil && s.link.Up() {
			slog.Info("network connected", "attempts", attempt)
			return true
		}
		s.sleep(connectDelay)
	}
	slog.Warn("reconnect failed", "attempts", connectAttempts)
	return false
}

func (s *Scheduler) pollStatus() error {
	status, err := s.source.GetStatus()
	if err != nil {
		return err
	}
	if s.thresholds.ApplyStatus(status) {
		slog.Info("thresholds updated",
			"lowUrgent", s.thresholds.LowUrgent,
			"lowWarning", s.thresholds.LowWarning,
			"highWarning", s.thresholds.HighWarning,
			"highUrgent", s.thresholds.HighUrgent)
	}
	return nil
}

func (s *Scheduler) pollData(now time.Time) error {
	props, err := s.source.GetProperties()
	if err != nil {
		return err
	}

	switch s.readings.ApplyData(props, now) {
	case state.Malformed:
		return fmt.Errorf("no readings in response")
	case state.Invalid:
		slog.Warn("implausible reading ignored", "mgdl", props.BGNow.SGVs[0].MgDL)
	case state.Updated:
		r := s.readings.Reading()
		slog.Info("reading accepted", "mgdl", r.MgDL, "delta", r.DeltaMgDL, "trend", r.Trend)
		if s.alerter != nil {
			s.alerter.ReadingAccepted(r, s.thresholds)
		}
	case state.Unchanged:
		// Same snapshot as the previous poll.
	}
	return nil
}

func (s *Scheduler) snapshot(now time.Time) display.Snapshot {
	return display.Snapshot{
		HasReading: s.readings.HasReading(),
		Reading:    s.readings.Reading(),
		Stale:      s.readings.IsStale(now),
		Thresholds: s.thresholds,
		Now:        now,
	}
}
