// Package alerts sends desktop notifications for urgent glucose readings.
// It is useful when the daemon runs on a workstation in simulator mode; a
// headless board leaves it disabled.
package alerts

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/mrcode/nightscout-display/internal/state"
)

// Alert type constants
const (
	alertUrgentLow  = "urgent_low"
	alertUrgentHigh = "urgent_high"
)

// repeatWindow suppresses repeated alerts for the same zone.
const repeatWindow = 15 * time.Minute

// Manager escalates urgent readings as desktop notifications.
type Manager struct {
	mmol     bool
	lastSent map[string]time.Time
	now      func() time.Time
	notify   func(title, message string) error
}

// NewManager creates a notification manager. mmol selects the unit shown in
// the notification text.
func NewManager(mmol bool) *Manager {
	return &Manager{
		mmol:     mmol,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// ReadingAccepted checks a newly accepted reading and notifies when it sits
// in an urgent zone, at most once per zone per repeat window.
func (m *Manager) ReadingAccepted(r state.Reading, th state.Thresholds) {
	var kind string
	switch {
	case r.MgDL <= float64(th.LowUrgent):
		kind = alertUrgentLow
	case r.MgDL >= float64(th.HighUrgent):
		kind = alertUrgentHigh
	default:
		return
	}

	now := m.now()
	if last, ok := m.lastSent[kind]; ok && now.Sub(last) < repeatWindow {
		return
	}

	title, message := m.format(kind, r)
	if err := m.notify(title, message); err != nil {
		slog.Warn("notification failed", "err", err)
		return
	}
	m.lastSent[kind] = now
}

func (m *Manager) format(kind string, r state.Reading) (string, string) {
	var valueStr string
	if m.mmol {
		valueStr = fmt.Sprintf("%.1f mmol/L", r.MmolL())
	} else {
		valueStr = fmt.Sprintf("%.0f mg/dL", r.MgDL)
	}

	if kind == alertUrgentLow {
		return "URGENT LOW GLUCOSE", fmt.Sprintf("Glucose is critically low: %s", valueStr)
	}
	return "URGENT HIGH GLUCOSE", fmt.Sprintf("Glucose is critically high: %s", valueStr)
}
