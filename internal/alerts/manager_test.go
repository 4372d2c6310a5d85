package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/mrcode/nightscout-display/internal/state"
)

type sentAlert struct {
	title   string
	message string
}

func newTestManager(mmol bool) (*Manager, *[]sentAlert, *time.Time) {
	m := NewManager(mmol)
	var sent []sentAlert
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	m.now = func() time.Time { return clock }
	m.notify = func(title, message string) error {
		sent = append(sent, sentAlert{title, message})
		return nil
	}
	return m, &sent, &clock
}

func reading(mgdl float64) state.Reading {
	return state.Reading{MgDL: mgdl, Trend: "Flat"}
}

func TestManager_UrgentZonesNotify(t *testing.T) {
	tests := []struct {
		name      string
		mgdl      float64
		wantTitle string
	}{
		{"urgent low", 45, "URGENT LOW GLUCOSE"},
		{"urgent low boundary", 55, "URGENT LOW GLUCOSE"},
		{"urgent high", 300, "URGENT HIGH GLUCOSE"},
		{"urgent high boundary", 250, "URGENT HIGH GLUCOSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, sent, _ := newTestManager(false)
			m.ReadingAccepted(reading(tt.mgdl), state.DefaultThresholds())

			if len(*sent) != 1 {
				t.Fatalf("sent %d alerts, want 1", len(*sent))
			}
			if (*sent)[0].title != tt.wantTitle {
				t.Errorf("title = %q, want %q", (*sent)[0].title, tt.wantTitle)
			}
		})
	}
}

func TestManager_NonUrgentZonesSilent(t *testing.T) {
	m, sent, _ := newTestManager(false)

	for _, mgdl := range []float64{65, 120, 200} {
		m.ReadingAccepted(reading(mgdl), state.DefaultThresholds())
	}

	if len(*sent) != 0 {
		t.Errorf("sent %d alerts for non-urgent readings, want 0", len(*sent))
	}
}

func TestManager_RepeatSuppression(t *testing.T) {
	m, sent, clock := newTestManager(false)
	th := state.DefaultThresholds()

	m.ReadingAccepted(reading(45), th)
	*clock = clock.Add(5 * time.Minute)
	m.ReadingAccepted(reading(44), th)

	if len(*sent) != 1 {
		t.Fatalf("sent %d alerts within repeat window, want 1", len(*sent))
	}

	// A different urgent zone is not suppressed.
	m.ReadingAccepted(reading(300), th)
	if len(*sent) != 2 {
		t.Fatalf("sent %d alerts, want 2 (zones tracked separately)", len(*sent))
	}

	// Past the window the same zone fires again.
	*clock = clock.Add(15 * time.Minute)
	m.ReadingAccepted(reading(43), th)
	if len(*sent) != 3 {
		t.Errorf("sent %d alerts after repeat window, want 3", len(*sent))
	}
}

func TestManager_UnitInMessage(t *testing.T) {
	m, sent, _ := newTestManager(true)
	m.ReadingAccepted(reading(45), state.DefaultThresholds())

	if len(*sent) != 1 {
		t.Fatal("no alert sent")
	}
	if !strings.Contains((*sent)[0].message, "2.5 mmol/L") {
		t.Errorf("message = %q, want mmol value", (*sent)[0].message)
	}
}
