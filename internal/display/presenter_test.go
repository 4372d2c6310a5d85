package display

import (
	"image"
	"testing"
	"time"

	"github.com/mrcode/nightscout-display/internal/state"
)

type memDevice struct {
	frames []image.Image
}

func (d *memDevice) Bounds() (int, int) { return 128, 64 }

func (d *memDevice) Draw(img image.Image) error {
	d.frames = append(d.frames, img)
	return nil
}

type recordLED struct {
	r, g, b  uint8
	sets     int
	offCalls int
}

func (l *recordLED) Set(r, g, b uint8) error {
	l.r, l.g, l.b = r, g, b
	l.sets++
	return nil
}

func (l *recordLED) Off() error {
	l.offCalls++
	return nil
}

func TestTrendAngle(t *testing.T) {
	tests := []struct {
		trend  string
		angle  float64
		double bool
		ok     bool
	}{
		{"DoubleUp", 0, true, true},
		{"SingleUp", 0, false, true},
		{"FortyFiveUp", 45, false, true},
		{"Flat", 90, false, true},
		{"FortyFiveDown", 135, false, true},
		{"SingleDown", 180, false, true},
		{"DoubleDown", 180, true, true},
		{"NOT COMPUTABLE", 0, false, false},
		{"", 0, false, false},
		{"Banana", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.trend, func(t *testing.T) {
			angle, double, ok := TrendAngle(tt.trend)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if angle != tt.angle {
				t.Errorf("angle = %v, want %v", angle, tt.angle)
			}
			if double != tt.double {
				t.Errorf("double = %v, want %v", double, tt.double)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		mgdl     float64
		mmol     bool
		expected string
	}{
		{"mg/dL whole", 120, false, "120"},
		{"mg/dL rounds", 120.6, false, "121"},
		{"mmol one decimal", 120, true, "6.7"},
		{"mmol 180", 180, true, "10.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.mgdl, tt.mmol); got != tt.expected {
				t.Errorf("FormatValue(%v, %v) = %q, want %q", tt.mgdl, tt.mmol, got, tt.expected)
			}
		})
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name     string
		mgdl     float64
		mmol     bool
		expected string
	}{
		{"negative mg/dL", -2, false, "-2"},
		{"positive mg/dL keeps sign", 5, false, "+5"},
		{"zero mg/dL", 0, false, "+0"},
		{"negative mmol", -9, true, "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDelta(tt.mgdl, tt.mmol); got != tt.expected {
				t.Errorf("FormatDelta(%v, %v) = %q, want %q", tt.mgdl, tt.mmol, got, tt.expected)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected string
	}{
		{"seconds", 30 * time.Second, "now"},
		{"one minute", 90 * time.Second, "1 min"},
		{"minutes", 5 * time.Minute, "5 min"},
		{"long", 90 * time.Minute, "90 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.age); got != tt.expected {
				t.Errorf("FormatAge(%v) = %q, want %q", tt.age, got, tt.expected)
			}
		})
	}
}

func snapshotFor(mgdl float64) Snapshot {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return Snapshot{
		HasReading: true,
		Reading: state.Reading{
			MgDL:       mgdl,
			DeltaMgDL:  -2,
			Trend:      "Flat",
			Mills:      1000,
			AcquiredAt: now.Add(-2 * time.Minute),
		},
		Thresholds: state.DefaultThresholds(),
		Now:        now,
	}
}

func TestPresenter_LEDZoneColors(t *testing.T) {
	tests := []struct {
		name    string
		mgdl    float64
		r, g, b uint8
	}{
		{"normal is green", 120, 0, 255, 0},
		{"low warning is yellow", 65, 255, 200, 0},
		{"high warning is yellow", 200, 255, 200, 0},
		{"urgent low is red", 45, 255, 0, 0},
		{"urgent high is red", 300, 255, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &memDevice{}
			led := &recordLED{}
			p, err := NewPresenter(dev, led, false)
			if err != nil {
				t.Fatal(err)
			}

			if err := p.Render(snapshotFor(tt.mgdl)); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if led.sets != 1 {
				t.Fatalf("led sets = %d, want 1", led.sets)
			}
			if led.r != tt.r || led.g != tt.g || led.b != tt.b {
				t.Errorf("led = (%d,%d,%d), want (%d,%d,%d)", led.r, led.g, led.b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestPresenter_NoReadingFrame(t *testing.T) {
	dev := &memDevice{}
	led := &recordLED{}
	p, err := NewPresenter(dev, led, false)
	if err != nil {
		t.Fatal(err)
	}

	snap := Snapshot{
		HasReading: false,
		Stale:      true,
		Thresholds: state.DefaultThresholds(),
		Now:        time.Now(),
	}
	if err := p.Render(snap); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(dev.frames) != 1 {
		t.Errorf("frames = %d, want 1", len(dev.frames))
	}
	if led.offCalls != 1 {
		t.Errorf("led offCalls = %d, want 1 (no data yet)", led.offCalls)
	}
	if led.sets != 0 {
		t.Errorf("led sets = %d, want 0", led.sets)
	}
}

func TestPresenter_StaleFrameDiffersFromFresh(t *testing.T) {
	render := func(stale bool) image.Image {
		dev := &memDevice{}
		p, err := NewPresenter(dev, &recordLED{}, false)
		if err != nil {
			t.Fatal(err)
		}
		snap := snapshotFor(120)
		snap.Stale = stale
		if err := p.Render(snap); err != nil {
			t.Fatal(err)
		}
		return dev.frames[0]
	}

	fresh := render(false)
	stale := render(true)

	diff := 0
	b := fresh.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if fresh.At(x, y) != stale.At(x, y) {
				diff++
			}
		}
	}
	if diff == 0 {
		t.Error("stale frame is identical to fresh frame; expected recolor and strikethrough")
	}
}

func TestPresenter_ShowError(t *testing.T) {
	dev := &memDevice{}
	p, err := NewPresenter(dev, &recordLED{}, false)
	if err != nil {
		t.Fatal(err)
	}

	p.ShowError("server unreachable")

	if len(dev.frames) != 1 {
		t.Errorf("frames = %d, want 1", len(dev.frames))
	}
}
