package display

import (
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mrcode/nightscout-display/internal/state"
)

// mgdlPerMmol converts display values; the canonical unit is mg/dL.
const mgdlPerMmol = 18.0

// staleColor marks outdated readings on the frame.
var staleColor = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}

// Snapshot is everything the presenter needs for one frame.
type Snapshot struct {
	HasReading bool
	Reading    state.Reading
	Stale      bool
	Thresholds state.Thresholds
	Now        time.Time
}

// Presenter renders snapshots to a device and LED. It holds no glucose
// state of its own; every frame is a pure function of the snapshot.
type Presenter struct {
	device Device
	led    LED
	mmol   bool

	valueFace font.Face
	smallFace font.Face
}

// NewPresenter creates a presenter for the given device and LED. mmol
// selects the display unit; storage stays in mg/dL.
func NewPresenter(device Device, led LED, mmol bool) (*Presenter, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &Presenter{
		device:    device,
		led:       led,
		mmol:      mmol,
		valueFace: truetype.NewFace(f, &truetype.Options{Size: 28}),
		smallFace: truetype.NewFace(f, &truetype.Options{Size: 11}),
	}, nil
}

// Render draws one full frame of the current state and updates the LED.
func (p *Presenter) Render(snap Snapshot) error {
	w, h := p.device.Bounds()
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()

	if !snap.HasReading {
		dc.SetFontFace(p.smallFace)
		dc.SetColor(color.White)
		dc.DrawStringAnchored("waiting for data...", float64(w)/2, float64(h)/2, 0.5, 0.5)
		if err := p.device.Draw(dc.Image()); err != nil {
			return err
		}
		return p.led.Off()
	}

	r := snap.Reading
	valueStr := FormatValue(r.MgDL, p.mmol)

	dc.SetFontFace(p.valueFace)
	if snap.Stale {
		dc.SetColor(staleColor)
	} else {
		dc.SetColor(color.White)
	}
	vx, vy := float64(w)*0.38, float64(h)*0.40
	dc.DrawStringAnchored(valueStr, vx, vy, 0.5, 0.5)

	if snap.Stale {
		tw, _ := dc.MeasureString(valueStr)
		dc.SetLineWidth(2)
		dc.DrawLine(vx-tw/2-2, vy, vx+tw/2+2, vy)
		dc.Stroke()
	}

	dc.SetFontFace(p.smallFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(FormatDelta(r.DeltaMgDL, p.mmol), vx, float64(h)*0.78, 0.5, 0.5)
	dc.DrawStringAnchored(FormatAge(snap.Now.Sub(r.AcquiredAt)), vx, float64(h)*0.93, 0.5, 0.5)

	p.drawTrend(dc, float64(w)*0.82, float64(h)*0.40, 26, r.Trend)

	if err := p.device.Draw(dc.Image()); err != nil {
		return err
	}
	return p.updateLED(snap)
}

// ShowError draws a short full-screen message. The loop resumes drawing
// normal frames on its next scheduled render.
func (p *Presenter) ShowError(msg string) {
	w, h := p.device.Bounds()
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()

	dc.SetFontFace(p.smallFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(msg, float64(w)/2, float64(h)/2, 0.5, 0.5)

	_ = p.device.Draw(dc.Image())
}

// updateLED maps the reading's alert zone to the status light. A stale
// reading keeps its zone color, matching the struck-through value.
func (p *Presenter) updateLED(snap Snapshot) error {
	switch snap.Thresholds.Zone(snap.Reading.MgDL) {
	case state.ZoneUrgent:
		return p.led.Set(255, 0, 0)
	case state.ZoneWarning:
		return p.led.Set(255, 200, 0)
	default:
		return p.led.Set(0, 255, 0)
	}
}

// TrendAngle maps a trend code to the arrow rotation in degrees. double is
// true for the Double* codes, which draw a second offset arrow. ok is false
// for unrecognized codes, which draw no arrow at all.
func TrendAngle(trend string) (angle float64, double bool, ok bool) {
	switch trend {
	case "DoubleUp":
		return 0, true, true
	case "SingleUp":
		return 0, false, true
	case "FortyFiveUp":
		return 45, false, true
	case "Flat":
		return 90, false, true
	case "FortyFiveDown":
		return 135, false, true
	case "SingleDown":
		return 180, false, true
	case "DoubleDown":
		return 180, true, true
	default:
		return 0, false, false
	}
}

// drawTrend draws the rotated trend arrow glyph at (x, y).
func (p *Presenter) drawTrend(dc *gg.Context, x, y, size float64, trend string) {
	angle, double, ok := TrendAngle(trend)
	if !ok {
		return
	}

	dc.Push()
	defer dc.Pop()

	dc.SetColor(color.White)
	dc.Translate(x, y)
	dc.Rotate(gg.Radians(angle))

	if double {
		half := size / 2
		drawArrowShape(dc, 0, -half/2, size*0.8)
		drawArrowShape(dc, 0, half/2, size*0.8)
	} else {
		drawArrowShape(dc, 0, 0, size)
	}
}

// drawArrowShape fills an upward arrow centered at (ox, oy).
func drawArrowShape(dc *gg.Context, ox, oy, s float64) {
	w := s * 0.5

	dc.NewSubPath()
	dc.MoveTo(ox, oy-s/2)
	dc.LineTo(ox+w/2, oy)
	dc.LineTo(ox+w/6, oy)
	dc.LineTo(ox+w/6, oy+s/2)
	dc.LineTo(ox-w/6, oy+s/2)
	dc.LineTo(ox-w/6, oy)
	dc.LineTo(ox-w/2, oy)
	dc.ClosePath()
	dc.Fill()
}

// FormatValue renders a glucose value in the display unit: whole numbers in
// mg/dL, one decimal place in mmol/L.
func FormatValue(mgdl float64, mmol bool) string {
	if mmol {
		return fmt.Sprintf("%.1f", mgdl/mgdlPerMmol)
	}
	return fmt.Sprintf("%.0f", mgdl)
}

// FormatDelta renders the change since the previous reading with its sign.
func FormatDelta(mgdl float64, mmol bool) string {
	if mmol {
		return fmt.Sprintf("%+.1f", mgdl/mgdlPerMmol)
	}
	return fmt.Sprintf("%+.0f", mgdl)
}

// FormatAge renders minutes since the reading was accepted.
func FormatAge(age time.Duration) string {
	minutes := int(age.Minutes())
	switch {
	case minutes < 1:
		return "now"
	case minutes == 1:
		return "1 min"
	default:
		return fmt.Sprintf("%d min", minutes)
	}
}
