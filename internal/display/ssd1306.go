package display

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// SSD1306Device drives a 128x64 OLED panel over I2C.
type SSD1306Device struct {
	dev    *ssd1306.Dev
	bus    i2c.BusCloser
	width  int
	height int
}

// OpenSSD1306 initializes the host drivers, opens the default I2C bus and
// configures the panel. rotate flips the frame 180 degrees for upside-down
// mounting.
func OpenSSD1306(rotate bool) (*SSD1306Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("opening i2c bus: %w", err)
	}

	opts := ssd1306.DefaultOpts
	opts.Rotated = rotate

	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("configuring ssd1306: %w", err)
	}

	return &SSD1306Device{
		dev:    dev,
		bus:    bus,
		width:  opts.W,
		height: opts.H,
	}, nil
}

// Bounds returns the panel size in pixels.
func (d *SSD1306Device) Bounds() (int, int) {
	return d.width, d.height
}

// Draw pushes a full frame to the panel.
func (d *SSD1306Device) Draw(img image.Image) error {
	return d.dev.Draw(d.dev.Bounds(), img, image.Point{})
}

// Close blanks the panel and releases the bus.
func (d *SSD1306Device) Close() error {
	_ = d.dev.Halt()
	return d.bus.Close()
}
