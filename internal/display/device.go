// Package display renders glucose state to a framebuffer device and an
// optional RGB status LED. Rendering is immediate-mode: every frame is a
// full redraw, nothing is diffed.
package display

import (
	"bytes"
	"image"
	"image/png"
	"os"
)

// Device receives full rendered frames.
type Device interface {
	// Bounds returns the frame size in pixels.
	Bounds() (width, height int)
	// Draw pushes a complete frame to the device.
	Draw(img image.Image) error
}

// LED is the status light. Implementations treat (0,0,0) as off.
type LED interface {
	Set(r, g, b uint8) error
	Off() error
}

// NopLED satisfies LED when the light is disabled by configuration.
type NopLED struct{}

// Set does nothing.
func (NopLED) Set(_, _, _ uint8) error { return nil }

// Off does nothing.
func (NopLED) Off() error { return nil }

// FileDevice writes each frame as a PNG file. It stands in for the panel
// when developing on a workstation.
type FileDevice struct {
	Path   string
	Width  int
	Height int
}

// Bounds returns the configured frame size.
func (d *FileDevice) Bounds() (int, int) {
	return d.Width, d.Height
}

// Draw encodes the frame and replaces the file at Path.
func (d *FileDevice) Draw(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(d.Path, buf.Bytes(), 0600)
}
