package display

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// ledPWMFreq is low enough for software PWM on pins without hardware
// support but well above flicker.
const ledPWMFreq = 200 * physic.Hertz

// GPIOLED drives a common-cathode RGB LED on three GPIO pins. Channels are
// dimmed by the configured intensity via PWM where the pin supports it,
// falling back to plain on/off otherwise.
type GPIOLED struct {
	red       gpio.PinOut
	green     gpio.PinOut
	blue      gpio.PinOut
	intensity uint8
}

// OpenGPIOLED resolves the three channel pins by name via the gpio
// registry.
func OpenGPIOLED(redPin, greenPin, bluePin string, intensity uint8) (*GPIOLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	led := &GPIOLED{intensity: intensity}
	for _, p := range []struct {
		name string
		out  *gpio.PinOut
	}{
		{redPin, &led.red},
		{greenPin, &led.green},
		{bluePin, &led.blue},
	} {
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return nil, fmt.Errorf("no such pin %q", p.name)
		}
		*p.out = pin
	}

	return led, nil
}

// Set drives the three channels, scaled by the configured intensity.
func (l *GPIOLED) Set(r, g, b uint8) error {
	if err := l.channel(l.red, r); err != nil {
		return err
	}
	if err := l.channel(l.green, g); err != nil {
		return err
	}
	return l.channel(l.blue, b)
}

// Off switches every channel off.
func (l *GPIOLED) Off() error {
	return l.Set(0, 0, 0)
}

func (l *GPIOLED) channel(pin gpio.PinOut, v uint8) error {
	scaled := uint32(v) * uint32(l.intensity) / 255
	if scaled == 0 {
		return pin.Out(gpio.Low)
	}
	if scaled >= 255 {
		return pin.Out(gpio.High)
	}

	duty := gpio.Duty(uint64(scaled) * uint64(gpio.DutyMax) / 255)
	if err := pin.PWM(duty, ledPWMFreq); err != nil {
		// Not every pin supports PWM; a mid-point threshold keeps the
		// zone color correct even without dimming.
		return pin.Out(gpio.Level(scaled >= 128))
	}
	return nil
}
