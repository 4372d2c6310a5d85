// Package main is the entry point for the Nightscout display daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mrcode/nightscout-display/internal/alerts"
	"github.com/mrcode/nightscout-display/internal/config"
	"github.com/mrcode/nightscout-display/internal/display"
	"github.com/mrcode/nightscout-display/internal/nightscout"
	"github.com/mrcode/nightscout-display/internal/scheduler"
	"github.com/mrcode/nightscout-display/internal/wifi"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	simulate := flag.String("simulate", "", "render frames to this PNG file instead of the panel")
	redPin := flag.String("led-red", "GPIO17", "red LED channel pin")
	greenPin := flag.String("led-green", "GPIO27", "green LED channel pin")
	bluePin := flag.String("led-blue", "GPIO22", "blue LED channel pin")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("cannot start without a valid configuration", "err", err)
		os.Exit(1)
	}

	var device display.Device
	if *simulate != "" {
		device = &display.FileDevice{Path: *simulate, Width: 128, Height: 64}
	} else {
		panel, err := display.OpenSSD1306(cfg.Rotate)
		if err != nil {
			slog.Error("display init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			_ = panel.Close()
		}()
		device = panel
	}

	var led display.LED = display.NopLED{}
	if cfg.UseLED && *simulate == "" {
		gpioLED, err := display.OpenGPIOLED(*redPin, *greenPin, *bluePin, uint8(cfg.LEDIntensity))
		if err != nil {
			slog.Error("LED init failed", "err", err)
			os.Exit(1)
		}
		led = gpioLED
	}

	presenter, err := display.NewPresenter(device, led, cfg.Mmol)
	if err != nil {
		slog.Error("presenter init failed", "err", err)
		os.Exit(1)
	}

	link, err := wifi.NewLink(cfg.WiFiSSID, cfg.WiFiPassword, cfg.NightscoutURL)
	if err != nil {
		slog.Error("bad server URL", "err", err)
		os.Exit(1)
	}

	client := nightscout.NewClient(cfg.NightscoutURL, cfg.AccessToken)

	var alerter scheduler.Alerter
	if cfg.Alerts {
		alerter = alerts.NewManager(cfg.Mmol)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting",
		"server", cfg.NightscoutURL,
		"addr", link.Addr(),
		"mmol", cfg.Mmol,
		"led", cfg.UseLED)

	scheduler.New(client, link, presenter, alerter).Run(ctx)

	_ = led.Off()
	slog.Info("stopped")
}
