// Package config loads the device configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config contains all device settings. It is loaded once at startup and
// never mutated afterwards.
type Config struct {
	// Connection settings
	WiFiSSID      string `json:"wifi_ssid"`
	WiFiPassword  string `json:"wifi_password"`
	NightscoutURL string `json:"nightscout_url"`
	AccessToken   string `json:"access_token"`

	// Display settings
	Mmol   bool `json:"mmol"`   // show mmol/L instead of mg/dL
	Rotate bool `json:"rotate"` // panel mounted upside down

	// LED settings
	UseLED       bool `json:"use_led"`
	LEDIntensity int  `json:"led_intensity"` // 0-255

	// Desktop notifications for urgent readings (simulator mode)
	Alerts bool `json:"alerts"`
}

// Default returns a config with default values for the optional fields.
func Default() *Config {
	return &Config{
		LEDIntensity: 128,
	}
}

// Load reads and parses the config file at path. Any failure is terminal
// for the caller: the device cannot run without a valid configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path comes from the -config flag
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize cleans up the server URL and clamps the LED intensity.
func (c *Config) normalize() {
	c.NightscoutURL = strings.TrimSpace(c.NightscoutURL)
	c.NightscoutURL = strings.TrimRight(c.NightscoutURL, "/")

	if c.LEDIntensity < 0 {
		c.LEDIntensity = 0
	}
	if c.LEDIntensity > 255 {
		c.LEDIntensity = 255
	}
}

func (c *Config) validate() error {
	if c.WiFiSSID == "" {
		return fmt.Errorf("config: wifi_ssid is required")
	}
	if c.NightscoutURL == "" {
		return fmt.Errorf("config: nightscout_url is required")
	}
	return nil
}
