package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-pushbridge/internal/style"
)

type USB struct {
	Disabled   bool `yaml:"disabled"`
	TimeoutMs  int  `yaml:"timeout_ms"`  // per bulk transfer
	ReconnectS int  `yaml:"reconnect_s"` // 0 never retries
}

type Preview struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // e.g. :8080
	FPS     int    `yaml:"fps"`
	Scale   int    `yaml:"scale"` // 1..4
}

type Config struct {
	Port      int    `yaml:"port"`
	RefreshHz int    `yaml:"refresh_hz"`
	LogLevel  string `yaml:"log_level"` // zerolog level name

	Style   style.Config `yaml:"style"`
	USB     USB          `yaml:"usb"`
	Preview Preview      `yaml:"preview"`
}

func Default() *Config {
	return &Config{
		Port:      7000,
		RefreshHz: 60,
		LogLevel:  "info",
		Style:     style.Default().ToConfig(),
		USB:       USB{TimeoutMs: 1000},
		Preview:   Preview{Addr: ":8080", FPS: 20, Scale: 1},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	return c, c.Validate()
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RefreshHz < 1 || c.RefreshHz > 240 {
		errs = append(errs, fmt.Errorf("refresh_hz %d out of range 1..240", c.RefreshHz))
	}
	if c.USB.TimeoutMs < 0 || c.USB.ReconnectS < 0 {
		errs = append(errs, errors.New("usb timings must not be negative"))
	}
	if c.Preview.Enabled {
		if c.Preview.FPS < 1 || c.Preview.FPS > 60 {
			errs = append(errs, fmt.Errorf("preview.fps %d out of range 1..60", c.Preview.FPS))
		}
		if c.Preview.Scale < 1 || c.Preview.Scale > 4 {
			errs = append(errs, fmt.Errorf("preview.scale %d out of range 1..4", c.Preview.Scale))
		}
	}
	if _, err := c.Style.Apply(style.Default()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResolvedStyle is the configured style over the defaults.
func (c *Config) ResolvedStyle() (style.Style, error) {
	return c.Style.Apply(style.Default())
}
