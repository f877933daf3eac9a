package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/pagetoc/internal/layout"
	"github.com/dgallion1/pagetoc/internal/tracker"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. PAGETOC_PORT.
const EnvPrefix = "PAGETOC_"

// Layout measurer names.
const (
	LayoutEstimate = "estimate"
	LayoutBrowser  = "browser"
)

type Config struct {
	Port string `yaml:"port" koanf:"port"`

	// Directory pages are served and built from.
	Root string `yaml:"root" koanf:"root"`

	// Table of contents
	LookAhead      int      `yaml:"look_ahead" koanf:"look_ahead"`
	ExcludeClasses []string `yaml:"exclude_classes" koanf:"exclude_classes"`
	Smartquotes    bool     `yaml:"smartquotes" koanf:"smartquotes"`
	CodeStyle      string   `yaml:"code_style" koanf:"code_style"`

	// Scroll tracker debounces
	HideDelay   time.Duration `yaml:"hide_delay" koanf:"hide_delay"`
	LocateDelay time.Duration `yaml:"locate_delay" koanf:"locate_delay"`
	RevealDelay time.Duration `yaml:"reveal_delay" koanf:"reveal_delay"`

	// Layout measurement
	Layout       string  `yaml:"layout" koanf:"layout"`
	LineHeight   float64 `yaml:"line_height" koanf:"line_height"`
	CharsPerLine int     `yaml:"chars_per_line" koanf:"chars_per_line"`
	ImageHeight  float64 `yaml:"image_height" koanf:"image_height"`

	// Headless Chrome, for Layout == "browser"
	BrowserBin     string        `yaml:"browser_bin" koanf:"browser_bin"`
	ViewportWidth  int           `yaml:"viewport_width" koanf:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" koanf:"viewport_height"`
	PageTimeout    time.Duration `yaml:"page_timeout" koanf:"page_timeout"`

	// Processed page cache
	CacheTTL time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`

	LogLevel string `yaml:"log_level" koanf:"log_level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	trk := tracker.DefaultConfig()
	est := layout.NewEstimator()
	return &Config{
		Port: "8090",
		Root: ".",

		LookAhead:   200,
		Smartquotes: true,
		CodeStyle:   "github",

		HideDelay:   trk.HideDelay,
		LocateDelay: trk.LocateDelay,
		RevealDelay: trk.RevealDelay,

		Layout:       LayoutEstimate,
		LineHeight:   est.LineHeight,
		CharsPerLine: est.CharsPerLine,
		ImageHeight:  est.ImageHeight,

		ViewportWidth:  1280,
		ViewportHeight: 800,
		PageTimeout:    30 * time.Second,

		CacheTTL: 5 * time.Minute,

		LogLevel: "info",
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PAGETOC_*). An empty or missing path
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// PAGETOC_LOOK_AHEAD -> look_ahead, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.clamp()
	return cfg, nil
}

// clamp replaces out-of-range numeric settings with their defaults.
func (c *Config) clamp() {
	def := DefaultConfig()
	if c.LookAhead < 0 {
		c.LookAhead = def.LookAhead
	}
	if c.HideDelay <= 0 {
		c.HideDelay = def.HideDelay
	}
	if c.LocateDelay <= 0 {
		c.LocateDelay = def.LocateDelay
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = def.RevealDelay
	}
	if c.LineHeight <= 0 {
		c.LineHeight = def.LineHeight
	}
	if c.CharsPerLine <= 0 {
		c.CharsPerLine = def.CharsPerLine
	}
	if c.ImageHeight <= 0 {
		c.ImageHeight = def.ImageHeight
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = def.ViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = def.ViewportHeight
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = def.PageTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.Layout != LayoutEstimate && c.Layout != LayoutBrowser {
		return fmt.Errorf("invalid layout %q: must be one of estimate, browser", c.Layout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// Tracker returns the debounce settings for scroll tracker sessions.
func (c *Config) Tracker() tracker.Config {
	return tracker.Config{
		HideDelay:   c.HideDelay,
		LocateDelay: c.LocateDelay,
		RevealDelay: c.RevealDelay,
	}
}

// Measurer builds the configured layout measurer. The returned close
// function releases the browser, if one was started.
func (c *Config) Measurer() (layout.Measurer, func() error) {
	if c.Layout == LayoutBrowser {
		b := layout.NewBrowser(layout.BrowserConfig{
			Bin:     c.BrowserBin,
			Width:   c.ViewportWidth,
			Height:  c.ViewportHeight,
			Timeout: c.PageTimeout,
		})
		return b, b.Close
	}
	est := &layout.Estimator{
		LineHeight:   c.LineHeight,
		CharsPerLine: c.CharsPerLine,
		ImageHeight:  c.ImageHeight,
	}
	return est, func() error { return nil }
}
