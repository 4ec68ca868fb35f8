package beewatch

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/beewatch/internal/capture"
)

// Config is the top-level monitor configuration.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Capture  CaptureConfig  `yaml:"capture"`
	Autolike AutolikeConfig `yaml:"autolike"`
	Sinks    []SinkConfig   `yaml:"sinks"`
}

// BrowserConfig identifies the running Chrome to attach to.
type BrowserConfig struct {
	// ControlURL is the DevTools websocket endpoint.
	ControlURL string `yaml:"control_url"`
	// AppURL is the page the monitored account lives on.
	AppURL string `yaml:"app_url"`
}

// CaptureConfig controls polling and response filtering.
type CaptureConfig struct {
	// PollInterval is the pipeline drain cadence.
	PollInterval time.Duration `yaml:"poll_interval"`
	// HostSubstrings must all appear in a captured URL.
	HostSubstrings []string `yaml:"host_substrings"`
	// URLKeywords select data endpoints; defaults cover the known API.
	URLKeywords []string `yaml:"url_keywords"`
	// SectionURLs are visited in order each sweep to trigger API calls.
	SectionURLs []string `yaml:"section_urls"`
	// SectionDwell is how long to stay on each section.
	SectionDwell time.Duration `yaml:"section_dwell"`
	// SectionInterval is how often the section sweep repeats.
	SectionInterval time.Duration `yaml:"section_interval"`
}

// AutolikeConfig controls automatic liking. Disabled unless a selector
// is configured; there is no element-guessing fallback.
type AutolikeConfig struct {
	Enabled bool `yaml:"enabled"`
	// Selector is the CSS selector of the like control.
	Selector string `yaml:"selector"`
	// Every N poll cycles, one like is attempted.
	EveryCycles int `yaml:"every_cycles"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.ControlURL == "" {
		c.Browser.ControlURL = "ws://127.0.0.1:9222"
	}
	if c.Browser.AppURL == "" {
		c.Browser.AppURL = "https://bumble.com/app"
	}
	if c.Capture.PollInterval <= 0 {
		c.Capture.PollInterval = 5 * time.Second
	}
	if len(c.Capture.HostSubstrings) == 0 {
		c.Capture.HostSubstrings = []string{"bumble.com", "mwebapi"}
	}
	if len(c.Capture.URLKeywords) == 0 {
		c.Capture.URLKeywords = capture.DefaultURLKeywords
	}
	if c.Capture.SectionDwell <= 0 {
		c.Capture.SectionDwell = 3 * time.Second
	}
	if c.Capture.SectionInterval <= 0 {
		c.Capture.SectionInterval = 2 * time.Minute
	}
	if c.Autolike.EveryCycles <= 0 {
		c.Autolike.EveryCycles = 3
	}
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
