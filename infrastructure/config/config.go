// Package config loads harness settings from the environment, an optional
// .env file and an optional YAML file of named environments.
//
// Every variable has a default; Load only fails when a value is present but
// unusable, or when the selected environment cannot be resolved.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"e2e_automation/domain/entities"
)

const (
	DefaultEnv            = "dev"
	DefaultDriver         = "playwright"
	DefaultTimeout        = 10 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultSessionFile    = "session.json"
	DefaultScreenshotPath = "artifacts/screenshots"
	DefaultLogDir         = "artifacts/logs"
	DefaultLogLevel       = "info"
	DefaultLandingPath    = "/dashboard"
	DefaultLandingMarker  = "id=sidebar"
)

// Drivers are the accepted BROWSER_DRIVER values
var Drivers = []string{"playwright", "selenium", "chromedp"}

// BuiltinEnvironments are used when no environments file defines the selected name
var BuiltinEnvironments = map[string]entities.Environment{
	"dev": {
		Name:     "dev",
		BaseURL:  "https://dev.your-app-url.com",
		Username: "dev-user@example.com",
		Password: "dev-password",
	},
	"staging": {
		Name:     "staging",
		BaseURL:  "https://staging.your-app-url.com",
		Username: "staging-user@example.com",
		Password: "staging-password",
	},
	"prod": {
		Name:     "prod",
		BaseURL:  "https://your-app-url.com",
		Username: "prod-user@example.com",
		Password: "prod-password",
	},
}

// Config holds every harness setting.
type Config struct {
	// Target application
	Env              string               // ENV
	Environment      entities.Environment // resolved from ENV, then BASE_URL/E2E_USERNAME/E2E_PASSWORD overrides
	EnvironmentsFile string               // ENVIRONMENTS_FILE
	LandingPath      string               // LANDING_PATH
	LandingMarker    entities.Locator     // LANDING_MARKER

	// Waits
	Timeout      time.Duration // TIMEOUT, seconds or a Go duration
	PollInterval time.Duration // POLL_INTERVAL

	// Browser
	Driver           string // BROWSER_DRIVER
	Headless         bool   // HEADLESS
	DriverPath       string // BROWSER_DRIVER_PATH, chromedriver for selenium
	ChromeBinaryPath string // CHROME_BINARY_PATH

	// Artifacts
	SessionFile         string // SESSION_FILE
	ScreenshotOnFailure bool   // SCREENSHOT_ON_FAILURE
	ScreenshotPath      string // SCREENSHOT_PATH
	LogDir              string // LOG_DIR
	LogLevel            string // LOG_LEVEL
}

// ValidationError lists every problem found in the configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads .env from the working directory when present, then the process
// environment. overrides take precedence over both; the CLI passes its flags
// through it.
func Load(overrides map[string]string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	})
}

// FromLookup builds a Config from lookup alone
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := &parser{lookup: lookup}
	cfg := &Config{
		Env:                 p.str("ENV", DefaultEnv),
		EnvironmentsFile:    p.str("ENVIRONMENTS_FILE", ""),
		LandingPath:         p.str("LANDING_PATH", DefaultLandingPath),
		LandingMarker:       entities.ParseLocator(p.str("LANDING_MARKER", DefaultLandingMarker)),
		Timeout:             p.duration("TIMEOUT", DefaultTimeout),
		PollInterval:        p.duration("POLL_INTERVAL", DefaultPollInterval),
		Driver:              strings.ToLower(p.str("BROWSER_DRIVER", DefaultDriver)),
		Headless:            p.boolean("HEADLESS", true),
		DriverPath:          p.str("BROWSER_DRIVER_PATH", ""),
		ChromeBinaryPath:    p.str("CHROME_BINARY_PATH", ""),
		SessionFile:         p.str("SESSION_FILE", DefaultSessionFile),
		ScreenshotOnFailure: p.boolean("SCREENSHOT_ON_FAILURE", true),
		ScreenshotPath:      p.str("SCREENSHOT_PATH", DefaultScreenshotPath),
		LogDir:              p.str("LOG_DIR", DefaultLogDir),
		LogLevel:            strings.ToLower(p.str("LOG_LEVEL", DefaultLogLevel)),
	}

	envs := make(map[string]entities.Environment, len(BuiltinEnvironments))
	for name, env := range BuiltinEnvironments {
		envs[name] = env
	}
	if cfg.EnvironmentsFile != "" {
		fromFile, err := LoadEnvironments(cfg.EnvironmentsFile)
		if err != nil {
			p.problems = append(p.problems, err.Error())
		}
		for name, env := range fromFile {
			envs[name] = env
		}
	}

	env, ok := envs[cfg.Env]
	if !ok && !p.has("BASE_URL") {
		p.problems = append(p.problems, fmt.Sprintf("ENV %q is not a known environment (known: %s)", cfg.Env, strings.Join(sortedNames(envs), ", ")))
	}
	env.Name = cfg.Env
	env.BaseURL = strings.TrimRight(p.str("BASE_URL", env.BaseURL), "/")
	env.Username = p.str("E2E_USERNAME", env.Username)
	env.Password = p.str("E2E_PASSWORD", env.Password)
	cfg.Environment = env

	problems := append(p.problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if problems := c.validate(); len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

func (c *Config) validate() []string {
	var errs []string

	if c.Environment.BaseURL == "" {
		errs = append(errs, "BASE_URL is required (set it or pick an ENV with a url)")
	} else if u, err := url.Parse(c.Environment.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("BASE_URL %q must be an absolute http(s) URL", c.Environment.BaseURL))
	}
	if !strings.HasPrefix(c.LandingPath, "/") {
		errs = append(errs, fmt.Sprintf("LANDING_PATH %q must start with /", c.LandingPath))
	}
	if c.LandingMarker.Value == "" {
		errs = append(errs, "LANDING_MARKER must not be empty")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "TIMEOUT must be positive")
	}
	if c.PollInterval <= 0 {
		errs = append(errs, "POLL_INTERVAL must be positive")
	}
	if !isDriver(c.Driver) {
		errs = append(errs, fmt.Sprintf("BROWSER_DRIVER %q is not one of %s", c.Driver, strings.Join(Drivers, ", ")))
	}
	if c.SessionFile == "" {
		errs = append(errs, "SESSION_FILE must not be empty")
	}
	if c.ScreenshotOnFailure && c.ScreenshotPath == "" {
		errs = append(errs, "SCREENSHOT_PATH is required when SCREENSHOT_ON_FAILURE is on")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not a log level", c.LogLevel))
	}
	return errs
}

// BaseURL returns the application root without a trailing slash
func (c *Config) BaseURL() string {
	return c.Environment.BaseURL
}

// LandingURL returns the page a logged-in user lands on
func (c *Config) LandingURL() string {
	return c.Environment.BaseURL + c.LandingPath
}

// Credentials returns the login of the selected environment
func (c *Config) Credentials() entities.Credentials {
	return c.Environment.Credentials()
}

// Level returns the parsed LOG_LEVEL
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func isDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}

func sortedNames(envs map[string]entities.Environment) []string {
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parser reads typed values and records the ones it cannot parse
type parser struct {
	lookup   func(string) (string, bool)
	problems []string
}

func (p *parser) has(key string) bool {
	v, ok := p.lookup(key)
	return ok && strings.TrimSpace(v) != ""
}

func (p *parser) str(key, defaultValue string) string {
	v, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultValue
	}
	return v
}

func (p *parser) boolean(key string, defaultValue bool) bool {
	v := p.str(key, "")
	if v == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s %q is not a boolean", key, v))
		return defaultValue
	}
	return parsed
}

// duration accepts plain seconds ("10", "0.5") or a Go duration ("750ms")
func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s %q is not a duration", key, v))
		return defaultValue
	}
	return d
}
