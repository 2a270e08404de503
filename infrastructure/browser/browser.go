// Package browser holds the BrowsingContext drivers: playwright (default),
// selenium through chromedriver, and chromedp over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"io"
	"time"

	"e2e_automation/domain/interfaces"
	"e2e_automation/infrastructure/config"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPageLoadTimeout = 30 * time.Second
	DefaultWindowWidth     = 1280
	DefaultWindowHeight    = 720
)

// Options configures a driver launch
type Options struct {
	Headless         bool
	DriverPath       string // chromedriver, selenium only
	ChromeBinaryPath string
	PageLoadTimeout  time.Duration
	WindowWidth      int
	WindowHeight     int
	Logger           logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.PageLoadTimeout <= 0 {
		o.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if o.WindowWidth <= 0 {
		o.WindowWidth = DefaultWindowWidth
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = DefaultWindowHeight
	}
	if o.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.Logger = discard
	}
	return o
}

// OptionsFromConfig - builds launch options from the harness configuration
func OptionsFromConfig(cfg *config.Config, logger logrus.FieldLogger) Options {
	return Options{
		Headless:         cfg.Headless,
		DriverPath:       cfg.DriverPath,
		ChromeBinaryPath: cfg.ChromeBinaryPath,
		Logger:           logger,
	}
}

// Launcher opens a browsing context; tests substitute their own
type Launcher func(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (interfaces.BrowsingContext, error)

// New - opens a browsing context with the driver named by cfg.Driver
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (interfaces.BrowsingContext, error) {
	opts := OptionsFromConfig(cfg, logger)
	if logger != nil {
		logger.WithField("driver", cfg.Driver).Infof("Launching browser (headless=%t)", cfg.Headless)
	}

	var (
		bc  interfaces.BrowsingContext
		err error
	)
	switch cfg.Driver {
	case "playwright", "":
		var c *PlaywrightController
		c, err = NewPlaywrightController(opts)
		bc = c
	case "selenium":
		var c *SeleniumController
		c, err = NewSeleniumController(opts)
		bc = c
	case "chromedp":
		var c *ChromedpController
		c, err = NewChromedpController(ctx, opts)
		bc = c
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return bc, nil
}

var _ Launcher = New
