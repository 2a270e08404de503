// Package harness provides the go test fixtures: a configured browsing
// context per test, a logged-in variant that reuses the saved session, and
// a screenshot of the page whenever a test fails.
package harness

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"e2e_automation/application/pages"
	"e2e_automation/application/session"
	"e2e_automation/application/wait"
	"e2e_automation/domain/interfaces"
	"e2e_automation/infrastructure/browser"
	"e2e_automation/infrastructure/config"
	"e2e_automation/infrastructure/logging"
	"e2e_automation/infrastructure/storage"
)

// Fixture is everything a browser test needs
type Fixture struct {
	Ctx     context.Context
	Config  *config.Config
	Logger  *logging.Logger
	Log     *logrus.Entry
	Steps   *logging.StepLogger
	Browser interfaces.BrowsingContext
	Waiter  wait.Waiter

	// Restored is set by LoggedIn when the saved session was accepted
	Restored bool
}

type settings struct {
	launcher  browser.Launcher
	overrides map[string]string
	clock     wait.Clock
	console   io.Writer
}

// Option customises a fixture
type Option func(*settings)

// WithLauncher replaces the configured driver
func WithLauncher(l browser.Launcher) Option {
	return func(s *settings) { s.launcher = l }
}

// WithOverrides takes precedence over the environment and .env
func WithOverrides(overrides map[string]string) Option {
	return func(s *settings) {
		for k, v := range overrides {
			s.overrides[k] = v
		}
	}
}

// WithClock drives waits and artifact timestamps
func WithClock(c wait.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithConsole redirects the console copy of the log
func WithConsole(w io.Writer) Option {
	return func(s *settings) { s.console = w }
}

// New - opens a browsing context for t; the test is skipped when no browser can be launched
func New(t testing.TB, opts ...Option) *Fixture {
	t.Helper()

	s := &settings{
		launcher:  browser.New,
		overrides: map[string]string{},
		clock:     wait.RealClock,
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg, err := config.Load(s.overrides)
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.NewTestLogger(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.Level(),
		Console: s.console,
		Now:     s.clock.Now,
	}, t.Name())
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() {
		if err := logger.Close(); err != nil {
			t.Logf("closing log: %v", err)
		}
	})
	log := logger.Named(t.Name())

	ctx := context.Background()
	bc, err := s.launcher(ctx, cfg, logger.Named("browser"))
	if err != nil {
		log.Warnf("Browser launch failed: %v", err)
		t.Skipf("browser %s unavailable: %v", cfg.Driver, err)
	}

	// cleanups run last-in first-out, so the screenshot is taken before close
	t.Cleanup(func() {
		if err := bc.Close(); err != nil {
			log.Warnf("Failed to close browser: %v", err)
		}
	})
	t.Cleanup(func() {
		if !cfg.ScreenshotOnFailure {
			return
		}
		path, err := CaptureOnFailure(context.Background(), t, bc, cfg.ScreenshotPath, s.clock.Now)
		if err != nil {
			log.Errorf("Failed to capture failure screenshot: %v", err)
			return
		}
		if path != "" {
			log.Infof("Screenshot saved: %s", path)
		}
	})

	waiter := wait.New(cfg.Timeout, cfg.PollInterval)
	waiter.Clock = s.clock

	log.WithField("driver", cfg.Driver).Infof("Browser ready for %s", cfg.BaseURL())
	return &Fixture{
		Ctx:     ctx,
		Config:  cfg,
		Logger:  logger,
		Log:     log,
		Steps:   logging.NewStepLogger(log),
		Browser: bc,
		Waiter:  waiter,
	}
}

// LoggedIn - like New, then authenticates by restoring SESSION_FILE or through the login form
func LoggedIn(t testing.TB, opts ...Option) *Fixture {
	t.Helper()

	f := New(t, opts...)
	store := storage.NewSessionFile(f.Config.SessionFile)

	result, err := session.LoginWithSessionReuse(f.Ctx, f.Browser, store, f.Config.Credentials(), session.Options{
		EntryURL:      f.Config.BaseURL(),
		LandingURL:    f.Config.LandingURL(),
		LandingMarker: f.Config.LandingMarker,
		Form:          pages.LoginFormLocators(),
		Waiter:        f.Waiter,
		Logger:        f.Logger.Named("session"),
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.Restored = result.Restored
	return f
}

// Base - a page object over the fixture's browser
func (f *Fixture) Base() *pages.BasePage {
	return pages.NewBasePage(f.Browser, f.Waiter, f.Log)
}

// LoginPage - the login page of the configured environment
func (f *Fixture) LoginPage() *pages.LoginPage {
	return pages.NewLoginPage(f.Base(), f.Config.BaseURL())
}

// DashboardPage - the dashboard of the configured environment
func (f *Fixture) DashboardPage() *pages.DashboardPage {
	return pages.NewDashboardPage(f.Base(), f.Config.BaseURL())
}

// WaitTimeout - the configured explicit-wait timeout
func (f *Fixture) WaitTimeout() time.Duration {
	return f.Waiter.EffectiveTimeout()
}
