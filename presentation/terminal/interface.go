// Package terminal is the e2e command line: warm or inspect the saved
// session and run one-off page checks against the configured environment.
package terminal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"e2e_automation/application/pages"
	"e2e_automation/application/session"
	"e2e_automation/application/wait"
	"e2e_automation/domain/entities"
	"e2e_automation/domain/interfaces"
	"e2e_automation/infrastructure/browser"
	"e2e_automation/infrastructure/config"
	"e2e_automation/infrastructure/logging"
	"e2e_automation/infrastructure/security"
	"e2e_automation/infrastructure/storage"
)

type TerminalInterface struct {
	root     *cobra.Command
	launcher browser.Launcher
	security interfaces.SecurityLayer

	env      string
	driver   string
	headless bool
	timeout  string
}

// NewTerminalInterface - builds the command tree around the real browser drivers
func NewTerminalInterface() *TerminalInterface {
	return newTerminalInterface(browser.New)
}

func newTerminalInterface(launcher browser.Launcher) *TerminalInterface {
	t := &TerminalInterface{
		launcher: launcher,
		security: security.NewSecurityLayer(),
	}

	root := &cobra.Command{
		Use:           "e2e",
		Short:         "Browser end-to-end harness tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&t.env, "env", "", "environment name (ENV)")
	root.PersistentFlags().StringVar(&t.driver, "driver", "", "browser driver: playwright, selenium or chromedp (BROWSER_DRIVER)")
	root.PersistentFlags().BoolVar(&t.headless, "headless", true, "run the browser without a window (HEADLESS)")
	root.PersistentFlags().StringVar(&t.timeout, "timeout", "", "explicit wait timeout, seconds or a duration (TIMEOUT)")

	root.AddCommand(t.loginCmd(), t.sessionCmd(), t.screenshotCmd(), t.checkCmd(), t.envCmd())
	t.root = root
	return t
}

// Command - the root cobra command
func (t *TerminalInterface) Command() *cobra.Command {
	return t.root
}

// Run - executes the command line in os.Args
func (t *TerminalInterface) Run() error {
	return t.root.Execute()
}

// overrides - flags the user set explicitly win over the environment
func (t *TerminalInterface) overrides() map[string]string {
	flags := t.root.PersistentFlags()
	overrides := map[string]string{}
	if flags.Changed("env") {
		overrides["ENV"] = t.env
	}
	if flags.Changed("driver") {
		overrides["BROWSER_DRIVER"] = t.driver
	}
	if flags.Changed("headless") {
		overrides["HEADLESS"] = fmt.Sprintf("%t", t.headless)
	}
	if flags.Changed("timeout") {
		overrides["TIMEOUT"] = t.timeout
	}
	return overrides
}

func (t *TerminalInterface) loadConfig() (*config.Config, error) {
	return config.Load(t.overrides())
}

// run is one command invocation with a logger and, once opened, a browser
type run struct {
	cfg    *config.Config
	logger *logging.Logger
	bc     interfaces.BrowsingContext
}

func (t *TerminalInterface) start(cmd *cobra.Command, withBrowser bool) (*run, error) {
	cfg, err := t.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.Level(),
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	r := &run{cfg: cfg, logger: logger}
	if !withBrowser {
		return r, nil
	}

	bc, err := t.launcher(cmd.Context(), cfg, logger.Named("browser"))
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Driver, err)
	}
	r.bc = bc
	return r, nil
}

func (r *run) waiter() wait.Waiter {
	return wait.New(r.cfg.Timeout, r.cfg.PollInterval)
}

func (r *run) close() {
	if r.bc != nil {
		if err := r.bc.Close(); err != nil {
			r.logger.Warnf("Failed to close browser: %v", err)
		}
	}
	r.logger.Close()
}

func (t *TerminalInterface) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to the configured environment and save the session for test runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := t.start(cmd, true)
			if err != nil {
				return err
			}
			defer r.close()

			store := storage.NewSessionFile(r.cfg.SessionFile)
			result, err := session.LoginWithSessionReuse(cmd.Context(), r.bc, store, r.cfg.Credentials(), session.Options{
				EntryURL:      r.cfg.BaseURL(),
				LandingURL:    r.cfg.LandingURL(),
				LandingMarker: r.cfg.LandingMarker,
				Form:          pages.LoginFormLocators(),
				Waiter:        r.waiter(),
				Logger:        r.logger.Named("session"),
			})
			if err != nil {
				return err
			}

			if result.Restored {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved session in %s is still valid\n", r.cfg.SessionFile)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s; session saved to %s\n", r.cfg.Environment.Name, r.cfg.SessionFile)
			}
			return nil
		},
	}
}

func (t *TerminalInterface) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or remove the saved session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved cookies with their values redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			saved, err := storage.NewSessionFile(cfg.SessionFile).Load()
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "No saved session at %s\n", cfg.SessionFile)
				return nil
			}
			if err != nil {
				return err
			}

			data, err := storage.EncodeSession(t.security.RedactCookies(saved))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d cookies)\n%s\n", cfg.SessionFile, len(saved), data)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the saved session so the next run logs in through the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			if err := storage.NewSessionFile(cfg.SessionFile).Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared session: %s\n", cfg.SessionFile)
			return nil
		},
	})

	return cmd
}

func (t *TerminalInterface) screenshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screenshot <url> <file>",
		Short: "Load a page and save a PNG of it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, file := args[0], args[1]
			r, err := t.start(cmd, true)
			if err != nil {
				return err
			}
			defer r.close()

			base := pages.NewBasePage(r.bc, r.waiter(), r.logger.Named("screenshot"))
			if err := base.NavigateTo(cmd.Context(), url); err != nil {
				return err
			}
			if _, err := base.Waits().PageLoad(cmd.Context(), 0); err != nil {
				return err
			}

			data, err := r.bc.Screenshot(cmd.Context())
			if err != nil {
				return err
			}
			if dir := filepath.Dir(file); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(file, data, 0644); err != nil {
				return fmt.Errorf("failed to write screenshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", file, len(data))
			return nil
		},
	}
}

func (t *TerminalInterface) checkCmd() *cobra.Command {
	var marker string
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Load a page and wait for it to finish loading and show a marker element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := t.start(cmd, true)
			if err != nil {
				return err
			}
			defer r.close()

			loc := r.cfg.LandingMarker
			if marker != "" {
				loc = entities.ParseLocator(marker)
			}

			started := time.Now()
			base := pages.NewBasePage(r.bc, r.waiter(), r.logger.Named("check"))
			if err := base.NavigateTo(cmd.Context(), args[0]); err != nil {
				return err
			}
			loaded, err := base.Waits().PageLoad(cmd.Context(), 0)
			if err != nil {
				return err
			}
			if !loaded {
				return fmt.Errorf("page %s did not finish loading within %s", args[0], r.cfg.Timeout)
			}
			if _, err := base.FindElement(cmd.Context(), loc); err != nil {
				return err
			}

			title, err := r.bc.Title(cmd.Context())
			if err != nil {
				return err
			}
			r.logger.Named("check").WithFields(logrus.Fields{"url": args[0], "marker": loc.String()}).Info("Check passed")
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s %q (%s)\n", args[0], title, time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&marker, "marker", "", "element that must be present, e.g. id=sidebar (default LANDING_MARKER)")
	return cmd
}

func (t *TerminalInterface) envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the resolved configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, kv := range [][2]string{
				{"ENV", cfg.Environment.Name},
				{"BASE_URL", cfg.BaseURL()},
				{"E2E_USERNAME", cfg.Environment.Username},
				{"E2E_PASSWORD", cfg.Environment.Password},
				{"BROWSER_DRIVER", cfg.Driver},
				{"HEADLESS", fmt.Sprintf("%t", cfg.Headless)},
				{"TIMEOUT", cfg.Timeout.String()},
				{"POLL_INTERVAL", cfg.PollInterval.String()},
				{"SESSION_FILE", cfg.SessionFile},
				{"LANDING_URL", cfg.LandingURL()},
				{"LANDING_MARKER", cfg.LandingMarker.String()},
			} {
				fmt.Fprintf(out, "%-15s %s\n", kv[0], t.security.RedactValue(kv[0], kv[1]))
			}
			return nil
		},
	}
}
