// Package session logs a browsing context in, reusing persisted cookies when
// the application still accepts them.
package session

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"e2e_automation/application/pages"
	"e2e_automation/application/wait"
	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"
)

// Options describe where the application lives and how its login form looks
type Options struct {
	// EntryURL is loaded before cookies are applied and to start an interactive login
	EntryURL string
	// LandingURL is where a logged-in user ends up
	LandingURL string
	// LandingMarker is only present on the landing page of a logged-in user
	LandingMarker entities.Locator
	Form          entities.LoginForm
	Waiter        wait.Waiter
	Logger        logrus.FieldLogger
}

// Result is an authenticated browsing context
type Result struct {
	Context interfaces.BrowsingContext
	// Restored is true when saved cookies were enough and no form was submitted
	Restored bool
}

func (o Options) validate() error {
	var missing []string
	if o.EntryURL == "" {
		missing = append(missing, "entry URL")
	}
	if o.LandingURL == "" {
		missing = append(missing, "landing URL")
	}
	if o.LandingMarker.Value == "" {
		missing = append(missing, "landing marker")
	}
	if o.Form.Username.Value == "" || o.Form.Password.Value == "" || o.Form.Submit.Value == "" {
		missing = append(missing, "login form locators")
	}
	if len(missing) > 0 {
		return errs.New(errs.InvalidConfig, fmt.Sprintf("login options missing %v", missing))
	}
	return nil
}

type flow struct {
	bc     interfaces.BrowsingContext
	store  interfaces.SessionStore
	creds  entities.Credentials
	opts   Options
	page   *pages.BasePage
	logger logrus.FieldLogger
}

// LoginWithSessionReuse authenticates bc. It first replays the cookies in
// store; when they are missing or no longer accepted it logs in through the
// form and overwrites store with the new cookies. Restore problems are
// logged and never returned. A failed interactive login is an
// errs.FatalLoginFailure.
func LoginWithSessionReuse(ctx context.Context, bc interfaces.BrowsingContext, store interfaces.SessionStore, creds entities.Credentials, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	f := &flow{
		bc:     bc,
		store:  store,
		creds:  creds,
		opts:   opts,
		page:   pages.NewBasePage(bc, opts.Waiter, logger),
		logger: logger,
	}

	logger.Info("Attempting to restore saved session")
	err := f.restore(ctx)
	if err == nil {
		logger.Info("Logged in with saved session")
		return Result{Context: bc, Restored: true}, nil
	}
	logger.Warnf("Session restore failed, logging in through the form: %v", err)

	if err = f.interactive(ctx); err != nil {
		return Result{}, errs.Wrap(errs.FatalLoginFailure, "interactive login failed", err)
	}
	return Result{Context: bc, Restored: false}, nil
}

func (f *flow) restore(ctx context.Context) error {
	cookies, err := f.store.Load()
	if err != nil {
		return errs.Wrap(errs.SessionRestoreFailed, "failed to load saved session", err)
	}
	if len(cookies) == 0 {
		return errs.New(errs.SessionRestoreFailed, "no saved session")
	}

	if err := f.page.NavigateTo(ctx, f.opts.EntryURL); err != nil {
		return errs.Wrap(errs.SessionRestoreFailed, "failed to open entry page", err)
	}
	if err := f.bc.AddCookies(ctx, cookies); err != nil {
		return errs.Wrap(errs.SessionRestoreFailed, "failed to apply saved cookies", err)
	}
	f.logger.Debugf("Applied %d saved cookies", len(cookies))

	if err := f.page.NavigateTo(ctx, f.opts.LandingURL); err != nil {
		return errs.Wrap(errs.SessionRestoreFailed, "failed to open landing page", err)
	}
	if _, err := f.page.FindElement(ctx, f.opts.LandingMarker); err != nil {
		return errs.Wrap(errs.SessionRestoreFailed, "saved session was not accepted", err)
	}
	return nil
}

func (f *flow) interactive(ctx context.Context) error {
	form := f.opts.Form
	if err := f.page.NavigateTo(ctx, f.opts.EntryURL); err != nil {
		return err
	}
	if form.Link != nil {
		if err := f.page.Click(ctx, *form.Link); err != nil {
			return err
		}
	}
	if err := f.page.InputText(ctx, form.Username, f.creds.Username); err != nil {
		return err
	}
	if err := f.page.InputText(ctx, form.Password, f.creds.Password); err != nil {
		return err
	}
	if err := f.page.Click(ctx, form.Submit); err != nil {
		return err
	}

	if err := f.page.WaitForURL(ctx, f.opts.LandingURL, 0); err != nil {
		return err
	}
	if _, err := f.page.FindElement(ctx, f.opts.LandingMarker); err != nil {
		return err
	}
	f.logger.Info("Logged in through the login form")

	cookies, err := f.bc.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	if err := f.store.Save(cookies); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	f.logger.Infof("Saved %d cookies for the next run", len(cookies))
	return nil
}
