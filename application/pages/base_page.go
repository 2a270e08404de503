// Package pages holds the page objects of the application under test.
package pages

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"e2e_automation/application/wait"
	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"
)

// BasePage is the shared behaviour of every page object. Lookups wait up to
// the waiter's timeout before giving up.
type BasePage struct {
	bc     interfaces.BrowsingContext
	waits  *wait.Helpers
	logger logrus.FieldLogger
}

// NewBasePage binds a page to a browsing context
func NewBasePage(bc interfaces.BrowsingContext, waiter wait.Waiter, logger logrus.FieldLogger) *BasePage {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &BasePage{bc: bc, waits: wait.NewHelpers(bc, waiter, logger), logger: logger}
}

// Context returns the page's browsing context
func (p *BasePage) Context() interfaces.BrowsingContext {
	return p.bc
}

// Waits returns the wait helpers bound to the page's context
func (p *BasePage) Waits() *wait.Helpers {
	return p.waits
}

// FindElement waits for loc to be present
func (p *BasePage) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	el, ok, err := p.waits.ElementPresent(ctx, loc, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", loc, err)
	}
	if !ok {
		return nil, errs.New(errs.Timeout, fmt.Sprintf("timed out after %s waiting for element %s", p.waits.Waiter().EffectiveTimeout(), loc))
	}
	return el, nil
}

// FindElements returns every current match without waiting
func (p *BasePage) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	els, err := p.bc.FindElements(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", loc, err)
	}
	return els, nil
}

// Click waits for loc to be clickable and clicks it
func (p *BasePage) Click(ctx context.Context, loc entities.Locator) error {
	el, ok, err := p.waits.ElementClickable(ctx, loc, 0)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	if !ok {
		return errs.New(errs.Timeout, fmt.Sprintf("element %s never became clickable", loc))
	}
	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("failed to click %s: %w", loc, err)
	}
	p.logger.Debugf("clicked %s", loc)
	return nil
}

// InputText replaces the content of loc with text
func (p *BasePage) InputText(ctx context.Context, loc entities.Locator, text string) error {
	el, err := p.FindElement(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s: %w", loc, err)
	}
	if err := el.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("failed to type into %s: %w", loc, err)
	}
	return nil
}

// GetText returns the visible text of loc
func (p *BasePage) GetText(ctx context.Context, loc entities.Locator) (string, error) {
	el, err := p.FindElement(ctx, loc)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", loc, err)
	}
	return text, nil
}

// IsDisplayed reports whether loc is present and visible. Any failure reads as false.
func (p *BasePage) IsDisplayed(ctx context.Context, loc entities.Locator) bool {
	el, err := p.FindElement(ctx, loc)
	if err != nil {
		return false
	}
	shown, err := el.IsDisplayed(ctx)
	return err == nil && shown
}

// WaitForURL waits until the current URL equals url; zero timeout uses the page default
func (p *BasePage) WaitForURL(ctx context.Context, url string, timeout time.Duration) error {
	return p.waits.Waiter().WithTimeout(timeout).Require(ctx, "url "+url, func(ctx context.Context) (bool, error) {
		current, err := p.bc.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return current == url, nil
	})
}

// WaitForURLContains waits until the current URL contains part
func (p *BasePage) WaitForURLContains(ctx context.Context, part string, timeout time.Duration) error {
	ok, err := p.waits.URLContains(ctx, part, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.Timeout, fmt.Sprintf("url never contained %q", part))
	}
	return nil
}

// CurrentURL returns the URL of the active page
func (p *BasePage) CurrentURL(ctx context.Context) (string, error) {
	return p.bc.CurrentURL(ctx)
}

// NavigateTo loads url
func (p *BasePage) NavigateTo(ctx context.Context, url string) error {
	p.logger.Debugf("navigating to %s", url)
	if err := p.bc.Navigate(ctx, url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}
