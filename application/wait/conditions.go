package wait

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"
)

const (
	spinnerAppearTimeout  = 2 * time.Second
	stabilityPollInterval = 100 * time.Millisecond
)

var errElementGone = errors.New("element left the page")

// Helpers are ready-made waits against one browsing context. Every helper
// takes a timeout where zero means the Waiter's own timeout, and reports a
// timeout through its boolean result rather than an error.
type Helpers struct {
	bc     interfaces.BrowsingContext
	waiter Waiter
	logger logrus.FieldLogger
}

// NewHelpers binds waits to bc. A nil logger discards output.
func NewHelpers(bc interfaces.BrowsingContext, waiter Waiter, logger logrus.FieldLogger) *Helpers {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Helpers{bc: bc, waiter: waiter, logger: logger}
}

// Waiter returns the helpers' polling parameters
func (h *Helpers) Waiter() Waiter {
	return h.waiter
}

func (h *Helpers) until(ctx context.Context, timeout time.Duration, what string, cond Condition) (bool, error) {
	w := h.waiter.WithTimeout(timeout)
	ok, err := w.Until(ctx, cond)
	if err == nil && !ok {
		h.logger.Debugf("wait for %s timed out after %s", what, w.timeout())
	}
	return ok, err
}

// ElementPresent waits until loc matches an element and returns it
func (h *Helpers) ElementPresent(ctx context.Context, loc entities.Locator, timeout time.Duration) (interfaces.Element, bool, error) {
	return Value(ctx, h.waiter.WithTimeout(timeout), func(ctx context.Context) (interfaces.Element, bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if err != nil {
			return nil, false, err
		}
		return el, true, nil
	})
}

// ElementClickable waits until loc matches a displayed, enabled element and returns it
func (h *Helpers) ElementClickable(ctx context.Context, loc entities.Locator, timeout time.Duration) (interfaces.Element, bool, error) {
	return Value(ctx, h.waiter.WithTimeout(timeout), func(ctx context.Context) (interfaces.Element, bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if err != nil {
			return nil, false, err
		}
		shown, err := el.IsDisplayed(ctx)
		if err != nil || !shown {
			return nil, false, err
		}
		enabled, err := el.IsEnabled(ctx)
		if err != nil || !enabled {
			return nil, false, err
		}
		return el, true, nil
	})
}

// ElementDisappears waits until loc matches nothing or only a hidden element.
// Useful for loading spinners and overlays.
func (h *Helpers) ElementDisappears(ctx context.Context, loc entities.Locator, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "disappearance of "+loc.String(), func(ctx context.Context) (bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if errs.Is(err, errs.ElementNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		shown, err := el.IsDisplayed(ctx)
		if errs.Is(err, errs.StaleElement) {
			return true, nil
		}
		return !shown, err
	})
}

// AjaxComplete waits until jQuery reports no active requests.
// A page without jQuery counts as complete.
func (h *Helpers) AjaxComplete(ctx context.Context, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "ajax completion", func(ctx context.Context) (bool, error) {
		v, err := h.bc.ExecuteScript(ctx, "jQuery.active == 0")
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			return true, nil
		}
		done, _ := v.(bool)
		return done, nil
	})
}

// PageLoad waits until document.readyState is complete
func (h *Helpers) PageLoad(ctx context.Context, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "page load", func(ctx context.Context) (bool, error) {
		v, err := h.bc.ExecuteScript(ctx, "document.readyState")
		if err != nil {
			return false, err
		}
		state, _ := v.(string)
		return state == "complete", nil
	})
}

// ElementAttribute waits until the attribute of loc equals value
func (h *Helpers) ElementAttribute(ctx context.Context, loc entities.Locator, attribute, value string, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, attribute+" of "+loc.String(), func(ctx context.Context) (bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if err != nil {
			return false, err
		}
		got, err := el.Attribute(ctx, attribute)
		if err != nil {
			return false, err
		}
		return got == value, nil
	})
}

// ElementCount waits until exactly count elements match loc
func (h *Helpers) ElementCount(ctx context.Context, loc entities.Locator, count int, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "count of "+loc.String(), func(ctx context.Context) (bool, error) {
		els, err := h.bc.FindElements(ctx, loc)
		if err != nil {
			return false, err
		}
		return len(els) == count, nil
	})
}

// TextInElement waits until the text of loc contains text
func (h *Helpers) TextInElement(ctx context.Context, loc entities.Locator, text string, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "text in "+loc.String(), func(ctx context.Context) (bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if err != nil {
			return false, err
		}
		got, err := el.Text(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(got, text), nil
	})
}

// URLContains waits until the current URL contains part
func (h *Helpers) URLContains(ctx context.Context, part string, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "url containing "+part, func(ctx context.Context) (bool, error) {
		url, err := h.bc.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(url, part), nil
	})
}

// URLIs waits until the current URL equals url
func (h *Helpers) URLIs(ctx context.Context, url string, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "url "+url, func(ctx context.Context) (bool, error) {
		current, err := h.bc.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return current == url, nil
	})
}

// AlertPresent waits for a JavaScript dialog and returns its message
func (h *Helpers) AlertPresent(ctx context.Context, timeout time.Duration) (string, bool, error) {
	return Value(ctx, h.waiter.WithTimeout(timeout), func(ctx context.Context) (string, bool, error) {
		text, err := h.bc.AlertText(ctx)
		if errs.Is(err, errs.NoAlert) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	})
}

// NewWindow waits until more than current windows are open
func (h *Helpers) NewWindow(ctx context.Context, current int, timeout time.Duration) (bool, error) {
	return h.until(ctx, timeout, "new window", func(ctx context.Context) (bool, error) {
		n, err := h.bc.WindowCount(ctx)
		if err != nil {
			return false, err
		}
		return n > current, nil
	})
}

// LoadingSpinner waits briefly for the spinner at loc to show up, then for it
// to go away. A spinner that never shows up (fast load) or never goes away
// is not an error; only driver failures are returned.
func (h *Helpers) LoadingSpinner(ctx context.Context, loc entities.Locator, timeout time.Duration) error {
	_, appeared, err := h.ElementPresent(ctx, loc, spinnerAppearTimeout)
	if err != nil {
		return err
	}
	if !appeared {
		h.logger.Debugf("spinner %s never appeared", loc)
		return nil
	}
	_, err = h.ElementDisappears(ctx, loc, timeout)
	return err
}

// ElementStable waits until the element at loc has kept the same position
// for stableFor of elapsed time. It returns false as soon as the element
// cannot be found.
func (h *Helpers) ElementStable(ctx context.Context, loc entities.Locator, stableFor, timeout time.Duration) (bool, error) {
	w := h.waiter.WithTimeout(timeout)
	w.Interval = stabilityPollInterval
	w.Ignore = func(error) bool { return false }
	clock := w.clock()

	var (
		last  *entities.Position
		since time.Time
	)
	ok, err := w.Until(ctx, func(ctx context.Context) (bool, error) {
		el, err := h.bc.FindElement(ctx, loc)
		if err != nil {
			if IsNotYet(err) {
				return false, errElementGone
			}
			return false, err
		}
		pos, err := el.Location(ctx)
		if err != nil {
			if IsNotYet(err) {
				return false, errElementGone
			}
			return false, err
		}

		now := clock.Now()
		if last == nil || *last != pos {
			last = &pos
			since = now
			return stableFor <= 0, nil
		}
		return now.Sub(since) >= stableFor, nil
	})
	if errors.Is(err, errElementGone) {
		h.logger.Debugf("element %s disappeared while waiting for it to settle", loc)
		return false, nil
	}
	return ok, err
}
