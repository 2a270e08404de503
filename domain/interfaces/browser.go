package interfaces

import (
	"context"

	"e2e_automation/domain/entities"
)

// BrowsingContext is the driver surface the harness depends on.
// Implementations live in infrastructure/browser; none of them is reimplemented here.
type BrowsingContext interface {
	Screenshottable

	// Navigate loads url in the active page
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL of the active page
	CurrentURL(ctx context.Context) (string, error)

	// Title returns the document title of the active page
	Title(ctx context.Context) (string, error)

	// FindElement looks the element up once, without waiting.
	// A missing element yields an errs.ElementNotFound error.
	FindElement(ctx context.Context, loc entities.Locator) (Element, error)

	// FindElements returns every match; no match is an empty slice, not an error
	FindElements(ctx context.Context, loc entities.Locator) ([]Element, error)

	// Cookies returns the cookies visible to the active page
	Cookies(ctx context.Context) ([]entities.Cookie, error)

	// AddCookies stores cookies in the context. Cookies without a domain
	// are scoped to the current page's origin.
	AddCookies(ctx context.Context, cookies []entities.Cookie) error

	// ExecuteScript evaluates a JavaScript expression and returns its value
	ExecuteScript(ctx context.Context, script string) (any, error)

	// WindowCount returns the number of open windows or tabs
	WindowCount(ctx context.Context) (int, error)

	// AlertText returns the message of the open JavaScript dialog and accepts it,
	// or an errs.NoAlert error. A dialog is reported once.
	AlertText(ctx context.Context) (string, error)

	// Close releases the browser
	Close() error
}

// Element is one located DOM element
type Element interface {
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Text(ctx context.Context) (string, error)
	// Attribute returns "" when the attribute is absent
	Attribute(ctx context.Context, name string) (string, error)
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	// Location reports an errs.StaleElement error for hidden or detached elements
	Location(ctx context.Context) (entities.Position, error)
}

// Screenshottable is anything the failure hook can capture
type Screenshottable interface {
	// Screenshot returns a PNG of the active page
	Screenshot(ctx context.Context) ([]byte, error)
}
