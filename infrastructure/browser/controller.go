package browser

import (
	"context"
	"fmt"
	"sync"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// PlaywrightController drives Chromium through playwright-go
type PlaywrightController struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	pages      []playwright.Page
	dialogs    map[playwright.Page]string
	pagesMutex sync.Mutex
	opts       Options
	logger     logrus.FieldLogger
}

var _ interfaces.BrowsingContext = (*PlaywrightController)(nil)

// NewPlaywrightController - starts playwright and opens one page in a fresh context
func NewPlaywrightController(opts Options) (*PlaywrightController, error) {
	opts = opts.withDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-popup-blocking",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-notifications",
		},
	}
	if opts.ChromeBinaryPath != "" {
		launchOptions.ExecutablePath = playwright.String(opts.ChromeBinaryPath)
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bc, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.WindowWidth,
			Height: opts.WindowHeight,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	controller := &PlaywrightController{
		pw:      pw,
		browser: browser,
		context: bc,
		dialogs: make(map[playwright.Page]string),
		opts:    opts,
		logger:  opts.Logger,
	}

	bc.OnPage(controller.track)

	page, err := bc.NewPage()
	if err != nil {
		controller.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	controller.track(page)

	return controller, nil
}

// track - makes a newly opened page active and captures its dialogs
func (b *PlaywrightController) track(newPage playwright.Page) {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()

	for _, p := range b.pages {
		if p == newPage {
			return
		}
	}
	b.pages = append(b.pages, newPage)
	b.page = newPage

	newPage.OnDialog(func(dialog playwright.Dialog) {
		b.pagesMutex.Lock()
		b.dialogs[newPage] = dialog.Message()
		b.pagesMutex.Unlock()

		b.logger.Debugf("Accepting %s dialog: %s", dialog.Type(), dialog.Message())
		if err := dialog.Accept(); err != nil && !isClosedError(err) {
			b.logger.Warnf("Failed to accept dialog: %v", err)
		}
	})

	newPage.OnClose(func(closedPage playwright.Page) {
		b.pagesMutex.Lock()
		defer b.pagesMutex.Unlock()

		for i, p := range b.pages {
			if p == closedPage {
				b.pages = append(b.pages[:i], b.pages[i+1:]...)
				break
			}
		}
		delete(b.dialogs, closedPage)

		if b.page == closedPage && len(b.pages) > 0 {
			b.page = b.pages[len(b.pages)-1]
		}
	})
}

func (b *PlaywrightController) current() (playwright.Page, error) {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()
	if b.page == nil || b.context == nil {
		return nil, fmt.Errorf("browser has been closed")
	}
	return b.page, nil
}

// Navigate - navigates to the specified URL and waits for the load event
func (b *PlaywrightController) Navigate(ctx context.Context, url string) error {
	currentPage, err := b.current()
	if err != nil {
		return err
	}

	b.pagesMutex.Lock()
	delete(b.dialogs, currentPage)
	b.pagesMutex.Unlock()

	_, err = currentPage.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(b.opts.PageLoadTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns the URL of the active page
func (b *PlaywrightController) CurrentURL(ctx context.Context) (string, error) {
	currentPage, err := b.current()
	if err != nil {
		return "", err
	}
	return currentPage.URL(), nil
}

// Title - returns the document title of the active page
func (b *PlaywrightController) Title(ctx context.Context) (string, error) {
	currentPage, err := b.current()
	if err != nil {
		return "", err
	}
	return currentPage.Title()
}

// FindElement - looks the element up once
func (b *PlaywrightController) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	currentPage, err := b.current()
	if err != nil {
		return nil, err
	}
	selector, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}

	handle, err := currentPage.QuerySelector(selector)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("failed to query %s", loc))
	}
	if handle == nil {
		return nil, errs.New(errs.ElementNotFound, fmt.Sprintf("no element matches %s", loc))
	}
	return &playwrightElement{handle: handle}, nil
}

// FindElements - returns every element matching loc
func (b *PlaywrightController) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	currentPage, err := b.current()
	if err != nil {
		return nil, err
	}
	selector, err := playwrightSelector(loc)
	if err != nil {
		return nil, err
	}

	handles, err := currentPage.QuerySelectorAll(selector)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("failed to query %s", loc))
	}
	elements := make([]interfaces.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements, nil
}

// Cookies - returns the cookies of the browser context
func (b *PlaywrightController) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	currentPage, err := b.current()
	if err != nil {
		return nil, err
	}
	pwCookies, err := currentPage.Context().Cookies()
	if err != nil {
		return nil, fmt.Errorf("get cookies failed: %w", err)
	}
	return fromPlaywrightCookies(pwCookies), nil
}

// AddCookies - adds cookies to the browser context
func (b *PlaywrightController) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	currentPage, err := b.current()
	if err != nil {
		return err
	}
	pageURL := currentPage.URL()

	pwCookies := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			return fmt.Errorf("cookie name is required")
		}
		pwCookies = append(pwCookies, toPlaywrightCookie(c, pageURL))
	}
	if err := currentPage.Context().AddCookies(pwCookies); err != nil {
		return fmt.Errorf("set cookies failed: %w", err)
	}
	return nil
}

// ExecuteScript - evaluates a JavaScript expression in the active page
func (b *PlaywrightController) ExecuteScript(ctx context.Context, script string) (any, error) {
	currentPage, err := b.current()
	if err != nil {
		return nil, err
	}
	result, err := currentPage.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("failed to execute script: %w", err)
	}
	return result, nil
}

// WindowCount - returns the number of open pages
func (b *PlaywrightController) WindowCount(ctx context.Context) (int, error) {
	currentPage, err := b.current()
	if err != nil {
		return 0, err
	}
	return len(currentPage.Context().Pages()), nil
}

// AlertText - returns the message of the last dialog the active page raised and forgets it
func (b *PlaywrightController) AlertText(ctx context.Context) (string, error) {
	currentPage, err := b.current()
	if err != nil {
		return "", err
	}
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()
	text, ok := b.dialogs[currentPage]
	if !ok {
		return "", errs.New(errs.NoAlert, "no dialog is showing")
	}
	delete(b.dialogs, currentPage)
	return text, nil
}

// Screenshot - takes a screenshot of the active page
func (b *PlaywrightController) Screenshot(ctx context.Context) ([]byte, error) {
	currentPage, err := b.current()
	if err != nil {
		return nil, err
	}
	data, err := currentPage.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return data, nil
}

// Close - closes the context, the browser and the playwright driver
func (b *PlaywrightController) Close() error {
	b.pagesMutex.Lock()
	bc, browser, pw := b.context, b.browser, b.pw
	b.context, b.browser, b.pw, b.page = nil, nil, nil, nil
	b.pagesMutex.Unlock()

	var closeErr error

	if bc != nil {
		if err := bc.Close(); err != nil && !isClosedError(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
	}

	if browser != nil {
		if err := browser.Close(); err != nil && !isClosedError(err) {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; failed to close browser: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}
	}

	if pw != nil {
		if err := pw.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
	}

	return closeErr
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Click(ctx context.Context) error {
	return classify(e.handle.Click(), "failed to click element")
}

func (e *playwrightElement) Clear(ctx context.Context) error {
	return classify(e.handle.Fill(""), "failed to clear element")
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	return classify(e.handle.Type(text), "failed to type into element")
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	text, err := e.handle.InnerText()
	return text, classify(err, "failed to read element text")
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	if name == "value" {
		if value, err := e.handle.InputValue(); err == nil {
			return value, nil
		}
	}
	value, err := e.handle.GetAttribute(name)
	return value, classify(err, fmt.Sprintf("failed to read attribute %q", name))
}

func (e *playwrightElement) IsDisplayed(ctx context.Context) (bool, error) {
	visible, err := e.handle.IsVisible()
	return visible, classify(err, "failed to read element visibility")
}

func (e *playwrightElement) IsEnabled(ctx context.Context) (bool, error) {
	enabled, err := e.handle.IsEnabled()
	return enabled, classify(err, "failed to read element state")
}

func (e *playwrightElement) Location(ctx context.Context) (entities.Position, error) {
	box, err := e.handle.BoundingBox()
	if err != nil {
		return entities.Position{}, classify(err, "failed to read element position")
	}
	if box == nil {
		// hidden or detached elements have no box
		return entities.Position{}, errs.New(errs.StaleElement, "element has no bounding box")
	}
	return entities.Position{X: int(box.X), Y: int(box.Y)}, nil
}
