package browser

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

const defaultChromeDriverPort = 9515

// SeleniumController drives Chrome through chromedriver and the WebDriver protocol
type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  logrus.FieldLogger
}

var _ interfaces.BrowsingContext = (*SeleniumController)(nil)

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at BROWSER_DRIVER_PATH %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// freePort - asks the kernel for an unused local port
func freePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return defaultChromeDriverPort
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// chromeArgs - command-line switches for the launched Chrome
func chromeArgs(opts Options) []string {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", opts.WindowWidth, opts.WindowHeight),
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	return args
}

// NewSeleniumController - starts chromedriver and opens a WebDriver session
func NewSeleniumController(opts Options) (*SeleniumController, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	chromeBinary := findChromeBinary(opts.ChromeBinaryPath)
	if chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
	}

	port := freePort()
	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
		// dialogs stay open until AlertText reads and accepts them
		"unhandledPromptBehavior": "ignore",
	}

	chromeCaps := chrome.Capabilities{
		Args: chromeArgs(opts),
	}
	if chromeBinary != "" {
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	if err := wd.SetPageLoadTimeout(opts.PageLoadTimeout); err != nil {
		logger.Warnf("Failed to set page load timeout: %v", err)
	}

	return &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}, nil
}

// seleniumBy - maps a locator onto a WebDriver strategy
func seleniumBy(loc entities.Locator) (string, string, error) {
	switch loc.By {
	case entities.ByID:
		return selenium.ByID, loc.Value, nil
	case entities.ByName:
		return selenium.ByName, loc.Value, nil
	case entities.ByCSS:
		return selenium.ByCSSSelector, loc.Value, nil
	case entities.ByXPath:
		return selenium.ByXPATH, loc.Value, nil
	case entities.ByLinkText:
		return selenium.ByLinkText, loc.Value, nil
	case entities.ByPartialLinkText:
		return selenium.ByPartialLinkText, loc.Value, nil
	case entities.ByClassName:
		return selenium.ByClassName, loc.Value, nil
	case entities.ByTagName:
		return selenium.ByTagName, loc.Value, nil
	}
	return "", "", fmt.Errorf("unsupported locator strategy %q", loc.By)
}

// Navigate - navigates browser to specified URL
func (s *SeleniumController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debugf("Navigating to: %s", url)
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns current page URL
func (s *SeleniumController) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.CurrentURL()
}

// Title - returns current page title
func (s *SeleniumController) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.Title()
}

// FindElement - looks the element up once
func (s *SeleniumController) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	by, value, err := seleniumBy(loc)
	if err != nil {
		return nil, err
	}
	element, err := s.wd.FindElement(by, value)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("no element matches %s", loc))
	}
	return &seleniumElement{el: element}, nil
}

// FindElements - returns every element matching loc
func (s *SeleniumController) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	by, value, err := seleniumBy(loc)
	if err != nil {
		return nil, err
	}
	found, err := s.wd.FindElements(by, value)
	if err != nil {
		if errs.Is(classify(err, ""), errs.ElementNotFound) {
			return []interfaces.Element{}, nil
		}
		return nil, classify(err, fmt.Sprintf("failed to query %s", loc))
	}
	elements := make([]interfaces.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &seleniumElement{el: el})
	}
	return elements, nil
}

// Cookies - returns the cookies visible to the current page
func (s *SeleniumController) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wdCookies, err := s.wd.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("get cookies failed: %w", err)
	}
	return fromSeleniumCookies(wdCookies), nil
}

// AddCookies - adds cookies one by one, as WebDriver requires
func (s *SeleniumController) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	for _, c := range cookies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Name == "" {
			return fmt.Errorf("cookie name is required")
		}
		if err := s.wd.AddCookie(toSeleniumCookie(c)); err != nil {
			return fmt.Errorf("set cookie %s failed: %w", c.Name, err)
		}
	}
	return nil
}

// ExecuteScript - evaluates a JavaScript expression; WebDriver runs function bodies, so the expression is returned
func (s *SeleniumController) ExecuteScript(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.wd.ExecuteScript(fmt.Sprintf("return (%s);", script), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute script: %w", err)
	}
	return result, nil
}

// WindowCount - returns the number of open windows
func (s *SeleniumController) WindowCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	handles, err := s.wd.WindowHandles()
	if err != nil {
		return 0, fmt.Errorf("failed to list windows: %w", err)
	}
	return len(handles), nil
}

// AlertText - reads the open dialog and accepts it
func (s *SeleniumController) AlertText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.wd.AlertText()
	if err != nil {
		return "", classify(err, "failed to read alert")
	}
	if err := s.wd.AcceptAlert(); err != nil {
		s.logger.Warnf("Failed to accept alert: %v", err)
	}
	return text, nil
}

// Screenshot - takes screenshot of current page
func (s *SeleniumController) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.wd.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return data, nil
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumController) Close() error {
	var closeErr error
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil && !isClosedError(err) {
			closeErr = fmt.Errorf("failed to quit webdriver: %w", err)
		}
		s.wd = nil
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop chromedriver: %w", err)
		}
		s.service = nil
	}
	return closeErr
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e *seleniumElement) Click(ctx context.Context) error {
	return classify(e.el.Click(), "failed to click element")
}

func (e *seleniumElement) Clear(ctx context.Context) error {
	return classify(e.el.Clear(), "failed to clear element")
}

func (e *seleniumElement) SendKeys(ctx context.Context, text string) error {
	return classify(e.el.SendKeys(text), "failed to type into element")
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Text()
	return text, classify(err, "failed to read element text")
}

func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	value, err := e.el.GetAttribute(name)
	if err != nil {
		// a null attribute comes back as an error rather than an empty string
		if strings.Contains(err.Error(), "nil return value") {
			return "", nil
		}
		return "", classify(err, fmt.Sprintf("failed to read attribute %q", name))
	}
	return value, nil
}

func (e *seleniumElement) IsDisplayed(ctx context.Context) (bool, error) {
	displayed, err := e.el.IsDisplayed()
	return displayed, classify(err, "failed to read element visibility")
}

func (e *seleniumElement) IsEnabled(ctx context.Context) (bool, error) {
	enabled, err := e.el.IsEnabled()
	return enabled, classify(err, "failed to read element state")
}

func (e *seleniumElement) Location(ctx context.Context) (entities.Position, error) {
	displayed, err := e.el.IsDisplayed()
	if err != nil {
		return entities.Position{}, classify(err, "failed to read element position")
	}
	if !displayed {
		return entities.Position{}, errs.New(errs.StaleElement, "element has no bounding box")
	}
	point, err := e.el.Location()
	if err != nil {
		return entities.Position{}, classify(err, "failed to read element position")
	}
	return entities.Position{X: point.X, Y: point.Y}, nil
}
