package browser

import (
	"context"
	"fmt"
	"sync"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// ChromedpController drives Chrome over the DevTools protocol
type ChromedpController struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	opts        Options
	logger      logrus.FieldLogger

	mu     sync.Mutex
	dialog *string
	closed bool
}

var _ interfaces.BrowsingContext = (*ChromedpController)(nil)

// NewChromedpController - launches Chrome and attaches to its first tab
func NewChromedpController(parent context.Context, opts Options) (*ChromedpController, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ChromeBinaryPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromeBinaryPath))
	}

	// the browser lives until Close, not until parent is done
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(parent), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(opts.Logger.Debugf))

	c := &ChromedpController{
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
		opts:        opts,
		logger:      opts.Logger,
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			message := e.Message
			c.mu.Lock()
			c.dialog = &message
			c.mu.Unlock()

			c.logger.Debugf("Accepting %s dialog: %s", e.Type, e.Message)
			go func() {
				if err := chromedp.Run(browserCtx, page.HandleJavaScriptDialog(true)); err != nil && !isClosedError(err) {
					c.logger.Warnf("Failed to accept dialog: %v", err)
				}
			}()
		}
	})

	// the first Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return c, nil
}

// run - executes actions against the browser tab unless ctx is already done
func (c *ChromedpController) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("browser has been closed")
	}
	return chromedp.Run(c.ctx, actions...)
}

// Navigate - navigates to url and waits for the load event
func (c *ChromedpController) Navigate(ctx context.Context, url string) error {
	c.mu.Lock()
	c.dialog = nil
	c.mu.Unlock()

	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.opts.PageLoadTimeout)
		defer cancel()
		return chromedp.Navigate(url).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns the URL of the tab
func (c *ChromedpController) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := c.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Title - returns the document title of the tab
func (c *ChromedpController) Title(ctx context.Context) (string, error) {
	var title string
	if err := c.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// nodes - queries without waiting for a match
func (c *ChromedpController) nodes(ctx context.Context, loc entities.Locator) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	var query chromedp.Action
	if css, ok := cssFor(loc); ok {
		query = chromedp.Nodes(css, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))
	} else if xpath, ok := xpathFor(loc); ok {
		query = chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	} else {
		return nil, fmt.Errorf("unsupported locator strategy %q", loc.By)
	}
	if err := c.run(ctx, query); err != nil {
		return nil, classify(err, fmt.Sprintf("failed to query %s", loc))
	}
	return nodes, nil
}

// FindElement - looks the element up once
func (c *ChromedpController) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	nodes, err := c.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errs.New(errs.ElementNotFound, fmt.Sprintf("no element matches %s", loc))
	}
	return &chromedpElement{c: c, node: nodes[0]}, nil
}

// FindElements - returns every element matching loc
func (c *ChromedpController) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	nodes, err := c.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	elements := make([]interfaces.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromedpElement{c: c, node: n})
	}
	return elements, nil
}

// Cookies - returns the cookies visible to the tab
func (c *ChromedpController) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	var cdpCookies []*network.Cookie
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cdpCookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies failed: %w", err)
	}
	return fromCDPCookies(cdpCookies), nil
}

// AddCookies - stores cookies in the browser
func (c *ChromedpController) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	pageURL, err := c.CurrentURL(ctx)
	if err != nil {
		return err
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie.Name == "" {
			return fmt.Errorf("cookie name is required")
		}
		params = append(params, toCDPCookie(cookie, pageURL))
	}

	err = c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set cookies failed: %w", err)
	}
	return nil
}

// ExecuteScript - evaluates a JavaScript expression in the tab
func (c *ChromedpController) ExecuteScript(ctx context.Context, script string) (any, error) {
	var result any
	if err := c.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		return nil, fmt.Errorf("failed to execute script: %w", err)
	}
	return result, nil
}

// WindowCount - returns the number of open page targets
func (c *ChromedpController) WindowCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	targets, err := chromedp.Targets(c.ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list targets: %w", err)
	}
	count := 0
	for _, t := range targets {
		if t.Type == "page" {
			count++
		}
	}
	return count, nil
}

// AlertText - returns the message of the last dialog raised and forgets it
func (c *ChromedpController) AlertText(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog == nil {
		return "", errs.New(errs.NoAlert, "no dialog is showing")
	}
	text := *c.dialog
	c.dialog = nil
	return text, nil
}

// Screenshot - captures the full page as PNG
func (c *ChromedpController) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// quality 100 keeps the capture lossless PNG
	if err := c.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return buf, nil
}

// Close - closes the tab and shuts the browser down
func (c *ChromedpController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var closeErr error
	if err := chromedp.Cancel(c.ctx); err != nil && !isClosedError(err) && err != context.Canceled {
		closeErr = fmt.Errorf("failed to close browser: %w", err)
	}
	c.cancel()
	c.allocCancel()
	return closeErr
}

type chromedpElement struct {
	c    *ChromedpController
	node *cdp.Node
}

// call - runs a JavaScript function with the element bound to this
func (e *chromedpElement) call(ctx context.Context, function string, res any, what string) error {
	err := e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		// release fails after a navigation
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		}()
		return chromedp.CallFunctionOn(function, res, onObject(obj.ObjectID)).Do(ctx)
	}))
	return classify(err, what)
}

// onObject - binds a function call to a resolved remote object
func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

func (e *chromedpElement) Click(ctx context.Context) error {
	err := e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to get box model: %w", err)
		}
		if len(box.Content) < 8 {
			return fmt.Errorf("element has no clickable area")
		}
		x := (box.Content[0] + box.Content[2] + box.Content[4] + box.Content[6]) / 4
		y := (box.Content[1] + box.Content[3] + box.Content[5] + box.Content[7]) / 4
		return chromedp.MouseClickXY(x, y).Do(ctx)
	}))
	return classify(err, "failed to click element")
}

func (e *chromedpElement) Clear(ctx context.Context) error {
	const clear = `function() {
		this.value = "";
		this.dispatchEvent(new Event("input", {bubbles: true}));
		this.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	}`
	var cleared bool
	return e.call(ctx, clear, &cleared, "failed to clear element")
}

func (e *chromedpElement) SendKeys(ctx context.Context, text string) error {
	err := e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.Focus().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			return fmt.Errorf("failed to focus element: %w", err)
		}
		return chromedp.KeyEvent(text).Do(ctx)
	}))
	return classify(err, "failed to type into element")
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, `function() { return this.innerText === undefined ? this.textContent : this.innerText; }`, &text, "failed to read element text")
	return text, err
}

func (e *chromedpElement) Attribute(ctx context.Context, name string) (string, error) {
	var value string
	fn := fmt.Sprintf(`function() {
		if (%[1]q === "value" && "value" in this) { return String(this.value); }
		const v = this.getAttribute(%[1]q);
		return v === null ? "" : v;
	}`, name)
	err := e.call(ctx, fn, &value, fmt.Sprintf("failed to read attribute %q", name))
	return value, err
}

func (e *chromedpElement) IsDisplayed(ctx context.Context) (bool, error) {
	var visible bool
	const fn = `function() {
		const style = window.getComputedStyle(this);
		if (style.visibility === "hidden" || style.display === "none") { return false; }
		const rect = this.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	}`
	err := e.call(ctx, fn, &visible, "failed to read element visibility")
	return visible, err
}

func (e *chromedpElement) IsEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.call(ctx, `function() { return !this.disabled; }`, &enabled, "failed to read element state")
	return enabled, err
}

func (e *chromedpElement) Location(ctx context.Context) (entities.Position, error) {
	var pos *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	const fn = `function() {
		if (!this.isConnected || this.getClientRects().length === 0) { return null; }
		const rect = this.getBoundingClientRect();
		return {x: rect.left + window.scrollX, y: rect.top + window.scrollY};
	}`
	if err := e.call(ctx, fn, &pos, "failed to read element position"); err != nil {
		return entities.Position{}, err
	}
	if pos == nil {
		return entities.Position{}, errs.New(errs.StaleElement, "element has no bounding box")
	}
	return entities.Position{X: int(pos.X), Y: int(pos.Y)}, nil
}
