// Package fakebrowser is an in-memory BrowsingContext for unit tests.
//
// Pages are produced by per-URL handlers on every navigation, so a handler
// can look at the cookies the context carries and decide what to render,
// the same way the application under test would.
package fakebrowser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
	"e2e_automation/domain/interfaces"
)

// Handler renders the page served at a URL
type Handler func(b *Browser) *Page

// Page is the DOM of the current document
type Page struct {
	// URL overrides the navigated URL, as a redirect would
	URL      string
	Title    string
	Elements []*Node
}

// Node is one element in a Page
type Node struct {
	Locator  entities.Locator
	Text     string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Pos      entities.Position
	// OnClick runs with the browser lock released
	OnClick func(b *Browser)

	value string
}

// Value returns what was typed into the node
func (n *Node) Value() string { return n.value }

// Browser implements interfaces.BrowsingContext
type Browser struct {
	mu          sync.Mutex
	routes      map[string]Handler
	page        *Page
	url         string
	cookies     []entities.Cookie
	windows     int
	alert       string
	scripts     map[string]func() (any, error)
	screenshot  []byte
	shotErr     error
	navigations []string
	lookups     []entities.Locator
	closed      bool
}

var _ interfaces.BrowsingContext = (*Browser)(nil)

// New returns an empty browser on about:blank
func New() *Browser {
	return &Browser{
		routes:     make(map[string]Handler),
		page:       &Page{},
		url:        "about:blank",
		windows:    1,
		scripts:    map[string]func() (any, error){"document.readyState": func() (any, error) { return "complete", nil }},
		screenshot: []byte("\x89PNG fake"),
	}
}

// Route registers the handler for url
func (b *Browser) Route(url string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = h
}

// Script registers the result of a script expression
func (b *Browser) Script(expr string, fn func() (any, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[expr] = fn
}

// SetAlert opens (non-empty) or dismisses (empty) a dialog
func (b *Browser) SetAlert(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alert = text
}

// SetWindows sets the window count
func (b *Browser) SetWindows(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = n
}

// SetScreenshot sets what Screenshot returns
func (b *Browser) SetScreenshot(data []byte, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.screenshot = data
	b.shotErr = err
}

// Mutate edits the current page in place
func (b *Browser) Mutate(fn func(p *Page)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.page)
}

// SetCookieJar replaces every cookie in the context
func (b *Browser) SetCookieJar(cookies []entities.Cookie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookies = append([]entities.Cookie(nil), cookies...)
}

// Cookie returns the value of the named cookie
func (b *Browser) Cookie(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Navigations returns every URL passed to Navigate or reached by a click
func (b *Browser) Navigations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.navigations...)
}

// Lookups returns every locator passed to FindElement or FindElements
func (b *Browser) Lookups() []entities.Locator {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entities.Locator(nil), b.lookups...)
}

// Closed reports whether Close was called
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Node returns the node matching loc on the current page
func (b *Browser) Node(loc entities.Locator) *Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findLocked(loc)
}

// Go navigates without a context; handlers use it to redirect from OnClick
func (b *Browser) Go(url string) {
	b.mu.Lock()
	h, ok := b.routes[url]
	b.navigations = append(b.navigations, url)
	b.mu.Unlock()

	page := &Page{}
	if ok {
		page = h(b)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = page
	b.url = url
	if page.URL != "" {
		b.url = page.URL
	}
}

func (b *Browser) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("browser has been closed")
	}
	return nil
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	b.Go(url)
	return nil
}

func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	if err := b.checkOpen(ctx); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url, nil
}

func (b *Browser) Title(ctx context.Context) (string, error) {
	if err := b.checkOpen(ctx); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.Title, nil
}

func (b *Browser) findLocked(loc entities.Locator) *Node {
	for _, n := range b.page.Elements {
		if matches(n.Locator, loc) {
			return n
		}
	}
	return nil
}

func matches(have, want entities.Locator) bool {
	if have.By == want.By && have.Value == want.Value {
		return true
	}
	if want.By == entities.ByPartialLinkText && have.By == entities.ByLinkText {
		return strings.Contains(have.Value, want.Value)
	}
	return false
}

func (b *Browser) FindElement(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	if err := b.checkOpen(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookups = append(b.lookups, loc)
	n := b.findLocked(loc)
	if n == nil {
		return nil, errs.New(errs.ElementNotFound, fmt.Sprintf("no element matches %s", loc))
	}
	return &element{b: b, node: n}, nil
}

func (b *Browser) FindElements(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if err := b.checkOpen(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookups = append(b.lookups, loc)
	var out []interfaces.Element
	for _, n := range b.page.Elements {
		if matches(n.Locator, loc) {
			out = append(out, &element{b: b, node: n})
		}
	}
	return out, nil
}

func (b *Browser) Cookies(ctx context.Context) ([]entities.Cookie, error) {
	if err := b.checkOpen(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entities.Cookie(nil), b.cookies...), nil
}

func (b *Browser) AddCookies(ctx context.Context, cookies []entities.Cookie) error {
	if err := b.checkOpen(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.url == "about:blank" {
		return fmt.Errorf("cannot set cookies on about:blank")
	}
	for _, c := range cookies {
		if c.Name == "" {
			return fmt.Errorf("cookie name is required")
		}
		replaced := false
		for i := range b.cookies {
			if b.cookies[i].Name == c.Name {
				b.cookies[i] = c
				replaced = true
			}
		}
		if !replaced {
			b.cookies = append(b.cookies, c)
		}
	}
	return nil
}

func (b *Browser) ExecuteScript(ctx context.Context, script string) (any, error) {
	if err := b.checkOpen(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	fn, ok := b.scripts[script]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ReferenceError: cannot evaluate %q", script)
	}
	return fn()
}

func (b *Browser) WindowCount(ctx context.Context) (int, error) {
	if err := b.checkOpen(ctx); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows, nil
}

func (b *Browser) AlertText(ctx context.Context) (string, error) {
	if err := b.checkOpen(ctx); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alert == "" {
		return "", errs.New(errs.NoAlert, "no alert open")
	}
	text := b.alert
	b.alert = ""
	return text, nil
}

func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	if err := b.checkOpen(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shotErr != nil {
		return nil, b.shotErr
	}
	return append([]byte(nil), b.screenshot...), nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
