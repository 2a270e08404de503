package fakebrowser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"e2e_automation/domain/entities"
)

// SessionCookie is the cookie App issues on login
const SessionCookie = "sid"

// App is a small application under test: an entry page with a Login link, a
// login form, and a dashboard that renders only for a live session cookie.
type App struct {
	BaseURL  string
	Username string
	Password string

	mu       sync.Mutex
	sessions map[string]bool
	issued   int
	attempts int
}

// NewApp returns an app served at baseURL that accepts one user
func NewApp(baseURL, username, password string) *App {
	return &App{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		sessions: make(map[string]bool),
	}
}

func (a *App) LoginURL() string     { return a.BaseURL + "/login" }
func (a *App) DashboardURL() string { return a.BaseURL + "/dashboard" }

// Install routes the app's pages in b
func (a *App) Install(b *Browser) {
	b.Route(a.BaseURL, a.home)
	b.Route(a.BaseURL+"/", a.home)
	b.Route(a.LoginURL(), a.login)
	b.Route(a.DashboardURL(), a.dashboard)
}

// Attempts returns how many times the login form was submitted
func (a *App) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

// Issue creates a live session and returns its cookie, as an earlier run would have saved it
func (a *App) Issue() entities.Cookie {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.issueLocked()
}

func (a *App) issueLocked() entities.Cookie {
	a.issued++
	id := fmt.Sprintf("session-%d", a.issued)
	a.sessions[id] = true
	return entities.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Domain:   hostOf(a.BaseURL),
		Path:     "/",
		Expires:  -1,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// RevokeAll ends every session, as a server-side expiry would
func (a *App) RevokeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = make(map[string]bool)
}

func (a *App) valid(b *Browser) bool {
	id, ok := b.Cookie(SessionCookie)
	if !ok {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[id]
}

func (a *App) home(*Browser) *Page {
	return &Page{
		Title: "Home",
		Elements: []*Node{{
			Locator: entities.LinkText("Login"),
			Text:    "Login",
			OnClick: func(b *Browser) { b.Go(a.LoginURL()) },
		}},
	}
}

func (a *App) login(*Browser) *Page {
	email := &Node{Locator: entities.Name("email")}
	password := &Node{Locator: entities.Name("password")}
	page := &Page{Title: "Sign in"}
	submit := &Node{Locator: entities.ClassName("login-button"), Text: "Sign in"}
	submit.OnClick = func(b *Browser) {
		a.mu.Lock()
		a.attempts++
		ok := email.Value() == a.Username && password.Value() == a.Password
		var cookie entities.Cookie
		if ok {
			cookie = a.issueLocked()
		}
		a.mu.Unlock()

		if !ok {
			b.Mutate(func(p *Page) {
				if p != page {
					return
				}
				p.Elements = append(p.Elements, &Node{
					Locator: entities.ClassName("error-message"),
					Text:    "Invalid email or password",
				})
			})
			return
		}
		_ = b.AddCookies(context.Background(), []entities.Cookie{cookie})
		b.Go(a.DashboardURL())
	}
	page.Elements = []*Node{email, password, submit}
	return page
}

func (a *App) dashboard(b *Browser) *Page {
	if !a.valid(b) {
		page := a.login(b)
		page.URL = a.LoginURL()
		return page
	}
	logout := &Node{Locator: entities.LinkText("Logout"), Text: "Logout", Hidden: true}
	logout.OnClick = func(b *Browser) {
		if id, ok := b.Cookie(SessionCookie); ok {
			a.mu.Lock()
			delete(a.sessions, id)
			a.mu.Unlock()
		}
		b.Go(a.BaseURL)
	}
	menu := &Node{Locator: entities.ClassName("user-menu"), Text: a.Username}
	menu.OnClick = func(b *Browser) {
		b.Mutate(func(*Page) { logout.Hidden = false })
	}
	return &Page{
		Title: "Dashboard",
		Elements: []*Node{
			{Locator: entities.ID("sidebar")},
			{Locator: entities.TagName("h1"), Text: "Dashboard"},
			menu,
			logout,
			{Locator: entities.ID("notification-icon")},
		},
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
