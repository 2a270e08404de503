package pages

import (
	"context"
	"strings"

	"e2e_automation/domain/entities"
)

var (
	Sidebar          = entities.ID("sidebar")
	PageTitle        = entities.TagName("h1")
	UserMenu         = entities.ClassName("user-menu")
	LogoutButton     = entities.LinkText("Logout")
	NotificationIcon = entities.ID("notification-icon")
)

// DashboardPath is the landing page after login, relative to the base URL
const DashboardPath = "/dashboard"

// DashboardPage is the authenticated landing page
type DashboardPage struct {
	*BasePage
	dashboardURL string
}

func NewDashboardPage(base *BasePage, baseURL string) *DashboardPage {
	return &DashboardPage{BasePage: base, dashboardURL: strings.TrimRight(baseURL, "/") + DashboardPath}
}

// URL returns the dashboard address
func (p *DashboardPage) URL() string {
	return p.dashboardURL
}

func (p *DashboardPage) NavigateToDashboard(ctx context.Context) error {
	return p.NavigateTo(ctx, p.dashboardURL)
}

func (p *DashboardPage) IsSidebarDisplayed(ctx context.Context) bool {
	return p.IsDisplayed(ctx, Sidebar)
}

func (p *DashboardPage) PageTitle(ctx context.Context) (string, error) {
	return p.GetText(ctx, PageTitle)
}

func (p *DashboardPage) ClickUserMenu(ctx context.Context) error {
	return p.Click(ctx, UserMenu)
}

// Logout opens the user menu and follows the logout link
func (p *DashboardPage) Logout(ctx context.Context) error {
	if err := p.ClickUserMenu(ctx); err != nil {
		return err
	}
	return p.Click(ctx, LogoutButton)
}

func (p *DashboardPage) IsNotificationDisplayed(ctx context.Context) bool {
	return p.IsDisplayed(ctx, NotificationIcon)
}
