package pages

import (
	"context"

	"e2e_automation/domain/entities"
)

var (
	LoginLink     = entities.LinkText("Login")
	EmailField    = entities.Name("email")
	PasswordField = entities.Name("password")
	LoginButton   = entities.ClassName("login-button")
	ErrorMessage  = entities.ClassName("error-message")
)

// LoginPage is the entry page and its login form
type LoginPage struct {
	*BasePage
	baseURL string
}

func NewLoginPage(base *BasePage, baseURL string) *LoginPage {
	return &LoginPage{BasePage: base, baseURL: baseURL}
}

// LoginFormLocators returns the login page controls
func LoginFormLocators() entities.LoginForm {
	link := LoginLink
	return entities.LoginForm{
		Link:     &link,
		Username: EmailField,
		Password: PasswordField,
		Submit:   LoginButton,
	}
}

// Form returns the login controls for session.LoginWithSessionReuse
func (p *LoginPage) Form() entities.LoginForm {
	return LoginFormLocators()
}

// NavigateToLogin opens the entry page and follows the login link
func (p *LoginPage) NavigateToLogin(ctx context.Context) error {
	if err := p.NavigateTo(ctx, p.baseURL); err != nil {
		return err
	}
	return p.Click(ctx, LoginLink)
}

func (p *LoginPage) EnterEmail(ctx context.Context, email string) error {
	return p.InputText(ctx, EmailField, email)
}

func (p *LoginPage) EnterPassword(ctx context.Context, password string) error {
	return p.InputText(ctx, PasswordField, password)
}

func (p *LoginPage) ClickLoginButton(ctx context.Context) error {
	return p.Click(ctx, LoginButton)
}

// Login submits the form with the given credentials. It does not wait for the outcome.
func (p *LoginPage) Login(ctx context.Context, email, password string) error {
	if err := p.NavigateToLogin(ctx); err != nil {
		return err
	}
	if err := p.EnterEmail(ctx, email); err != nil {
		return err
	}
	if err := p.EnterPassword(ctx, password); err != nil {
		return err
	}
	return p.ClickLoginButton(ctx)
}

func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.GetText(ctx, ErrorMessage)
}

func (p *LoginPage) IsErrorDisplayed(ctx context.Context) bool {
	return p.IsDisplayed(ctx, ErrorMessage)
}
