package entities

// LoginForm locates the interactive login controls
type LoginForm struct {
	// Link opens the form from the entry page; nil when the entry page is the form
	Link     *Locator
	Username Locator
	Password Locator
	Submit   Locator
}
