// Package suites holds the example browser suites. They drive a real
// browser against the configured environment, so they only build with the
// e2e tag:
//
//	go test -tags e2e ./presentation/suites/...
package suites

import "e2e_automation/domain/entities"

// Users are the accounts the suites log in with; the valid account of a
// deployed environment comes from E2E_USERNAME and E2E_PASSWORD instead
var Users = map[string]entities.Credentials{
	"valid_user":   {Username: "user@example.com", Password: "password123"},
	"invalid_user": {Username: "invalid@example.com", Password: "wrongpassword"},
	"admin_user":   {Username: "admin@example.com", Password: "adminpass123"},
}

// ContactForm and RegistrationForm are form inputs keyed by field name
var (
	ContactForm = map[string]string{
		"name":    "Test User",
		"email":   "test@example.com",
		"subject": "Test Subject",
		"message": "This is a test message",
	}
	RegistrationForm = map[string]string{
		"first_name": "John",
		"last_name":  "Doe",
		"email":      "john.doe@example.com",
		"phone":      "+1234567890",
		"address":    "123 Test Street",
	}
)

// Paths are relative to BASE_URL
var Paths = map[string]string{
	"home":         "/",
	"login":        "/login",
	"dashboard":    "/dashboard",
	"profile":      "/profile",
	"settings":     "/settings",
	"example_page": "/example-page",
	"form_page":    "/form-page",
	"slow_page":    "/slow-page",
	"dynamic_page": "/dynamic-page",
}

// Messages the application shows
var Messages = map[string]string{
	"login_success":    "Successfully logged in",
	"login_failed":     "Invalid credentials",
	"form_success":     "Form submitted successfully",
	"validation_error": "Please fill all required fields",
}

// SearchKeywords feed search-box suites
var SearchKeywords = []string{"selenium", "automation", "testing", "golang"}
