package browser

import (
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"pgregory.net/rapid"

	"e2e_automation/domain/entities"
)

func TestPlaywrightCookies(t *testing.T) {
	cookies := fromPlaywrightCookies([]playwright.Cookie{
		{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", Expires: -1, HttpOnly: true, SameSite: playwright.SameSiteAttributeLax},
		{Name: "pref", Value: "dark", Domain: ".app.test", Path: "/", Expires: 1893456000.5, Secure: true},
	})
	assert.Equal(t, []entities.Cookie{
		{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", HTTPOnly: true, SameSite: "Lax"},
		{Name: "pref", Value: "dark", Domain: ".app.test", Path: "/", Expires: 1893456000.5, Secure: true},
	}, cookies, "session cookies persist with no expiry")

	withDomain := toPlaywrightCookie(entities.Cookie{Name: "sid", Value: "abc", Domain: "app.test", SameSite: "Strict", Expires: 10, Secure: true}, "https://app.test/login")
	require.NotNil(t, withDomain.Domain)
	assert.Equal(t, "app.test", *withDomain.Domain)
	require.NotNil(t, withDomain.Path)
	assert.Equal(t, "/", *withDomain.Path, "domain cookies need a path")
	assert.Nil(t, withDomain.URL)
	assert.Equal(t, playwright.SameSiteAttributeStrict, withDomain.SameSite)
	require.NotNil(t, withDomain.Expires)
	assert.Equal(t, 10.0, *withDomain.Expires)
	assert.Nil(t, withDomain.HttpOnly)

	hostOnly := toPlaywrightCookie(entities.Cookie{Name: "sid", Value: "abc"}, "https://app.test/login")
	require.NotNil(t, hostOnly.URL)
	assert.Equal(t, "https://app.test/login", *hostOnly.URL)
	assert.Nil(t, hostOnly.Domain)
	assert.Nil(t, hostOnly.SameSite)
	assert.Nil(t, hostOnly.Expires)
}

func TestSeleniumCookies(t *testing.T) {
	wd := toSeleniumCookie(entities.Cookie{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", Expires: 1893456000.6, HTTPOnly: true, SameSite: "Lax"})
	assert.Equal(t, &selenium.Cookie{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", Expiry: 1893456001, HTTPOnly: true}, wd)

	back := fromSeleniumCookies([]selenium.Cookie{{Name: "sid", Value: "abc", Domain: "app.test", Path: "/"}})
	assert.Equal(t, []entities.Cookie{{Name: "sid", Value: "abc", Domain: "app.test", Path: "/"}}, back)
}

func TestCDPCookies(t *testing.T) {
	cookies := fromCDPCookies([]*network.Cookie{
		{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", Expires: -1, Session: true, HTTPOnly: true, SameSite: network.CookieSameSiteLax},
		nil,
		{Name: "pref", Value: "dark", Domain: "app.test", Path: "/", Expires: 1893456000},
	})
	assert.Equal(t, []entities.Cookie{
		{Name: "sid", Value: "abc", Domain: "app.test", Path: "/", HTTPOnly: true, SameSite: "Lax"},
		{Name: "pref", Value: "dark", Domain: "app.test", Path: "/", Expires: 1893456000},
	}, cookies)

	param := toCDPCookie(entities.Cookie{Name: "sid", Value: "abc", Expires: 1893456000.25, SameSite: "None", Secure: true}, "https://app.test/")
	assert.Equal(t, "https://app.test/", param.URL)
	assert.Equal(t, network.CookieSameSiteNone, param.SameSite)
	require.NotNil(t, param.Expires)
	assert.Equal(t, time.Unix(1893456000, 250_000_000).UTC(), param.Expires.Time().UTC())

	scoped := toCDPCookie(entities.Cookie{Name: "sid", Value: "abc", Domain: "app.test"}, "https://app.test/")
	assert.Empty(t, scoped.URL)
	assert.Equal(t, "/", scoped.Path)
	assert.Nil(t, scoped.Expires)
}

func testSeleniumCookieConversion_Properties(t *rapid.T) {
	cookie := entities.Cookie{
		Name:     rapid.StringMatching(`[a-z_]{1,12}`).Draw(t, "name"),
		Value:    rapid.String().Draw(t, "value"),
		Domain:   rapid.SampledFrom([]string{"", "app.test", ".app.test"}).Draw(t, "domain"),
		Path:     rapid.SampledFrom([]string{"", "/", "/app"}).Draw(t, "path"),
		Expires:  float64(rapid.Uint32().Draw(t, "expires")),
		HTTPOnly: rapid.Bool().Draw(t, "httpOnly"),
		Secure:   rapid.Bool().Draw(t, "secure"),
	}

	back := fromSeleniumCookies([]selenium.Cookie{*toSeleniumCookie(cookie)})
	require.Len(t, back, 1)
	if back[0] != cookie {
		t.Fatalf("cookie changed through WebDriver conversion: %+v -> %+v", cookie, back[0])
	}
}

func TestSeleniumCookieConversion_Properties(t *testing.T) {
	rapid.Check(t, testSeleniumCookieConversion_Properties)
}
