package browser

import (
	"math"
	"time"

	"e2e_automation/domain/entities"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/playwright-community/playwright-go"
	"github.com/tebeka/selenium"
)

// expiresOrSession - drivers report session cookies as -1 or 0; both persist as 0
func expiresOrSession(expires float64) float64 {
	if expires > 0 {
		return expires
	}
	return 0
}

// fromPlaywrightCookies - converts context cookies into harness cookies
func fromPlaywrightCookies(pwCookies []playwright.Cookie) []entities.Cookie {
	cookies := make([]entities.Cookie, len(pwCookies))
	for i, c := range pwCookies {
		sameSite := ""
		if c.SameSite != nil {
			sameSite = string(*c.SameSite)
		}
		cookies[i] = entities.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expiresOrSession(c.Expires),
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
			SameSite: sameSite,
		}
	}
	return cookies
}

// toPlaywrightCookie - converts a harness cookie; pageURL scopes cookies without a domain
func toPlaywrightCookie(cookie entities.Cookie, pageURL string) playwright.OptionalCookie {
	var sameSite *playwright.SameSiteAttribute
	switch cookie.SameSite {
	case "Strict":
		sameSite = playwright.SameSiteAttributeStrict
	case "None":
		sameSite = playwright.SameSiteAttributeNone
	case "Lax":
		sameSite = playwright.SameSiteAttributeLax
	}

	pwCookie := playwright.OptionalCookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		SameSite: sameSite,
	}

	if cookie.Domain != "" {
		pwCookie.Domain = playwright.String(cookie.Domain)
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		pwCookie.Path = playwright.String(path)
	} else {
		pwCookie.URL = playwright.String(pageURL)
	}
	if cookie.Expires > 0 {
		pwCookie.Expires = playwright.Float(cookie.Expires)
	}
	if cookie.HTTPOnly {
		pwCookie.HttpOnly = playwright.Bool(true)
	}
	if cookie.Secure {
		pwCookie.Secure = playwright.Bool(true)
	}
	return pwCookie
}

// fromSeleniumCookies - converts WebDriver cookies into harness cookies
func fromSeleniumCookies(wdCookies []selenium.Cookie) []entities.Cookie {
	cookies := make([]entities.Cookie, len(wdCookies))
	for i, c := range wdCookies {
		cookies[i] = entities.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expiry),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
	}
	return cookies
}

// toSeleniumCookie - converts a harness cookie; WebDriver scopes cookies without a domain to the current page
func toSeleniumCookie(cookie entities.Cookie) *selenium.Cookie {
	wdCookie := &selenium.Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     cookie.Path,
		Domain:   cookie.Domain,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HTTPOnly,
	}
	if cookie.Expires > 0 {
		wdCookie.Expiry = uint(math.Round(cookie.Expires))
	}
	return wdCookie
}

// fromCDPCookies - converts DevTools cookies into harness cookies
func fromCDPCookies(cdpCookies []*network.Cookie) []entities.Cookie {
	cookies := make([]entities.Cookie, 0, len(cdpCookies))
	for _, c := range cdpCookies {
		if c == nil {
			continue
		}
		expires := c.Expires
		if c.Session {
			expires = 0
		}
		cookies = append(cookies, entities.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expiresOrSession(expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}
	return cookies
}

// toCDPCookie - converts a harness cookie; pageURL scopes cookies without a domain
func toCDPCookie(cookie entities.Cookie, pageURL string) *network.CookieParam {
	param := &network.CookieParam{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   cookie.Domain,
		Path:     cookie.Path,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HTTPOnly,
	}
	if cookie.Domain == "" {
		param.URL = pageURL
	} else if param.Path == "" {
		param.Path = "/"
	}
	switch cookie.SameSite {
	case "Strict":
		param.SameSite = network.CookieSameSiteStrict
	case "Lax":
		param.SameSite = network.CookieSameSiteLax
	case "None":
		param.SameSite = network.CookieSameSiteNone
	}
	if cookie.Expires > 0 {
		sec, frac := math.Modf(cookie.Expires)
		t := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*float64(time.Second))))
		param.Expires = &t
	}
	return param
}
