package entities

import (
	"fmt"
	"strings"
)

// By is a element lookup strategy
type By string

const (
	ByID              By = "id"
	ByName            By = "name"
	ByCSS             By = "css selector"
	ByXPath           By = "xpath"
	ByLinkText        By = "link text"
	ByPartialLinkText By = "partial link text"
	ByClassName       By = "class name"
	ByTagName         By = "tag name"
)

// Locator identifies an element the way a page object declares it
type Locator struct {
	By    By     `json:"by"`
	Value string `json:"value"`
}

// ID builds an id locator
func ID(value string) Locator { return Locator{By: ByID, Value: value} }

// Name builds a name-attribute locator
func Name(value string) Locator { return Locator{By: ByName, Value: value} }

// CSS builds a CSS selector locator
func CSS(value string) Locator { return Locator{By: ByCSS, Value: value} }

// XPath builds an XPath locator
func XPath(value string) Locator { return Locator{By: ByXPath, Value: value} }

// LinkText builds an exact link-text locator
func LinkText(value string) Locator { return Locator{By: ByLinkText, Value: value} }

// PartialLinkText builds a partial link-text locator
func PartialLinkText(value string) Locator { return Locator{By: ByPartialLinkText, Value: value} }

// ClassName builds a class-name locator
func ClassName(value string) Locator { return Locator{By: ByClassName, Value: value} }

// TagName builds a tag-name locator
func TagName(value string) Locator { return Locator{By: ByTagName, Value: value} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.By, l.Value)
}

var locatorPrefixes = map[string]By{
	"id":                ByID,
	"name":              ByName,
	"css":               ByCSS,
	"css selector":      ByCSS,
	"xpath":             ByXPath,
	"link":              ByLinkText,
	"link text":         ByLinkText,
	"partial":           ByPartialLinkText,
	"partial link text": ByPartialLinkText,
	"class":             ByClassName,
	"class name":        ByClassName,
	"tag":               ByTagName,
	"tag name":          ByTagName,
}

// ParseLocator reads "<strategy>=<value>", e.g. "id=sidebar" or
// "css=#main .card". A bare value is an id; a value whose prefix is not a
// known strategy is a CSS selector.
func ParseLocator(s string) Locator {
	s = strings.TrimSpace(s)
	prefix, value, found := strings.Cut(s, "=")
	if !found {
		return ID(s)
	}
	if by, ok := locatorPrefixes[strings.ToLower(strings.TrimSpace(prefix))]; ok {
		return Locator{By: by, Value: strings.TrimSpace(value)}
	}
	return CSS(s)
}
