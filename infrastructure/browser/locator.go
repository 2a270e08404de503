package browser

import (
	"fmt"
	"strings"

	"e2e_automation/domain/entities"
)

// cssFor - translates loc into a CSS selector; ok is false for text-based strategies
func cssFor(loc entities.Locator) (string, bool) {
	switch loc.By {
	case entities.ByID:
		return fmt.Sprintf(`[id=%s]`, cssString(loc.Value)), true
	case entities.ByName:
		return fmt.Sprintf(`[name=%s]`, cssString(loc.Value)), true
	case entities.ByCSS:
		return loc.Value, true
	case entities.ByClassName:
		return "." + cssIdent(loc.Value), true
	case entities.ByTagName:
		return loc.Value, true
	}
	return "", false
}

// xpathFor - translates loc into an XPath expression; ok is false for CSS selectors
func xpathFor(loc entities.Locator) (string, bool) {
	switch loc.By {
	case entities.ByID:
		return fmt.Sprintf(`//*[@id=%s]`, xpathString(loc.Value)), true
	case entities.ByName:
		return fmt.Sprintf(`//*[@name=%s]`, xpathString(loc.Value)), true
	case entities.ByXPath:
		return loc.Value, true
	case entities.ByLinkText:
		return fmt.Sprintf(`//a[normalize-space(.)=%s]`, xpathString(strings.TrimSpace(loc.Value))), true
	case entities.ByPartialLinkText:
		return fmt.Sprintf(`//a[contains(normalize-space(.), %s)]`, xpathString(strings.TrimSpace(loc.Value))), true
	case entities.ByClassName:
		return fmt.Sprintf(`//*[contains(concat(" ", normalize-space(@class), " "), %s)]`, xpathString(" "+loc.Value+" ")), true
	case entities.ByTagName:
		return "//" + loc.Value, true
	}
	return "", false
}

// playwrightSelector - returns a selector with an explicit engine prefix
func playwrightSelector(loc entities.Locator) (string, error) {
	if css, ok := cssFor(loc); ok {
		return "css=" + css, nil
	}
	if xpath, ok := xpathFor(loc); ok {
		return "xpath=" + xpath, nil
	}
	return "", fmt.Errorf("unsupported locator strategy %q", loc.By)
}

// cssString - quotes s as a CSS string literal
func cssString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\a `)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// cssIdent - escapes characters that are not valid in a CSS identifier
func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, `\%x `, r)
		}
	}
	return b.String()
}

// xpathString - quotes s as an XPath 1.0 string literal, which has no escapes
func xpathString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
