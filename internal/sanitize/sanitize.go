// Package sanitize normalizes free-form input fields before validation.
// Output escaping for views stays with html/template; this package only
// cleans what users typed.
package sanitize

import (
	"html"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// String strips markup tags and trims surrounding whitespace.
func String(value string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(value, ""))
}

// Text cleans multi-line input. With allowHTML the markup is kept and only
// trimmed; otherwise tags are stripped like String.
func Text(value string, allowHTML bool) string {
	if allowHTML {
		return strings.TrimSpace(value)
	}
	return String(value)
}

// Email normalizes an address and returns "" when it does not parse.
func Email(value string) string {
	cleaned := strings.ToLower(String(value))
	if cleaned == "" {
		return ""
	}
	addr, err := mail.ParseAddress(cleaned)
	if err != nil {
		return ""
	}
	return addr.Address
}

// URL trims the value and rejects anything without an http(s) scheme.
func URL(value string) string {
	cleaned := String(value)
	if cleaned == "" {
		return ""
	}
	if !strings.HasPrefix(cleaned, "http://") && !strings.HasPrefix(cleaned, "https://") {
		return ""
	}
	return cleaned
}

// Int extracts an integer from a form value, tolerating stray whitespace.
// Unparseable input yields 0.
func Int(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// HTML escapes a value for contexts outside the template engine.
func HTML(value string) string {
	return html.EscapeString(value)
}
