// Package htmlsanitize cleans free text that is rendered back as HTML.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

// Incident notes allow basic formatting and lists, nothing interactive.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "u",
		"ul", "ol", "li", "blockquote", "code", "pre")
	return p
}

// Sanitize strips everything outside the allowed set.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s has no markup.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<")
}

// PlainTextToHTML escapes s and turns newlines into <br>.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	esc := template.HTMLEscapeString(s)
	esc = strings.ReplaceAll(esc, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(esc, "\n", "<br>"))
}

// PrepareForDisplay picks PlainTextToHTML or SanitizeToHTML.
func PrepareForDisplay(s string) template.HTML {
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return SanitizeToHTML(s)
}

var strict = bluemonday.StrictPolicy()

// IsBlank reports whether s has no visible text once all markup is removed.
func IsBlank(s string) bool {
	return strings.TrimSpace(strict.Sanitize(s)) == ""
}
