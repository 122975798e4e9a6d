package normalize

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	controlRE    = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	tagRE        = regexp.MustCompile(`<.*?>`)
)

// Whitespace kollabiert alle Whitespace-Folgen zu einem einzelnen Leerzeichen.
func Whitespace(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// Text bereinigt Freitext aus Web-Quellen: HTML-Entities auflösen,
// NFC-Normalisierung, Steuerzeichen entfernen, Whitespace kollabieren.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	normalized, _, err := transform.String(norm.NFC, s)
	if err == nil {
		s = normalized
	}
	s = controlRE.ReplaceAllString(s, " ")
	return Whitespace(s)
}

// HTML entfernt alle Tags aus einem String, ohne den Text zu verändern.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return tagRE.ReplaceAllString(s, "")
}

// Truncate kürzt einen String auf höchstens n Zeichen (Runen, nicht Bytes).
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
