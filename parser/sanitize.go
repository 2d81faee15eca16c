package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// escaper rewrites reserved markup characters to their named references.
// It runs in a single pass, so replacement text is never re-escaped within
// one call.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// nonPrintable drops every rune that is neither printable nor one of
// tab, newline, carriage return.
var nonPrintable = runes.Remove(runes.Predicate(func(r rune) bool {
	return !unicode.IsPrint(r) && r != '\n' && r != '\r' && r != '\t'
}))

// SanitizeText escapes reserved markup characters in s and drops
// non-printable runes. It is a total function: it never fails, only
// transforms.
func SanitizeText(s string) string {
	cleaned, _, err := transform.String(nonPrintable, s)
	if err != nil {
		// runes.Remove does not produce transform errors; keep the input
		// untransformed rather than dropping data on this path.
		cleaned = s
	}
	return escaper.Replace(cleaned)
}

// SanitizeName retains only the characters valid in tag, attribute, and
// entity names: ASCII letters, digits, '_', '-', and ':'. Everything else
// is silently dropped.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-', r == ':':
			b.WriteRune(r)
		}
	}
	return b.String()
}
