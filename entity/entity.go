// Package entity resolves named, decimal, and hex HTML character references
// to their literal text, for the small subset of spans the push-parser
// adapter (package parser) routes through it as "entity" text events.
//
// The full HTML5 named-entity table is treated, per spec, as external data
// this package does not own: Table below is a representative static subset
// (the entities that actually appear in everyday Markdown), loaded once at
// init and never mutated. Swapping in the complete WHATWG table is a matter
// of replacing Table's contents; nothing else in this package, or in
// package parser, depends on its size.
package entity

import "unicode/utf8"

// Debug gates the debug-build assertion described by spec.md §7
// (ResourceMissing): when true, Decode panics if Table is empty instead of
// silently degrading to pass-through. Release builds leave this false.
var Debug = false

// Table maps an entity name (without the leading '&' or trailing ';') to its
// literal replacement text. It is populated once, below, and is never
// written to again; concurrent reads from Decode are always safe.
var Table = map[string]string{
	"amp":     "&",
	"lt":      "<",
	"gt":      ">",
	"quot":    "\"",
	"apos":    "'",
	"nbsp":    " ",
	"copy":    "©",
	"reg":     "®",
	"trade":   "™",
	"mdash":   "—",
	"ndash":   "–",
	"hellip":  "…",
	"lsquo":   "‘",
	"rsquo":   "’",
	"ldquo":   "“",
	"rdquo":   "”",
	"laquo":   "«",
	"raquo":   "»",
	"middot":  "·",
	"bull":    "•",
	"dagger":  "†",
	"Dagger":  "‡",
	"sect":    "§",
	"para":    "¶",
	"deg":     "°",
	"plusmn":  "±",
	"times":   "×",
	"divide":  "÷",
	"frac12":  "½",
	"frac14":  "¼",
	"frac34":  "¾",
	"euro":    "€",
	"pound":   "£",
	"yen":     "¥",
	"cent":    "¢",
	"larr":    "←",
	"rarr":    "→",
	"uarr":    "↑",
	"darr":    "↓",
	"infin":   "∞",
	"ne":      "≠",
	"le":      "≤",
	"ge":      "≥",
}

func init() {
	if Debug && len(Table) == 0 {
		panic("entity: Table is empty")
	}
}

// Decode resolves a single entity reference matching /&[^;]+;/, including
// the surrounding ampersand and semicolon, returning its literal
// replacement. If the reference cannot be resolved -- an unknown name, an
// out-of-range or malformed numeric reference -- token is returned
// unmodified so the caller can fall back to treating it as plain text.
func Decode(token string) string {
	if Debug && len(Table) == 0 {
		panic("entity: Table is empty")
	}
	body, ok := trimAmpSemi(token)
	if !ok {
		return token
	}
	if len(body) == 0 {
		return token
	}
	if body[0] == '#' {
		if s, ok := decodeNumeric(body[1:]); ok {
			return s
		}
		return token
	}
	if s, ok := Table[body]; ok {
		return s
	}
	return token
}

func trimAmpSemi(token string) (string, bool) {
	if len(token) < 3 || token[0] != '&' || token[len(token)-1] != ';' {
		return "", false
	}
	return token[1 : len(token)-1], true
}

func decodeNumeric(body string) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var (
		n        int64
		base     = 10
		digits   = body
		overflow bool
	)
	if digits[0] == 'x' || digits[0] == 'X' {
		base = 16
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return "", false
	}
	for _, c := range []byte(digits) {
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			return "", false
		}
		n = n*int64(base) + d
		if n > utf8.MaxRune {
			overflow = true
		}
	}
	if overflow || !validScalar(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}

// validScalar reports whether r is a valid, representable Unicode scalar
// value for substitution -- excluding surrogate halves and out-of-range
// code points, matching the numeric-reference rule in spec.md §4.2.
func validScalar(r rune) bool {
	if r < 0 || r > utf8.MaxRune {
		return false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r == 0 {
		return false
	}
	return true
}
