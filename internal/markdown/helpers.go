package markdown

import (
	"strings"
	"unicode/utf8"
)

const (
	// Taken from https://core.telegram.org/bots/api#markdownv2-style.
	mdV2SpecialChars = `._[](){}#|!+-=*~>` + "`"

	// Inside the (...) part of an inline link only these need escaping.
	mdV2LinkURLSpecialChars = `)\`

	ellipsis = "…"
)

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup        = lookup(mdV2SpecialChars + `\`)
	mdV2LinkURLLookup = lookup(mdV2LinkURLSpecialChars)
)

// EscapeV2 escapes text for Telegram MarkdownV2.
func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// EscapeLinkURL escapes a URL placed inside an inline link.
func EscapeLinkURL(input string) string {
	return escape(input, &mdV2LinkURLLookup)
}

// Truncate shortens input to at most maxRunes runes, ending it with an
// ellipsis when something was cut. Invalid UTF-8 is replaced.
func Truncate(input string, maxRunes int) string {
	input = strings.ToValidUTF8(input, "?")
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxRunes {
		return input
	}

	runes := []rune(input)

	return strings.TrimSpace(string(runes[:maxRunes-1])) + ellipsis
}

func escape(input string, table *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if table[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if table[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var m [256]bool
	for _, c := range []byte(chars) {
		m[c] = true
	}
	return m
}
