// Package format builds Telegram HTML fragments.
package format

import (
	"html"
	"strings"
)

// Escape makes arbitrary user text safe for HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Italic wraps escaped text in <i>.
func Italic(text string) string {
	return "<i>" + Escape(text) + "</i>"
}

// Code wraps escaped text in <code>.
func Code(text string) string {
	return "<code>" + Escape(text) + "</code>"
}

// Lines joins non-empty fragments with newlines.
func Lines(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
