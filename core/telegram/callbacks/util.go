// Package callbacks extracts routing keys from Telegram callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Separator splits the routing key from the rest of the payload.
const Separator = "|"

// ParseCallbackData returns the routing key and the remainder of the payload.
// Both telebot's "\f<unique>|<payload>" form and raw "<KEY>|<params>" data are accepted.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	parts := strings.SplitN(raw, Separator, 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// RawData returns the full callback data as sent on the button, without telebot's prefix.
func RawData(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		if cb.Data == "" {
			return cb.Unique
		}
		return cb.Unique + Separator + cb.Data
	}
	return strings.TrimPrefix(cb.Data, "\f")
}
