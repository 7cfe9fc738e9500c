// Package commands describes slash commands registered with the bot.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is a slash command. Hidden and AdminOnly commands still work but
// are left out of the menu Telegram shows next to the input field.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}
