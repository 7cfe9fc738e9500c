package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/core/telegram/commands"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

// ErrInvalidRegistration is wrapped by registration errors.
var ErrInvalidRegistration = errors.New("invalid registration")

// Registry holds the slash commands, in registration order, and the
// callback handlers keyed by the first field of the callback payload.
type Registry struct {
	commands map[string]commands.Command
	order    []string

	callbacksMu      sync.RWMutex
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback fallback
// answers the button press with a short notice.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return tghelpers.Respond(c, "Unsupported action", false)
		},
	}
}

// RegisterCommand adds cmd under name, which must start with "/".
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	var reason string
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		reason = "incomplete"
	case !strings.HasPrefix(name, "/") || len(name) < 2 || strings.ContainsAny(name, " @"):
		reason = "bad_name"
	default:
		if _, dup := r.commands[name]; dup {
			reason = "duplicate"
		}
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return fmt.Errorf("%w: command %q: %s", ErrInvalidRegistration, name, reason)
	}
	r.commands[name] = cmd
	r.order = append(r.order, name)
	return nil
}

// ListCommands returns the commands in registration order, leaving out
// hidden and admin-only ones when visibleOnly is set.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		if visibleOnly && !cmd.Visible() {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	return list
}

// LookupCommand resolves text such as "/find", "find" or "/find@vocabot cat"
// to a registered command.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	if name == "" {
		return "", commands.Command{}, false
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return "", commands.Command{}, false
	}
	return strings.ToLower(name), cmd, true
}

// Commands returns the registered commands by name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback maps a payload key to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("key", key),
			slog.String("reason", "incomplete"),
		)
		return fmt.Errorf("%w: callback %q: incomplete", ErrInvalidRegistration, key)
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("key", key),
			slog.String("reason", "duplicate"),
		)
		return fmt.Errorf("%w: callback %q: duplicate", ErrInvalidRegistration, key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys sorted.
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetCallbackNotFound replaces the handler for presses with an unknown key.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the handler for presses with an unknown key.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text that is neither a command nor part of a flow.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the handler set by SetTextFallback.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// publishCommands sets the menu Telegram shows next to the input field.
func publishCommands(bot *tele.Bot, reg *Registry) {
	cmds := reg.ListCommands(true)
	if err := bot.SetCommands(cmds); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.fail",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.ok",
		slog.Int("count", len(cmds)),
	)
}
