package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry collects the bot surface before startup: slash commands keyed by
// their "/name" and callback handlers keyed by the button unique. Routes are
// built from it once in RunTelegram; callback lookups also happen per update.
type Registry struct {
	mu           sync.RWMutex
	commands     map[string]commands.Command
	callbacks    map[string]tele.HandlerFunc
	textFallback tele.HandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a slash command. Invalid or duplicate registrations
// are dropped with a warning rather than failing startup.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil {
		return
	}
	reason := ""
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		reason = "incomplete"
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		reason = "bad_name"
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// RegisterCallback maps a callback unique to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		return fmt.Errorf("callback registration rejected: key=%q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.duplicate",
			slog.String("key", key),
		)
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// Commands returns a snapshot of the registered slash commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for name, cmd := range r.commands {
		out[name] = cmd
	}
	return out
}

// LookupCommand resolves a message text like "/start" to its command.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return name, cmd, ok
}

// GetCallback returns the handler registered for a callback unique.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered callback uniques, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CallbackNotFound answers a stale or unknown button press. Decision buttons
// outlive their submissions, so this path is normal operation, not an error.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
}

// SetTextFallback installs the handler for plain text outside any dialogue.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the installed text fallback, or nil.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// MenuCommands lists the commands that belong in the Telegram command menu,
// leaving out hidden and admin-only entries.
func (r *Registry) MenuCommands() []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var menu []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden || cmd.AdminOnly {
			continue
		}
		menu = append(menu, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(menu, func(i, j int) bool { return menu[i].Text < menu[j].Text })
	return menu
}

// InitBotCommands publishes the visible command menu to Telegram.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.MenuCommands()); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
