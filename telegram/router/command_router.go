package router

import (
	"log/slog"

	"github.com/m3rciful/newsbot/logger"
	tg "github.com/m3rciful/newsbot/telegram"
	"github.com/m3rciful/newsbot/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions carries the admin identity for AdminOnly commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered slash command. AdminOnly
// commands get the access gate as their outermost wrapper so rejected
// senders never reach the logger-visible handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, cmd := range cmds {
		h := middleware.LoggerMiddleware(middleware.RecoverMiddleware(cmd.Handler))
		if cmd.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
