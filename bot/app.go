package bot

import (
	"context"

	"github.com/m3rciful/newsbot/archive"
	"github.com/m3rciful/newsbot/config"
	"github.com/m3rciful/newsbot/submission"
	tg "github.com/m3rciful/newsbot/telegram"
	"github.com/m3rciful/newsbot/telegram/commands"
	"github.com/m3rciful/newsbot/telegram/router"
	"github.com/m3rciful/newsbot/telegram/state"
)

// App wires the submission pipeline into the Telegram runtime.
type App struct {
	cfg      *config.Config
	reg      *tg.Registry
	sessions state.Manager
	store    submission.Store
	conv     *submission.Conversation
	mod      *submission.Moderator
	outbox   *telebotMessenger
}

// New builds the application. recorder may be nil when the decision archive
// is not configured.
func New(cfg *config.Config, recorder archive.Recorder) *App {
	outbox := &telebotMessenger{}
	sessions := state.NewMemoryManager()
	store := submission.NewMemoryStore()

	a := &App{
		cfg:      cfg,
		reg:      tg.NewRegistry(),
		sessions: sessions,
		store:    store,
		conv:     submission.NewConversation(sessions, store, outbox, cfg.Moderation.GroupID),
		mod:      submission.NewModerator(store, outbox, cfg.Moderation.ChannelID, recorder),
		outbox:   outbox,
	}
	a.registerHandlers()
	return a
}

func (a *App) registerHandlers() {
	a.reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Suggest a story for the channel",
	})
	a.reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Cancel the current draft",
	})
	a.reg.RegisterCommand("/queue", commands.Command{
		Handler:     a.handleQueue,
		Description: "Show pending submissions",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = a.reg.RegisterCallback(entryCallbackKey, a.handleStartPost)
	_ = a.reg.RegisterCallback(string(submission.ActionPublish), a.handleDecision(submission.ActionPublish))
	_ = a.reg.RegisterCallback(string(submission.ActionReject), a.handleDecision(submission.ActionReject))

	a.reg.SetTextFallback(a.handleUnknownText)

	// Both dialogue steps share one handler; the conversation itself
	// dispatches on the user's current state.
	state.RegisterHandler(submission.StateAwaitingTitle, a.handleDraftText)
	state.RegisterHandler(submission.StateAwaitingBody, a.handleDraftText)
}

// TelegramRunOptions assembles the runtime options consumed by RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.sessions, a.reg, router.TextOptions{})...)

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.outbox.bind(rt.Bot)
			return nil
		},
	}, nil
}
