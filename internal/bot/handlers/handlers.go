package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/ansemenov/remindbot/internal/service"
)

type Handlers struct {
	api      *tgbotapi.BotAPI
	svc      *service.Service
	onCreate func()
}

func New(api *tgbotapi.BotAPI, svc *service.Service, onCreate func()) *Handlers {
	return &Handlers{api: api, svc: svc, onCreate: onCreate}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		h.handleStart(ctx, msg)
	case "remind":
		h.handleRemind(ctx, msg)
	case "daily":
		h.handleDaily(ctx, msg)
	case "weekly":
		h.handleWeekly(ctx, msg)
	case "list":
		h.handleList(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "complete":
		h.handleComplete(ctx, msg)
	case "notcomplete":
		h.handleNotComplete(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help for what I can do.")
	}
}

func (h *Handlers) handleStart(_ context.Context, msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID,
		"Hi! I'm a reminder bot. Here's what I can do:\n"+
			"/remind YYYY-MM-DD HH:MM text — one-off reminder\n"+
			"/daily HH:MM text — daily reminder\n"+
			"/weekly DAY HH:MM text — weekly reminder (DAY 0-6, 0 = Monday)\n"+
			"/list — show all reminders\n"+
			"/delete ID — delete a reminder\n"+
			"/complete ID — mark a reminder as done\n"+
			"/notcomplete ID — mark a reminder as not done\n"+
			"/stats YYYY-MM-DD — statistics for a date")
}

// created notifies the scheduler that a new reminder exists so it can
// re-check without waiting out the poll interval.
func (h *Handlers) created() {
	if h.onCreate != nil {
		h.onCreate()
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("failed to send message")
	}
}

// replyError translates service errors into user-facing text. Unknown
// errors are logged and answered with a generic apology.
func (h *Handlers) replyError(chatID int64, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.sendMessage(chatID, "No reminder with that ID.")
	case errors.Is(err, service.ErrPastTime):
		h.sendMessage(chatID, "Can't set a reminder in the past.")
	case errors.As(err, &ve):
		h.sendMessage(chatID, "Invalid "+ve.Field+": "+ve.Reason+".")
	default:
		log.Error().Err(err).Int64("chat", chatID).Msg("command failed")
		h.sendMessage(chatID, "Something went wrong, please try again later.")
	}
}
