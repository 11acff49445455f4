package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ansemenov/remindbot/internal/models"
)

func (h *Handlers) handleRemind(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 3)
	if len(args) < 3 {
		h.sendMessage(msg.Chat.ID, "Usage: /remind YYYY-MM-DD HH:MM text")
		return
	}

	date, err := parseDate(args[0])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad date format, use YYYY-MM-DD.")
		return
	}
	hour, min, err := parseClock(args[1])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad time format, use HH:MM.")
		return
	}

	at := time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, time.Local)
	r, err := h.svc.CreateOnce(ctx, msg.Chat.ID, at, args[2])
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.created()

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("One-off reminder set for %s: %s",
		r.RemindAt.Format("2006-01-02 15:04"), r.Text))
}

func (h *Handlers) handleDaily(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(args) < 2 {
		h.sendMessage(msg.Chat.ID, "Usage: /daily HH:MM text")
		return
	}

	hour, min, err := parseClock(args[0])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad time format, use HH:MM.")
		return
	}

	r, err := h.svc.CreateDaily(ctx, msg.Chat.ID, hour, min, args[1])
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.created()

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Daily reminder set, first firing %s: %s",
		r.RemindAt.Format("2006-01-02 15:04"), r.Text))
}

func (h *Handlers) handleWeekly(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 3)
	if len(args) < 3 {
		h.sendMessage(msg.Chat.ID, "Usage: /weekly DAY HH:MM text\nDAY is 0-6, 0 = Monday.")
		return
	}

	day, err := parseWeekday(args[0])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad weekday, use 0 (Monday) to 6 (Sunday).")
		return
	}
	hour, min, err := parseClock(args[1])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad time format, use HH:MM.")
		return
	}

	r, err := h.svc.CreateWeekly(ctx, msg.Chat.ID, day, hour, min, args[2])
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.created()

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Weekly reminder on %s at %s added: %s",
		day, args[1], r.Text))
}

func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := h.svc.List(ctx, msg.Chat.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if len(reminders) == 0 {
		h.sendMessage(msg.Chat.ID, "You have no active reminders.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your reminders:\n")
	for _, r := range reminders {
		sb.WriteString(fmt.Sprintf("ID: %d | Date: %s | Time: %s: %s%s%s\n",
			r.LocalID,
			r.RemindAt.Format("2006-01-02"),
			r.RemindAt.Format("15:04"),
			r.Text,
			kindSuffix(r),
			completionSuffix(r)))
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func kindSuffix(r models.Reminder) string {
	switch r.Recurrence.Kind {
	case models.Daily:
		return " (daily)"
	case models.Weekly:
		return fmt.Sprintf(" (every %s)", r.Recurrence.Weekday)
	default:
		return ""
	}
}

func completionSuffix(r models.Reminder) string {
	if r.Completed {
		return " (done)"
	}
	return " (not done)"
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.parseID(msg, "Usage: /delete ID")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx, msg.Chat.ID, id); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Reminder %d deleted.", id))
}

func (h *Handlers) handleComplete(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.parseID(msg, "Usage: /complete ID")
	if !ok {
		return
	}

	if err := h.svc.SetCompleted(ctx, msg.Chat.ID, id, true); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Reminder %d marked as done ✅.", id))
}

func (h *Handlers) handleNotComplete(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.parseID(msg, "Usage: /notcomplete ID")
	if !ok {
		return
	}

	if err := h.svc.SetCompleted(ctx, msg.Chat.ID, id, false); err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Reminder %d marked as not done ❌.", id))
}

func (h *Handlers) parseID(msg *tgbotapi.Message, usage string) (int, bool) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, usage)
		return 0, false
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "ID must be a number.")
		return 0, false
	}
	return id, true
}
