package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /stats YYYY-MM-DD")
		return
	}

	day, err := parseDate(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Bad date format, use YYYY-MM-DD.")
		return
	}

	stats, err := h.svc.StatsFor(ctx, msg.Chat.ID, day)
	if err != nil {
		h.replyError(msg.Chat.ID, err)
		return
	}
	if stats.Total == 0 {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("No reminders on %s.", arg))
		return
	}

	h.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"Statistics for %s:\nTotal: %d\nDone: %.2f%%\nNot done: %.2f%%",
		arg, stats.Total, stats.CompletedPct, 100-stats.CompletedPct))
}
