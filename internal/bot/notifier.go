package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier is the scheduler's delivery channel, backed by the
// Telegram API. Best-effort: errors bubble up to the scheduler which
// retries on the next poll.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Send(owner int64, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(owner, text))
	return err
}
