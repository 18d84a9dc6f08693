package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"file-appender/internal/event"
	"file-appender/internal/runtime"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

// Deliverer is the part of the runtime the bot talks to.
type Deliverer interface {
	Deliver(ctx context.Context, agentID string, events []event.Event) error
	Status(ctx context.Context, agentID string) (runtime.Status, error)
}
