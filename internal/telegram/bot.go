// Package telegram turns messages from allow-listed users into events for
// one hosted agent.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"file-appender/internal/event"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	runner  Deliverer
	agentID string
	allowed map[int64]bool
}

func New(botToken string, runner Deliverer, agentID string, allowedUsers []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, runner, agentID, allowedUsers)
	b.api = api
	return b, nil
}

func newBot(s sender, runner Deliverer, agentID string, allowedUsers []int64) *Bot {
	allowed := make(map[int64]bool, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = true
	}
	return &Bot{s: s, runner: runner, agentID: agentID, allowed: allowed}
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("🤖 Telegram source started for agent %s", b.agentID)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("🤖 Telegram source stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.allowed[msg.From.ID] {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "Access denied.")
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" {
		b.sendMessage(msg.Chat.ID, "Only text messages can be appended.")
		return
	}

	ev := event.New(map[string]any{
		"text":       text,
		"from":       msg.From.UserName,
		"user_id":    msg.From.ID,
		"chat_id":    msg.Chat.ID,
		"message_id": msg.MessageID,
	})
	log.Printf("Incoming message from %d (@%s) for agent %s, event %s", msg.From.ID, msg.From.UserName, b.agentID, ev.ID)

	if err := b.runner.Deliver(ctx, b.agentID, []event.Event{ev}); err != nil {
		log.Printf("❌ delivery to %s failed: %v", b.agentID, err)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("❌ Not appended: %v", err))
		return
	}
	b.sendMessage(msg.Chat.ID, "✅ Appended")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Send me any text and I will append it as a new line via agent %s.\n/status shows the agent health.", b.agentID))
	case "status":
		st, err := b.runner.Status(ctx, b.agentID)
		if err != nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Status unavailable: %v", err))
			return
		}
		var bld strings.Builder
		fmt.Fprintf(&bld, "Agent %s (%s)\n", st.ID, st.Name)
		if st.Working {
			bld.WriteString("Working: yes\n")
		} else {
			bld.WriteString("Working: no\n")
		}
		if st.LastReceiveAt != nil {
			fmt.Fprintf(&bld, "Last receive: %s\n", st.LastReceiveAt.UTC().Format(time.RFC3339))
		}
		if st.RecentErrors {
			bld.WriteString("Recent errors present\n")
		}
		b.sendMessage(msg.Chat.ID, bld.String())
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
