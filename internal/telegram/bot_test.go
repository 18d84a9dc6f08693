package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"file-appender/internal/event"
	"file-appender/internal/runtime"
)

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	sw := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, sw.Text)
	return tgbotapi.Message{}, nil
}

type fakeRunner struct {
	delivered []event.Event
	agentID   string
	err       error
	status    runtime.Status
}

func (f *fakeRunner) Deliver(ctx context.Context, agentID string, events []event.Event) error {
	f.agentID = agentID
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, events...)
	return nil
}

func (f *fakeRunner) Status(ctx context.Context, agentID string) (runtime.Status, error) {
	return f.status, nil
}

func message(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: userID, UserName: "alice"},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
	}
}

func command(userID int64, cmd string) *tgbotapi.Message {
	msg := message(userID, "/"+cmd)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return msg
}

func TestHandleIncomingMessage_Unauthorized(t *testing.T) {
	fs := &fakeSender{}
	fr := &fakeRunner{}
	b := newBot(fs, fr, "journal", []int64{1})

	b.handleIncomingMessage(context.Background(), message(2, "hi"))

	if len(fr.delivered) != 0 {
		t.Fatalf("unauthorized message must not be delivered")
	}
	if len(fs.sent) != 1 || fs.sent[0] != "Access denied." {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}
}

func TestHandleIncomingMessage_DeliversText(t *testing.T) {
	fs := &fakeSender{}
	fr := &fakeRunner{}
	b := newBot(fs, fr, "journal", []int64{1})

	b.handleIncomingMessage(context.Background(), message(1, "buy milk\nand bread"))

	if fr.agentID != "journal" || len(fr.delivered) != 1 {
		t.Fatalf("expected one event for journal, got %q %+v", fr.agentID, fr.delivered)
	}
	ev := fr.delivered[0]
	if ev.Payload["text"] != "buy milk\nand bread" || ev.Payload["from"] != "alice" {
		t.Fatalf("unexpected payload: %+v", ev.Payload)
	}
	if ev.ID == "" {
		t.Fatalf("event id must be set")
	}
	if len(fs.sent) != 1 || !strings.HasPrefix(fs.sent[0], "✅") {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}
}

func TestHandleIncomingMessage_DeliveryError(t *testing.T) {
	fs := &fakeSender{}
	fr := &fakeRunner{err: errors.New("remote file not found")}
	b := newBot(fs, fr, "journal", []int64{1})

	b.handleIncomingMessage(context.Background(), message(1, "x"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "remote file not found") {
		t.Fatalf("error not reported: %+v", fs.sent)
	}
}

func TestHandleIncomingMessage_EmptyText(t *testing.T) {
	fs := &fakeSender{}
	fr := &fakeRunner{}
	b := newBot(fs, fr, "journal", []int64{1})

	b.handleIncomingMessage(context.Background(), message(1, "  "))

	if len(fr.delivered) != 0 || len(fs.sent) != 1 {
		t.Fatalf("blank message must be rejected: %+v %+v", fr.delivered, fs.sent)
	}
}

func TestHandleCommand_Status(t *testing.T) {
	last := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	fs := &fakeSender{}
	fr := &fakeRunner{status: runtime.Status{ID: "journal", Name: "Journal", Working: true, LastReceiveAt: &last}}
	b := newBot(fs, fr, "journal", []int64{1})

	b.handleIncomingMessage(context.Background(), command(1, "status"))

	if len(fr.delivered) != 0 {
		t.Fatalf("commands must not be delivered")
	}
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Working: yes") || !strings.Contains(fs.sent[0], "2026-06-01T09:00:00Z") {
		t.Fatalf("unexpected status reply: %+v", fs.sent)
	}
}
