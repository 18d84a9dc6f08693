package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record delivered to agents in batches.
// Payload is free-form JSON-like data; agents read the keys they care about.
type Event struct {
	ID        string         `json:"id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func New(payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Text is a shortcut for the common {"text": "..."} payload.
func Text(text string) Event {
	return New(map[string]any{"text": text})
}
