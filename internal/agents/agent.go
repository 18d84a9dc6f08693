package agents

import (
	"context"
	"time"

	"file-appender/internal/event"
)

// Agent is a configured unit of automation that reacts to incoming events.
type Agent interface {
	ID() string
	Name() string
	Description() string
	Options() map[string]any
	SetOptions(opts map[string]any) error
	// CanReceiveBulk reports whether the runtime may hand over several events
	// in one Receive call.
	CanReceiveBulk() bool
	Receive(ctx context.Context, events []event.Event) error
	Working(hc HealthContext, now time.Time) bool
}

// HealthContext supplies the framework-maintained state the health check
// depends on. Implementations must not block.
type HealthContext interface {
	// LastReceiveAt returns false when the agent never received an event.
	LastReceiveAt() (time.Time, bool)
	RecentErrorLogsExist() bool
}

// StaticHealth is a HealthContext over fixed values.
type StaticHealth struct {
	LastReceive  time.Time
	RecentErrors bool
}

func (s StaticHealth) LastReceiveAt() (time.Time, bool) {
	return s.LastReceive, !s.LastReceive.IsZero()
}

func (s StaticHealth) RecentErrorLogsExist() bool { return s.RecentErrors }

// receivedWithin is the common "working" rule of receiving agents.
func receivedWithin(hc HealthContext, days int, now time.Time) bool {
	if hc == nil || days <= 0 {
		return false
	}
	last, ok := hc.LastReceiveAt()
	if !ok {
		return false
	}
	return last.After(now.AddDate(0, 0, -days)) && !hc.RecentErrorLogsExist()
}
