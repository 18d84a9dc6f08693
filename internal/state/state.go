// Package state keeps the per-agent bookkeeping the runtime maintains on
// behalf of agents: when they last received events and what they logged.
package state

import (
	"context"
	"time"
)

// Log levels. Anything at LevelError or above counts as an error.
const (
	LevelInfo  = 3
	LevelError = 4
)

// DefaultLogLength is how many log entries are kept per agent.
const DefaultLogLength = 200

// recentErrorWindow widens "recent" to errors logged shortly before the last receive.
const recentErrorWindow = 2 * time.Minute

type LogEntry struct {
	AgentID        string    `json:"agent_id"`
	Level          int       `json:"level"`
	Message        string    `json:"message"`
	InboundEventID string    `json:"inbound_event_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e LogEntry) IsError() bool { return e.Level >= LevelError }

// Store persists agent state. Logs are returned newest first and capped at
// the store's log length.
type Store interface {
	RecordReceive(ctx context.Context, agentID string, at time.Time) error
	AddLog(ctx context.Context, entry LogEntry) error
	Logs(ctx context.Context, agentID string) ([]LogEntry, error)
	// ClearLogs drops all logs and the error marker.
	ClearLogs(ctx context.Context, agentID string) error
	Snapshot(ctx context.Context, agentID string) (Snapshot, error)
}

// Snapshot is a point-in-time view of an agent's state. It satisfies the
// health context agents use in their working check.
type Snapshot struct {
	LastReceive  time.Time `json:"last_receive_at"`
	LastErrorLog time.Time `json:"last_error_log_at"`
}

func (s Snapshot) LastReceiveAt() (time.Time, bool) {
	return s.LastReceive, !s.LastReceive.IsZero()
}

// RecentErrorLogsExist is true when an error was logged after, or up to two
// minutes before, the last receive.
func (s Snapshot) RecentErrorLogsExist() bool {
	if s.LastErrorLog.IsZero() || s.LastReceive.IsZero() {
		return false
	}
	return s.LastErrorLog.After(s.LastReceive.Add(-recentErrorWindow))
}
