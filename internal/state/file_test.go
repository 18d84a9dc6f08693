package state

import (
	"context"
	"testing"
	"time"
)

func TestFileStore_ReceiveAndLogs(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	snap, err := s.Snapshot(ctx, "a1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, ok := snap.LastReceiveAt(); ok {
		t.Fatalf("fresh agent must not have a receive time")
	}

	at := time.Unix(1000, 0)
	if err := s.RecordReceive(ctx, "a1", at); err != nil {
		t.Fatalf("record: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := s.AddLog(ctx, LogEntry{AgentID: "a1", Level: LevelInfo, Message: string(rune('a' + i))}); err != nil {
			t.Fatalf("log %d: %v", i, err)
		}
	}
	logs, err := s.Logs(ctx, "a1")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("want 3 logs after trim, got %d", len(logs))
	}
	if logs[0].Message != "e" || logs[2].Message != "c" {
		t.Fatalf("want newest first: %+v", logs)
	}

	snap, _ = s.Snapshot(ctx, "a1")
	if last, ok := snap.LastReceiveAt(); !ok || !last.Equal(at) {
		t.Fatalf("unexpected last receive: %v", last)
	}
	if !snap.LastErrorLog.IsZero() {
		t.Fatalf("info logs must not set the error marker")
	}
}

func TestFileStore_ErrorMarkerAndClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	now := time.Now()
	_ = s.RecordReceive(ctx, "weird/id", now)
	if err := s.AddLog(ctx, LogEntry{AgentID: "weird/id", Level: LevelError, Message: "boom", CreatedAt: now.Add(time.Second)}); err != nil {
		t.Fatalf("log: %v", err)
	}

	// a second store over the same dir sees the data
	s2, _ := NewFileStore(dir, 0)
	snap, _ := s2.Snapshot(ctx, "weird/id")
	if !snap.RecentErrorLogsExist() {
		t.Fatalf("error after receive must be recent")
	}

	if err := s2.ClearLogs(ctx, "weird/id"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	snap, _ = s2.Snapshot(ctx, "weird/id")
	if snap.RecentErrorLogsExist() {
		t.Fatalf("clear must drop the error marker")
	}
	if _, ok := snap.LastReceiveAt(); !ok {
		t.Fatalf("clear must keep the receive time")
	}
	logs, _ := s2.Logs(ctx, "weird/id")
	if len(logs) != 0 {
		t.Fatalf("logs not cleared: %+v", logs)
	}
}

func TestSnapshot_RecentErrors(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"no errors", Snapshot{LastReceive: base}, false},
		{"never received", Snapshot{LastErrorLog: base}, false},
		{"error after receive", Snapshot{LastReceive: base, LastErrorLog: base.Add(time.Minute)}, true},
		{"error just before receive", Snapshot{LastReceive: base, LastErrorLog: base.Add(-time.Minute)}, true},
		{"old error", Snapshot{LastReceive: base, LastErrorLog: base.Add(-time.Hour)}, false},
	}
	for _, c := range cases {
		if got := c.snap.RecentErrorLogsExist(); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
