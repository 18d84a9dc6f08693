package scheduler

import (
	"context"
	"testing"
	"time"

	"file-appender/internal/runtime"
)

type fakeSource struct {
	statuses []runtime.Status
}

func (f fakeSource) Statuses(context.Context) []runtime.Status { return f.statuses }

func TestCheck_CountsFailingAgents(t *testing.T) {
	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := fakeSource{statuses: []runtime.Status{
		{ID: "ok", Working: true, LastReceiveAt: &last},
		{ID: "never"},
		{ID: "stale", LastReceiveAt: &last},
		{ID: "broken", RecentErrors: true, LastReceiveAt: &last, LastErrorLogAt: &last},
		{ID: "off", Disabled: true},
	}}
	s := New(src, "")
	if got := s.Check(context.Background()); got != 3 {
		t.Fatalf("want 3 failing agents, got %d", got)
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New(fakeSource{}, "not a schedule")
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	s := New(fakeSource{}, "@every 1h")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("scheduler should have an entry")
	}
	s.Stop()
}

func TestStart_NoSource(t *testing.T) {
	s := New(nil, "")
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("no entries expected without a source")
	}
}
