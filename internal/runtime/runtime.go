// Package runtime hosts agents: it delivers events to them, keeps their
// receive timestamps and error log, and answers health questions.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"file-appender/internal/agents"
	"file-appender/internal/event"
	"file-appender/internal/metrics"
	"file-appender/internal/state"
)

var (
	ErrUnknownAgent  = errors.New("unknown agent")
	ErrAgentDisabled = errors.New("agent is disabled")
)

type RegisterOptions struct {
	Storage  string
	Disabled bool
}

type entry struct {
	agent    agents.Agent
	storage  string
	disabled bool
}

// Status describes one hosted agent.
type Status struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Storage        string         `json:"storage"`
	Disabled       bool           `json:"disabled"`
	Working        bool           `json:"working"`
	RecentErrors   bool           `json:"recent_errors"`
	LastReceiveAt  *time.Time     `json:"last_receive_at,omitempty"`
	LastErrorLogAt *time.Time     `json:"last_error_log_at,omitempty"`
	Options        map[string]any `json:"options,omitempty"`
	Description    string         `json:"description,omitempty"`
}

type Runner struct {
	store state.Store
	now   func() time.Time

	mu     sync.RWMutex
	agents map[string]*entry
}

func New(store state.Store) *Runner {
	return &Runner{
		store:  store,
		now:    time.Now,
		agents: make(map[string]*entry),
	}
}

// SetClock replaces the time source.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }

func (r *Runner) Register(a agents.Agent, opts RegisterOptions) error {
	if a.ID() == "" {
		return fmt.Errorf("agent id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[a.ID()]; ok {
		return fmt.Errorf("agent %s already registered", a.ID())
	}
	r.agents[a.ID()] = &entry{agent: a, storage: opts.Storage, disabled: opts.Disabled}
	log.Printf("🤖 Registered agent %s (%s) on %s", a.ID(), a.Name(), opts.Storage)
	return nil
}

// IDs returns registered agent ids in sorted order.
func (r *Runner) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Runner) lookup(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	return e, nil
}

// Deliver hands events to an agent. Agents that cannot receive in bulk get
// one call per event, so a failing event does not keep later ones from
// being delivered. Every failure is written to the agent's error log.
func (r *Runner) Deliver(ctx context.Context, agentID string, events []event.Event) error {
	e, err := r.lookup(agentID)
	if err != nil {
		return err
	}
	if e.disabled {
		return fmt.Errorf("%w: %s", ErrAgentDisabled, agentID)
	}
	if len(events) == 0 {
		return nil
	}

	batches := [][]event.Event{events}
	if !e.agent.CanReceiveBulk() {
		batches = make([][]event.Event, 0, len(events))
		for _, ev := range events {
			batches = append(batches, []event.Event{ev})
		}
	}

	var errs []error
	for _, batch := range batches {
		if err := r.receive(ctx, e.agent, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) receive(ctx context.Context, a agents.Agent, batch []event.Event) error {
	if err := r.store.RecordReceive(ctx, a.ID(), r.now()); err != nil {
		log.Printf("⚠️ failed to record receive for %s: %v", a.ID(), err)
	}
	start := time.Now()
	err := a.Receive(ctx, batch)
	metrics.ObserveReceive(a.ID(), len(batch), time.Since(start), err)
	if err == nil {
		return nil
	}

	log.Printf("❌ [%s] receive failed: %v", a.ID(), err)
	logEntry := state.LogEntry{
		AgentID:   a.ID(),
		Level:     state.LevelError,
		Message:   "Exception during receive: " + err.Error(),
		CreatedAt: r.now(),
	}
	if len(batch) == 1 {
		logEntry.InboundEventID = batch[0].ID
	}
	if logErr := r.store.AddLog(ctx, logEntry); logErr != nil {
		log.Printf("⚠️ failed to write error log for %s: %v", a.ID(), logErr)
	}
	return err
}

// Status evaluates the health check of one agent.
func (r *Runner) Status(ctx context.Context, agentID string) (Status, error) {
	e, err := r.lookup(agentID)
	if err != nil {
		return Status{}, err
	}
	snap, err := r.store.Snapshot(ctx, agentID)
	if err != nil {
		return Status{}, fmt.Errorf("load state: %w", err)
	}
	st := Status{
		ID:           e.agent.ID(),
		Name:         e.agent.Name(),
		Storage:      e.storage,
		Disabled:     e.disabled,
		Working:      e.agent.Working(snap, r.now()),
		RecentErrors: snap.RecentErrorLogsExist(),
		Options:      e.agent.Options(),
		Description:  e.agent.Description(),
	}
	if t, ok := snap.LastReceiveAt(); ok {
		st.LastReceiveAt = &t
	}
	if !snap.LastErrorLog.IsZero() {
		t := snap.LastErrorLog
		st.LastErrorLogAt = &t
	}
	return st, nil
}

// Statuses evaluates every agent. Agents whose state cannot be loaded are skipped.
func (r *Runner) Statuses(ctx context.Context) []Status {
	var out []Status
	for _, id := range r.IDs() {
		st, err := r.Status(ctx, id)
		if err != nil {
			log.Printf("⚠️ status of %s: %v", id, err)
			continue
		}
		out = append(out, st)
	}
	return out
}

func (r *Runner) Logs(ctx context.Context, agentID string) ([]state.LogEntry, error) {
	if _, err := r.lookup(agentID); err != nil {
		return nil, err
	}
	return r.store.Logs(ctx, agentID)
}

func (r *Runner) ClearLogs(ctx context.Context, agentID string) error {
	if _, err := r.lookup(agentID); err != nil {
		return err
	}
	return r.store.ClearLogs(ctx, agentID)
}

// SetOptions re-validates and replaces an agent's options.
func (r *Runner) SetOptions(agentID string, opts map[string]any) error {
	e, err := r.lookup(agentID)
	if err != nil {
		return err
	}
	return e.agent.SetOptions(opts)
}
