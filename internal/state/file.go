package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

type agentRecord struct {
	LastReceiveAt  time.Time  `json:"last_receive_at"`
	LastErrorLogAt time.Time  `json:"last_error_log_at"`
	Logs           []LogEntry `json:"logs"`
}

// FileStore keeps one JSON document per agent in a directory.
type FileStore struct {
	dir       string
	logLength int
	mu        sync.Mutex
}

func NewFileStore(dir string, logLength int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	if logLength <= 0 {
		logLength = DefaultLogLength
	}
	return &FileStore{dir: dir, logLength: logLength}, nil
}

func (s *FileStore) RecordReceive(_ context.Context, agentID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadUnlocked(agentID)
	if err != nil {
		return err
	}
	rec.LastReceiveAt = at.UTC()
	return s.saveUnlocked(agentID, rec)
}

func (s *FileStore) AddLog(_ context.Context, entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadUnlocked(entry.AgentID)
	if err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	rec.Logs = append([]LogEntry{entry}, rec.Logs...)
	if len(rec.Logs) > s.logLength {
		rec.Logs = rec.Logs[:s.logLength]
	}
	if entry.IsError() {
		rec.LastErrorLogAt = entry.CreatedAt
	}
	return s.saveUnlocked(entry.AgentID, rec)
}

func (s *FileStore) Logs(_ context.Context, agentID string) ([]LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadUnlocked(agentID)
	if err != nil {
		return nil, err
	}
	return rec.Logs, nil
}

func (s *FileStore) ClearLogs(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadUnlocked(agentID)
	if err != nil {
		return err
	}
	rec.Logs = nil
	rec.LastErrorLogAt = time.Time{}
	return s.saveUnlocked(agentID, rec)
}

func (s *FileStore) Snapshot(_ context.Context, agentID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadUnlocked(agentID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{LastReceive: rec.LastReceiveAt, LastErrorLog: rec.LastErrorLogAt}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func (s *FileStore) pathFor(agentID string) string {
	return filepath.Join(s.dir, unsafeChars.ReplaceAllString(agentID, "_")+".json")
}

func (s *FileStore) loadUnlocked(agentID string) (agentRecord, error) {
	var rec agentRecord
	b, err := os.ReadFile(s.pathFor(agentID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, nil
		}
		return rec, fmt.Errorf("open: %w", err)
	}
	if len(b) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		// malformed -> start fresh
		return agentRecord{}, nil
	}
	return rec, nil
}

func (s *FileStore) saveUnlocked(agentID string, rec agentRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp := s.pathFor(agentID) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return os.Rename(tmp, s.pathFor(agentID))
}
