package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares agent state between several service instances.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	logLength int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Prefix    string
	LogLength int
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "file-appender"
	}
	logLength := cfg.LogLength
	if logLength <= 0 {
		logLength = DefaultLogLength
	}
	return &RedisStore{client: client, prefix: prefix, logLength: logLength}, nil
}

func (s *RedisStore) key(agentID, field string) string {
	return fmt.Sprintf("%s:agent:%s:%s", s.prefix, agentID, field)
}

func (s *RedisStore) RecordReceive(ctx context.Context, agentID string, at time.Time) error {
	return s.client.Set(ctx, s.key(agentID, "last_receive_at"), at.UTC().Format(time.RFC3339Nano), 0).Err()
}

func (s *RedisStore) AddLog(ctx context.Context, entry LogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	logsKey := s.key(entry.AgentID, "logs")
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, logsKey, b)
		p.LTrim(ctx, logsKey, 0, int64(s.logLength-1))
		if entry.IsError() {
			p.Set(ctx, s.key(entry.AgentID, "last_error_log_at"), entry.CreatedAt.Format(time.RFC3339Nano), 0)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Logs(ctx context.Context, agentID string) ([]LogEntry, error) {
	raw, err := s.client.LRange(ctx, s.key(agentID, "logs"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(raw))
	for _, r := range raw {
		var e LogEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) ClearLogs(ctx context.Context, agentID string) error {
	return s.client.Del(ctx, s.key(agentID, "logs"), s.key(agentID, "last_error_log_at")).Err()
}

func (s *RedisStore) Snapshot(ctx context.Context, agentID string) (Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.key(agentID, "last_receive_at"), s.key(agentID, "last_error_log_at")).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Snapshot{}, err
	}
	var snap Snapshot
	if len(vals) == 2 {
		snap.LastReceive = parseTime(vals[0])
		snap.LastErrorLog = parseTime(vals[1])
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func parseTime(v interface{}) time.Time {
	str, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}
	}
	return t
}
