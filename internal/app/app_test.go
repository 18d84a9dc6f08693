package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-appender/internal/config"
	"file-appender/internal/event"
	"file-appender/internal/state"
)

const agentsYAML = `
agents:
  - id: notes
    name: Notes
    storage: local
    options:
      path: "{{ agent.id }}.txt"
      expected_receive_period_in_days: 2
  - id: scratch
    storage: memory
    disabled: true
    options:
      path: /scratch.txt
      expected_receive_period_in_days: "1"
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	agentsFile := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(agentsFile, []byte(agentsYAML), 0o644))
	return &config.Config{
		AgentsFile:   agentsFile,
		StateBackend: "file",
		StateDir:     filepath.Join(dir, "state"),
		LocalRoot:    filepath.Join(dir, "files"),
	}
}

func TestNew_RegistersAndDelivers(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"notes", "scratch"}, a.Runner.IDs())

	target := filepath.Join(cfg.LocalRoot, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	require.NoError(t, a.Runner.Deliver(ctx, "notes", []event.Event{event.Text("hello")}))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "existing\nhello\n", string(data))

	st, err := a.Runner.Status(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, st.Working)
	assert.Equal(t, "local", st.Storage)
}

func TestNew_InvalidAgentOptions(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.AgentsFile, []byte(`
agents:
  - id: broken
    storage: memory
    options:
      path: ""
      expected_receive_period_in_days: 0
`), 0o644))

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.AgentsFile, []byte("agents:\n  - id: x\n    storage: floppy\n"), 0o644))

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewStateStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	st, err := NewStateStore(ctx, &config.Config{StateBackend: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	_, ok := st.(*state.RedisStore)
	assert.True(t, ok)

	_, err = NewStateStore(ctx, &config.Config{StateBackend: "etcd"})
	assert.Error(t, err)
}
