package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ALLOWED_USERS", "1:2")
	t.Setenv("S3_BUCKET", "notes")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.StateBackend != "file" || cfg.AgentLogLength != 200 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowedUsers) != 2 || cfg.AllowedUsers[1] != 2 {
		t.Fatalf("allowed users: %v", cfg.AllowedUsers)
	}
	s := cfg.StorageSettings()
	if s.S3.Bucket != "notes" || s.S3.Region != "us-east-1" {
		t.Fatalf("s3 settings: %+v", s.S3)
	}
}

func TestLoad_GDriveCredentialsFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(p, []byte(`{"installed":{}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GDRIVE_CREDENTIALS_JSON_PATH", p)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GDriveCredentialsJSON != `{"installed":{}}` {
		t.Fatalf("credentials not read: %q", cfg.GDriveCredentialsJSON)
	}
}

func TestParseAgents(t *testing.T) {
	data := []byte(`
agents:
  - id: journal
    storage: dropbox
    options:
      path: /journal.txt
      expected_receive_period_in_days: 2
  - id: inbox
    name: Inbox
    storage: local
    disabled: true
    options:
      path: "inbox/{{ agent.id }}.txt"
      expected_receive_period_in_days: "7"
`)
	defs, err := ParseAgents(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("want 2 agents, got %d", len(defs))
	}
	if defs[0].Name != "journal" {
		t.Fatalf("name should default to id: %q", defs[0].Name)
	}
	if defs[0].Options["expected_receive_period_in_days"] != 2 {
		t.Fatalf("int option: %#v", defs[0].Options["expected_receive_period_in_days"])
	}
	if !defs[1].Disabled || defs[1].Options["path"] != "inbox/{{ agent.id }}.txt" {
		t.Fatalf("second agent: %+v", defs[1])
	}
}

func TestParseAgents_Invalid(t *testing.T) {
	if _, err := ParseAgents([]byte("agents:\n  - name: x\n")); err == nil {
		t.Fatalf("missing id must fail")
	}
	if _, err := ParseAgents([]byte("agents:\n  - id: a\n  - id: a\n")); err == nil {
		t.Fatalf("duplicate id must fail")
	}
	if _, err := LoadAgents(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("missing file must fail")
	}
}
