package interpolate

import "testing"

func TestString(t *testing.T) {
	i := New()
	got, err := i.String("/notes/{{ agent.name }}.txt", map[string]any{
		"agent": map[string]any{"name": "journal"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "/notes/journal.txt" {
		t.Fatalf("unexpected: %q", got)
	}

	plain, err := i.String("/plain.txt", nil)
	if err != nil || plain != "/plain.txt" {
		t.Fatalf("plain string changed: %q %v", plain, err)
	}
}

func TestString_SyntaxError(t *testing.T) {
	if _, err := New().String("{% if x %}no end", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOptions(t *testing.T) {
	opts := map[string]any{
		"path":                            "/{{ dir }}/log.txt",
		"expected_receive_period_in_days": 2,
		"nested":                          map[string]any{"a": "{{ dir }}"},
		"list":                            []any{"{{ dir }}", 1},
	}
	out, err := New().Options(opts, map[string]any{"dir": "inbox"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out["path"] != "/inbox/log.txt" {
		t.Fatalf("path: %v", out["path"])
	}
	if out["expected_receive_period_in_days"] != 2 {
		t.Fatalf("non-string leaf changed: %v", out["expected_receive_period_in_days"])
	}
	if out["nested"].(map[string]any)["a"] != "inbox" {
		t.Fatalf("nested: %v", out["nested"])
	}
	if out["list"].([]any)[0] != "inbox" {
		t.Fatalf("list: %v", out["list"])
	}
	if opts["path"] != "/{{ dir }}/log.txt" {
		t.Fatalf("input mutated")
	}
}
