package agents

import (
	"encoding/json"
	"testing"
)

func TestLeadingInt(t *testing.T) {
	cases := map[string]int{
		"42":      42,
		"  7":     7,
		"5 days":  5,
		"-3":      -3,
		"+8":      8,
		"1_000":   1000,
		"abc":     0,
		"":        0,
		"12abc34": 12,
	}
	for in, want := range cases {
		if got := leadingInt(in); got != want {
			t.Fatalf("leadingInt(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestToInt(t *testing.T) {
	if toInt(json.Number("3")) != 3 || toInt(2.9) != 2 || toInt(true) != 0 || toInt(nil) != 0 {
		t.Fatalf("unexpected coercion")
	}
}

func TestToString(t *testing.T) {
	if toString(nil) != "" || toString("x") != "x" || toString(1.5) != "1.5" {
		t.Fatalf("unexpected coercion")
	}
	if got := toString(map[string]any{"a": 1}); got != `{"a":1}` {
		t.Fatalf("map: %q", got)
	}
}

func TestPresent(t *testing.T) {
	for _, v := range []any{nil, "", " \t", false, map[string]any{}, []any{}} {
		if present(v) {
			t.Fatalf("%#v should be absent", v)
		}
	}
	for _, v := range []any{"x", 0, true, []any{1}} {
		if !present(v) {
			t.Fatalf("%#v should be present", v)
		}
	}
}
