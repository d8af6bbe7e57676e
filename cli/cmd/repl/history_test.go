package repl

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"x is 2", modeEval},
		{"funcs", modeCtrl},
		{"x * 21", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), "E:x is 2\nC:funcs\nE:x * 21\n"; got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(reloaded.Entries(), h.Entries()) {
		t.Errorf("reloaded entries = %v, want %v", reloaded.Entries(), h.Entries())
	}
}

func TestHistory_Dedupe(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	add := func(line string, mode inputMode) {
		t.Helper()

		if err := h.Add(line, mode); err != nil {
			t.Fatal(err)
		}
	}

	add("a", modeEval)
	add("b", modeEval)
	add("b", modeEval)
	add("a", modeCtrl)
	add("a", modeEval)
	add("   ", modeEval)

	want := []HistoryEntry{{"b", modeEval}, {"a", modeCtrl}, {"a", modeEval}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(string(data), "\n"); got != len(want) {
		t.Errorf("history file has %d lines, want %d", got, len(want))
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if err := h.Add("1 + 1", modeEval); err != nil {
		t.Fatal(err)
	}

	e, err := h.Entry(0)
	if err != nil || e.Line != "1 + 1" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	if _, err := h.Entry(1); err != ErrOutOfBounds {
		t.Errorf("Entry(1) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:x", HistoryEntry{"x", modeEval}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"bare", HistoryEntry{"bare", modeEval}},
	}

	for _, tt := range tests {
		if got := parseEntry(tt.line); got != tt.want {
			t.Errorf("parseEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
