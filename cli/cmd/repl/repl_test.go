package repl

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/vela"
)

func testModel(t *testing.T) (model, *vela.Interpreter) {
	t.Helper()

	in := vela.NewInterpreter(vela.WithOutput(io.Discard))

	return newModel(context.Background(), in, NewHistory(""), log.Make(io.Discard)), in
}

func submit(m model, line string) (model, tea.Cmd) {
	m.input.SetValue(line)
	m.input.SetCursor(len(line))

	return m.executeInput()
}

func TestModel_EvalDefinesAndRecords(t *testing.T) {
	m, in := testModel(t)

	m, cmd := submit(m, "x is 2")
	if cmd == nil {
		t.Error("executeInput() returned no command for a definition")
	}

	if v, ok := in.Lookup("x"); !ok || !v.Equal(vela.Real(2)) {
		t.Fatalf("Lookup(x) = %v, %v", v, ok)
	}

	m, _ = submit(m, "f(t: real): real { t * x }")
	m, _ = submit(m, "f(21)")

	if got, want := m.source, "x is 2\nf(t: real): real { t * x }\nf(21)\n"; got != want {
		t.Errorf("source = %q, want %q", got, want)
	}

	if got := m.history.Len(); got != 3 {
		t.Errorf("history.Len() = %d, want 3", got)
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
}

func TestModel_EvalErrorLeavesSource(t *testing.T) {
	m, _ := testModel(t)

	m, _ = submit(m, "y is 1 / 0")
	if m.source != "" {
		t.Errorf("source = %q after failed input, want empty", m.source)
	}

	m, _ = submit(m, "1 +")
	if m.source != "" {
		t.Errorf("source = %q after parse error, want empty", m.source)
	}

	// Failed input is still recalled from history.
	if got := m.history.Len(); got != 2 {
		t.Errorf("history.Len() = %d, want 2", got)
	}
}

func TestModel_ToggleModePreservesInput(t *testing.T) {
	m, _ := testModel(t)

	m.input.SetValue("1 + 2")
	m.input.SetCursor(5)

	m, _ = m.toggleMode()
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after toggle: mode=%v input=%q", m.mode, m.input.Value())
	}

	m.input.SetValue("fun")

	m, _ = m.toggleMode()
	if m.mode != modeEval || m.input.Value() != "1 + 2" {
		t.Fatalf("after toggle back: mode=%v input=%q", m.mode, m.input.Value())
	}

	m, _ = m.toggleMode()
	if m.input.Value() != "fun" {
		t.Errorf("control input = %q, want %q", m.input.Value(), "fun")
	}
}

func TestModel_Commands(t *testing.T) {
	m, in := testModel(t)
	in.Bind("answer", vela.Real(42))

	if got := m.listBindings(); !strings.Contains(got, "ANSWER") || !strings.Contains(got, "42 : REAL") {
		t.Errorf("listBindings() = %q", got)
	}

	got := m.listFunctions([]string{"length"})
	if !strings.Contains(got, "LENGTH(STRING): REAL") || !strings.Contains(got, "LENGTH(LIST): REAL") {
		t.Errorf("listFunctions(length) = %q", got)
	}

	if got := m.listFunctions([]string{"now"}); !strings.Contains(got, "impure") {
		t.Errorf("listFunctions(now) = %q, want impure marker", got)
	}

	if got := m.listFunctions([]string{"nosuch"}); !strings.Contains(got, "no functions") {
		t.Errorf("listFunctions(nosuch) = %q", got)
	}

	m, _ = m.toggleMode()

	m, cmd := submit(m, "quit")
	if !m.quitting || cmd == nil {
		t.Errorf("quit: quitting=%v cmd=%v", m.quitting, cmd != nil)
	}
}

func TestModel_CycleCandidate(t *testing.T) {
	m, _ := testModel(t)

	m.input.SetValue("subs")
	m.input.SetCursor(4)
	refreshMatches(&m, true)

	if len(m.matches) == 0 {
		t.Fatal("no matches for \"subs\"")
	}

	m, _ = m.cycleCandidate(1)

	if got := m.input.Value(); got != "substring" {
		t.Errorf("input after tab = %q, want %q", got, "substring")
	}
}

func TestModel_HistoryStep(t *testing.T) {
	m, _ := testModel(t)

	for _, e := range []HistoryEntry{{"1", modeEval}, {"vars", modeCtrl}, {"2", modeEval}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m, _ = m.historyStep(-1, false)
	if m.input.Value() != "2" || m.mode != modeEval {
		t.Fatalf("step 1: %q mode=%v", m.input.Value(), m.mode)
	}

	m, _ = m.historyStep(-1, false)
	if m.input.Value() != "vars" || m.mode != modeCtrl {
		t.Fatalf("step 2: %q mode=%v", m.input.Value(), m.mode)
	}

	m, _ = m.switchToMode(modeEval)
	m.historyIdx = m.history.Len()

	m, _ = m.historyStep(-1, true)
	m, _ = m.historyStep(-1, true)

	if m.input.Value() != "1" {
		t.Errorf("same-mode step = %q, want %q", m.input.Value(), "1")
	}

	m, _ = m.historyStep(1, true)
	m, _ = m.historyStep(1, true)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past newest: %q idx=%d", m.input.Value(), m.historyIdx)
	}
}

func TestRun_NilInterpreter(t *testing.T) {
	err := Run(context.Background(), nil, "", log.Make(io.Discard))
	if !errors.Is(err, ErrNoInterpreter) {
		t.Errorf("Run(nil) error = %v, want %v", err, ErrNoInterpreter)
	}
}
