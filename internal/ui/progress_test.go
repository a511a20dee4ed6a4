package ui

import (
	"strings"
	"testing"
)

func TestApplyEvent(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.cast", "b.cast"}, nil).(*progressModel)

	m.applyEvent(Event{File: "a.cast", Stage: StageAnalyze, Status: StatusWorking})
	if got := m.items[0].status; got != "analyzing" {
		t.Fatalf("status = %q, want analyzing", got)
	}
	if got := m.percent(); got != 0.2 {
		t.Fatalf("percent = %v, want 0.2", got)
	}

	m.applyEvent(Event{File: "a.cast", Stage: StageReport, Status: StatusDone, Problems: 3})
	m.applyEvent(Event{File: "b.cast", Status: StatusCached})
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}
	if m.items[0].problems != 3 {
		t.Fatalf("problems = %d, want 3", m.items[0].problems)
	}

	m.applyEvent(Event{File: "missing.cast", Status: StatusError})
	m.applyEvent(Event{Stage: StageReport, Status: StatusWorking})
	if m.stageLabel != "reporting" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
}

func TestViewListsUnits(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.cast"}, nil).(*progressModel)
	m.applyEvent(Event{File: "a.cast", Status: StatusDone, Problems: 2})
	m.done = true
	out := m.View()
	for _, want := range []string{"done: checking", "a.cast (2)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view lacks %q:\n%s", want, out)
		}
	}
	empty := NewProgressModel("x", nil, nil).(*progressModel)
	if empty.View() != "" {
		t.Fatalf("empty model rendered %q", empty.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
		{"日本語ファイル", 9, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
