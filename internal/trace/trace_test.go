package trace

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRingTracerLevels(t *testing.T) {
	ring := NewRingTracer(8, LevelDetail)
	run := Begin(ring, ScopeUnit, "unit:a.cpp", 0)
	chk := Begin(ring, ScopeChecker, "checker:Return", run.ID())
	fn := Begin(ring, ScopeFunction, "f", chk.ID())
	fn.End("")
	chk.End("2 problems")
	run.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events (function scope filtered), got %d", len(events))
	}
	if events[2].Kind != KindSpanEnd || events[2].Detail != "2 problems" {
		t.Fatalf("unexpected event %+v", events[2])
	}
}

func TestErrorBypassesScopeFilter(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelError, FormatText)
	Begin(st, ScopeUnit, "unit", 0).End("")
	Error(st, ScopeChecker, "checker:Broken", "panic: boom")
	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "checker:Broken (panic: boom)") {
		t.Fatalf("unexpected trace output %q", out)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeFunction, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("ring order = %+v", events)
	}
}

func TestMultiTracerRing(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(4, LevelPhase)
	multi := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), ring)
	if multi.Ring() != ring {
		t.Fatalf("Ring() did not return the ring tracer")
	}
	Begin(multi, ScopeUnit, "unit:m.cpp", 0).End("")
	if len(ring.Snapshot()) != 2 || !strings.Contains(buf.String(), "unit:m.cpp") {
		t.Fatalf("events not fanned out: ring=%d stream=%q", len(ring.Snapshot()), buf.String())
	}
	if NewMultiTracer(LevelPhase).Ring() != nil {
		t.Fatalf("expected no ring")
	}
}

func TestParseModeAndNew(t *testing.T) {
	tests := []struct {
		in   string
		want StorageMode
		err  bool
	}{
		{"stream", ModeStream, false},
		{" Both ", ModeBoth, false},
		{"ring", ModeRing, false},
		{"disk", ModeRing, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if got != tt.want || (err != nil) != tt.err {
			t.Fatalf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}

	tr, err := New(Config{Level: LevelOff, Mode: ModeStream, OutputPath: "/nonexistent/dir/trace.log"})
	if err != nil || tr.Enabled() {
		t.Fatalf("level off must give a disabled tracer without opening output: %v", err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m, ok := tr.(*MultiTracer); !ok || m.Ring() == nil {
		t.Fatalf("both mode tracer = %T", tr)
	}
}

func TestHeartbeatStop(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat started on a disabled tracer")
	}
	ring := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat || events[0].Scope != ScopeRun {
		t.Fatalf("heartbeat events = %+v", events)
	}
	var none *Heartbeat
	none.Stop()
}
