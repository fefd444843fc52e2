package trace

import (
	"bytes"
	"testing"
)

type recordingTracer struct {
	level  Level
	events []*Event
}

func (r *recordingTracer) Emit(ev *Event) { r.events = append(r.events, ev) }
func (r *recordingTracer) Flush() error   { return nil }
func (r *recordingTracer) Close() error   { return nil }
func (r *recordingTracer) Level() Level   { return r.level }
func (r *recordingTracer) Enabled() bool  { return r.level > LevelOff }

func TestBeginEndEmitsMatchingSpanIDs(t *testing.T) {
	rt := &recordingTracer{level: LevelDebug}
	span := Begin(rt, ScopeMethod, "runOne", 7)
	span.End("done")

	if len(rt.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rt.events))
	}
	begin, end := rt.events[0], rt.events[1]
	if begin.Kind != KindSpanBegin || end.Kind != KindSpanEnd {
		t.Fatalf("expected begin then end, got %v then %v", begin.Kind, end.Kind)
	}
	if begin.SpanID != end.SpanID {
		t.Fatalf("begin and end span IDs diverge: %d vs %d", begin.SpanID, end.SpanID)
	}
	if begin.ParentID != 7 {
		t.Fatalf("expected parent ID 7, got %d", begin.ParentID)
	}
	if end.Detail != "done" {
		t.Fatalf("expected end detail %q, got %q", "done", end.Detail)
	}
}

func TestBeginBelowConfiguredScopeReturnsNopSpan(t *testing.T) {
	rt := &recordingTracer{level: LevelPhase}
	span := Begin(rt, ScopeInstr, "too-detailed", 0)
	span.End("")
	if len(rt.events) != 0 {
		t.Fatalf("expected no events for a scope below the tracer's level, got %d", len(rt.events))
	}
}

func TestBeginWithDisabledTracerReturnsNopSpan(t *testing.T) {
	span := Begin(Nop, ScopeBatch, "batch.Run", 0)
	dur := span.End("")
	if dur != 0 {
		t.Fatalf("expected zero duration from a nop span, got %v", dur)
	}
}

func TestWithExtraAttachesKeyValuesToEndEvent(t *testing.T) {
	rt := &recordingTracer{level: LevelDebug}
	span := Begin(rt, ScopeMethod, "runOne", 0)
	span.WithExtra("instructions", "12")
	span.End("")

	end := rt.events[len(rt.events)-1]
	if end.Extra["instructions"] != "12" {
		t.Fatalf("expected extra field to survive onto the end event, got %v", end.Extra)
	}
}

func TestStreamTracerWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	span := Begin(st, ScopeBatch, "batch.Run", 0)
	span.End("")

	if n := bytes.Count(buf.Bytes(), []byte("\n")); n != 2 {
		t.Fatalf("expected 2 NDJSON lines (begin, end), got %d", n)
	}
}
