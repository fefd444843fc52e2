package trace

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFormatEventNDJSONRoundTrips(t *testing.T) {
	ev := Event{
		Time:   time.Unix(0, 0).UTC(),
		Kind:   KindSpanBegin,
		Scope:  ScopeMethod,
		SpanID: 3,
		Name:   "batch.runOne:a",
	}
	data := FormatEvent(ev, FormatNDJSON)

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding NDJSON event: %v", err)
	}
	if decoded["kind"] != "begin" {
		t.Fatalf("expected kind %q, got %v", "begin", decoded["kind"])
	}
	if decoded["scope"] != "method" {
		t.Fatalf("expected scope %q, got %v", "method", decoded["scope"])
	}
	if decoded["name"] != "batch.runOne:a" {
		t.Fatalf("expected name to survive, got %v", decoded["name"])
	}
}

func TestFormatEventTextIncludesNameAndDetail(t *testing.T) {
	ev := Event{Kind: KindSpanEnd, Name: "forest", Detail: "3 leaves"}
	data := FormatEvent(ev, FormatText)
	text := string(data)
	if !strings.Contains(text, "forest") || !strings.Contains(text, "3 leaves") {
		t.Fatalf("expected text output to mention name and detail, got %q", text)
	}
}
