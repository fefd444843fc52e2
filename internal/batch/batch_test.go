package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"ilcore/internal/ir"
	"ilcore/internal/testkit"
	"ilcore/internal/trace"
	"ilcore/internal/types"
)

// buildReturnConst builds a single-block body that just returns a
// constant, valid input for the full pipeline.
func buildReturnConst(t *testing.T, v int64) *ir.MethodBody {
	t.Helper()
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	bb0 := f.NewBlock(0)
	f.Entry = bb0

	c := f.NewConstInt(i32, v, 0)
	f.AppendInst(bb0, c)
	ret := f.NewReturn(f.Inst(c).Result, 1, void)
	f.AppendInst(bb0, ret)

	return f
}

// buildEmptyEntry builds a body whose entry block never receives any
// instructions, which Validate rejects.
func buildEmptyEntry() *ir.MethodBody {
	f := ir.NewMethodBody(nil, nil)
	f.Entry = f.NewBlock(0)
	return f
}

func TestRunProcessesEveryItemIndependently(t *testing.T) {
	items := []Item{
		{Name: "a", Body: buildReturnConst(t, 1)},
		{Name: "b", Body: buildReturnConst(t, 2)},
		{Name: "c", Body: buildEmptyEntry()},
	}

	results, err := Run(context.Background(), items, DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}

	for i, name := range []string{"a", "b", "c"} {
		if results[i].Name != name {
			t.Fatalf("result %d: expected name %q, got %q", i, name, results[i].Name)
		}
	}

	if results[0].Err != nil {
		t.Fatalf("item a: unexpected error: %v", results[0].Err)
	}
	if results[0].Forest == nil {
		t.Fatalf("item a: expected a Forest result")
	}
	if results[1].Err != nil {
		t.Fatalf("item b: unexpected error: %v", results[1].Err)
	}

	if results[2].Err == nil {
		t.Fatalf("item c: expected a validation error for the empty entry block")
	}
	if results[2].Forest != nil {
		t.Fatalf("item c: a failed body should never reach Forest analysis")
	}

	testkit.AssertReachable(t, items[0].Body)
	testkit.AssertReachable(t, items[1].Body)
}

func TestRunWithTimingPopulatesReport(t *testing.T) {
	items := []Item{{Name: "only", Body: buildReturnConst(t, 7)}}

	opts := DefaultOptions()
	opts.Timed = true

	results, err := Run(context.Background(), items, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Timing == nil {
		t.Fatalf("expected a timing report when Options.Timed is set")
	}
	if len(results[0].Timing.Phases) == 0 {
		t.Fatalf("expected at least one timed phase")
	}
}

func TestSummarizeRollsUpOnlyTimedResults(t *testing.T) {
	items := []Item{
		{Name: "ok", Body: buildReturnConst(t, 1)},
		{Name: "bad", Body: buildEmptyEntry()},
	}

	opts := DefaultOptions()
	opts.Timed = true

	results, err := Run(context.Background(), items, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[1].Timing != nil {
		t.Fatalf("a failed item should never have a timing report")
	}

	agg := Summarize(results)
	if _, ok := agg.Phases["validate"]; !ok {
		t.Fatalf("expected validate to appear in the aggregate from the successful item, got %v", agg.Phases)
	}
	if _, ok := agg.Phases["opt"]; !ok {
		t.Fatalf("expected opt to appear in the aggregate from the successful item")
	}
}

func TestRunRespectsJobsLimitWithMoreItemsThanWorkers(t *testing.T) {
	items := make([]Item, 0, 5)
	for i := int64(0); i < 5; i++ {
		items = append(items, Item{Body: buildReturnConst(t, i)})
	}

	opts := DefaultOptions()
	opts.Jobs = 2

	results, err := Run(context.Background(), items, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("item %d: unexpected error: %v", i, res.Err)
		}
	}
}

func TestRunEmptyInputReturnsNoResults(t *testing.T) {
	results, err := Run(context.Background(), nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results for empty input, got %v", results)
	}
}

// TestRunStreamsNDJSONTraceWithNestedSpans exercises a real StreamTracer
// end to end: one batch.Run span and, nested under it, one
// batch.runOne span per item, each line a decodable NDJSON event.
func TestRunStreamsNDJSONTraceWithNestedSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer, err := trace.New(trace.Config{
		Level:  trace.LevelDetail,
		Format: trace.FormatNDJSON,
		Output: &buf,
	})
	if err != nil {
		t.Fatalf("trace.New: %v", err)
	}

	opts := DefaultOptions()
	opts.Tracer = tracer
	items := []Item{
		{Name: "a", Body: buildReturnConst(t, 1)},
		{Name: "b", Body: buildReturnConst(t, 2)},
	}

	if _, err := Run(context.Background(), items, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := tracer.Close(); err != nil {
		t.Fatalf("tracer.Close: %v", err)
	}

	type decoded struct {
		Kind     string `json:"kind"`
		Scope    string `json:"scope"`
		SpanID   uint64 `json:"span_id"`
		ParentID uint64 `json:"parent_id"`
		Name     string `json:"name"`
	}

	var batchSpanID uint64
	methodSpans := 0
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var ev decoded
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("decoding %q: %v", line, err)
		}
		switch {
		case ev.Scope == "batch" && ev.Kind == "begin":
			batchSpanID = ev.SpanID
		case ev.Scope == "method" && ev.Kind == "begin":
			methodSpans++
			if ev.ParentID != batchSpanID {
				t.Fatalf("method span %q has parent %d, want batch span %d", ev.Name, ev.ParentID, batchSpanID)
			}
			if !strings.HasPrefix(ev.Name, "batch.runOne:") {
				t.Fatalf("unexpected method span name %q", ev.Name)
			}
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scanning trace output: %v", err)
	}
	if batchSpanID == 0 {
		t.Fatalf("expected a batch-scoped span begin event")
	}
	if methodSpans != len(items) {
		t.Fatalf("expected %d method spans nested under the batch span, got %d", len(items), methodSpans)
	}
}
