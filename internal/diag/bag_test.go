package diag

import (
	"testing"

	"ilcore/internal/source"
)

func TestBagRespectsCapacity(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(InvalidInputTruncated, source.At(0), "a")) {
		t.Fatalf("first add should succeed")
	}
	if !b.Add(NewError(InvalidInputTruncated, source.At(1), "b")) {
		t.Fatalf("second add should succeed")
	}
	if b.Add(NewError(InvalidInputTruncated, source.At(2), "c")) {
		t.Fatalf("third add should be rejected at capacity")
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Len())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	b := NewBag(4)
	b.Add(New(SevWarning, LintDCEIterCap, source.At(0), "warn"))
	if b.HasErrors() {
		t.Fatalf("bag should not report errors yet")
	}
	if !b.HasWarnings() {
		t.Fatalf("bag should report the warning")
	}
	b.Add(NewError(StackMismatchUnderflow, source.At(1), "boom"))
	if !b.HasErrors() {
		t.Fatalf("bag should report the error")
	}
}

func TestBagSortIsStableByStartThenSeverity(t *testing.T) {
	b := NewBag(4)
	b.Add(New(SevWarning, LintDCEIterCap, source.Span{Start: 10, End: 10}, "later warn"))
	b.Add(NewError(StackMismatchUnderflow, source.Span{Start: 5, End: 5}, "earlier error"))
	b.Add(New(SevError, InvalidInputTruncated, source.Span{Start: 5, End: 5}, "earlier error too, higher sev tie"))
	b.Sort()
	items := b.Items()
	if items[0].Primary.Start != 5 || items[1].Primary.Start != 5 || items[2].Primary.Start != 10 {
		t.Fatalf("unexpected sort order: %+v", items)
	}
}

func TestBagDedupKeepsFirstOccurrence(t *testing.T) {
	b := NewBag(4)
	sp := source.Span{Start: 3, End: 3}
	b.Add(NewError(StackMismatchUnderflow, sp, "first"))
	b.Add(NewError(StackMismatchUnderflow, sp, "duplicate"))
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("expected dedup to collapse to 1 item, got %d", b.Len())
	}
	if b.Items()[0].Message != "first" {
		t.Fatalf("dedup should keep the first occurrence, got %q", b.Items()[0].Message)
	}
}

func TestBagMergeGrowsCapacity(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(InvalidInputTruncated, source.At(0), "a"))
	other := NewBag(1)
	other.Add(NewError(InvalidInputTruncated, source.At(1), "b"))
	a.Merge(other)
	if a.Len() != 2 {
		t.Fatalf("expected merged len 2, got %d", a.Len())
	}
}

func TestErrorUnwrapAndKind(t *testing.T) {
	cause := Newf(InvalidInput, InvalidInputTruncated, source.At(0), "cause")
	err := Wrapf(StackMismatch, StackMismatchDepth, source.At(1), cause, "wrapped")
	if err.Kind != StackMismatch {
		t.Fatalf("expected StackMismatch kind")
	}
	if err.Unwrap() != cause {
		t.Fatalf("Unwrap should return the wrapped cause")
	}
}
