package testkit

import (
	"testing"

	"ilcore/internal/ir"
	"ilcore/internal/types"
)

func TestUnreachableFindsDetachedBlock(t *testing.T) {
	in := types.NewInterner()
	void := in.Builtins().Void
	i32 := in.Builtins().Int32

	f := ir.NewMethodBody(nil, nil)
	bb1 := f.NewBlock(0)
	bb2 := f.NewBlock(1)
	f.Entry = bb1

	ret := f.NewReturn(ir.NoValueID, 0, void)
	f.AppendInst(bb1, ret)

	c := f.NewConstInt(i32, 1, 1)
	f.AppendInst(bb2, c)
	ret2 := f.NewReturn(f.Inst(c).Result, 2, void)
	f.AppendInst(bb2, ret2)

	unreached := Unreachable(f)
	if len(unreached) != 1 || unreached[0] != bb2 {
		t.Fatalf("expected bb2 unreachable, got %v", unreached)
	}
}

func TestCountUsesMatchesDirectScan(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	bb := f.NewBlock(0)
	f.Entry = bb

	a := f.NewConstInt(i32, 0, 0)
	f.AppendInst(bb, a)
	b := f.NewBinary(ir.BinAdd, i32, f.Inst(a).Result, f.Inst(a).Result, 1)
	f.AppendInst(bb, b)
	ret := f.NewReturn(f.Inst(b).Result, 2, void)
	f.AppendInst(bb, ret)

	if got := CountUses(f, f.Inst(a).Result); got != 2 {
		t.Fatalf("expected 2 uses of a, got %d", got)
	}
}

func TestRunUntilStableConverges(t *testing.T) {
	calls := 0
	pass := func() (int, error) {
		calls++
		if calls < 3 {
			return 1, nil
		}
		return 0, nil
	}
	total, err := RunUntilStable(pass, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 total changes before convergence, got %d", total)
	}
}

func TestRunUntilStableReportsNonConvergence(t *testing.T) {
	pass := func() (int, error) { return 1, nil }
	total, err := RunUntilStable(pass, 4)
	if err == nil {
		t.Fatalf("expected non-convergence error")
	}
	if total != 4 {
		t.Fatalf("expected 4 accumulated changes before giving up, got %d", total)
	}
}
