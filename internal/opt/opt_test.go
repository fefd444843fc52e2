package opt

import (
	"testing"

	"ilcore/internal/ir"
	"ilcore/internal/testkit"
	"ilcore/internal/types"
)

// buildConstBranch builds:
//
//	bb0: br (true ? bb1 : bb2)
//	bb1: ret 1
//	bb2: ret 2
func buildConstBranch(t *testing.T) *ir.MethodBody {
	t.Helper()
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	bb0 := f.NewBlock(0)
	bb1 := f.NewBlock(1)
	bb2 := f.NewBlock(2)
	f.Entry = bb0

	trueConst := f.NewConstInt(i32, 1, 0)
	f.AppendInst(bb0, trueConst)
	br := f.NewBranch(f.Inst(trueConst).Result, []ir.BlockID{bb2, bb1}, 1, void)
	f.AppendInst(bb0, br)
	f.AddSucc(bb0, bb1)
	f.AddSucc(bb0, bb2)

	one := f.NewConstInt(i32, 1, 2)
	f.AppendInst(bb1, one)
	ret1 := f.NewReturn(f.Inst(one).Result, 3, void)
	f.AppendInst(bb1, ret1)

	two := f.NewConstInt(i32, 2, 4)
	f.AppendInst(bb2, two)
	ret2 := f.NewReturn(f.Inst(two).Result, 5, void)
	f.AppendInst(bb2, ret2)

	return f
}

func TestFoldingConstantConditionalRemovesUntakenBlock(t *testing.T) {
	f := buildConstBranch(t)
	bb2 := ir.BlockID(3)

	folded := FoldConstantBranches(f)
	if folded != 1 {
		t.Fatalf("expected 1 branch folded, got %d", folded)
	}
	removed := RemoveUnreachableBlocks(f)
	if removed != 1 {
		t.Fatalf("expected 1 block removed, got %d", removed)
	}

	for _, id := range f.BlockIDs() {
		if id == bb2 {
			t.Fatalf("bb2 should have been removed")
		}
	}
	testkit.AssertReachable(t, f)
}

func TestTrivialPhiPeelReplacesUsesWithConstant(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	p1 := f.NewBlock(0)
	p2 := f.NewBlock(1)
	m := f.NewBlock(2)
	f.Entry = p1

	seven1 := f.NewConstInt(i32, 7, 0)
	f.AppendInst(p1, seven1)
	br1 := f.NewBranch(ir.NoValueID, []ir.BlockID{m}, 1, void)
	f.AppendInst(p1, br1)
	f.AddSucc(p1, m)

	// p2 has no predecessor of its own; its edge into m stands in for a
	// second incoming path that carries the same value as p1's edge.
	seven2 := f.NewConstInt(i32, 7, 0)
	f.AppendInst(p2, seven2)
	br2 := f.NewBranch(ir.NoValueID, []ir.BlockID{m}, 1, void)
	f.AppendInst(p2, br2)
	f.AddSucc(p2, m)

	phi := f.NewPhi(i32, 0)
	f.AppendHeader(m, phi)
	f.AddPhiOperand(phi, p1, f.Inst(seven1).Result)
	f.AddPhiOperand(phi, p2, f.Inst(seven1).Result)
	ret := f.NewReturn(f.Inst(phi).Result, 1, void)
	f.AppendInst(m, ret)

	peeled := PeelTrivialPhis(f, 8)
	if peeled != 1 {
		t.Fatalf("expected 1 phi peeled, got %d", peeled)
	}
	retInst := f.Inst(ret)
	if f.OperandValue(retInst.Operands[0]) != f.Inst(seven1).Result {
		t.Fatalf("expected return to reference seven1's value after peeling")
	}
}

func TestMergeJumpChainsSplicesSingleSuccessor(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	b0 := f.NewBlock(0)
	b1 := f.NewBlock(1)
	f.Entry = b0

	a := f.NewConstInt(i32, 1, 0)
	f.AppendInst(b0, a)
	jmp := f.NewBranch(ir.NoValueID, []ir.BlockID{b1}, 1, void)
	f.AppendInst(b0, jmp)
	f.AddSucc(b0, b1)

	c := f.NewConstInt(i32, 2, 2)
	f.AppendInst(b1, c)
	ret := f.NewReturn(f.Inst(c).Result, 3, void)
	f.AppendInst(b1, ret)

	merged := MergeJumpChains(f)
	if merged != 1 {
		t.Fatalf("expected 1 block merged, got %d", merged)
	}

	insts := f.Instructions(b0)
	if len(insts) != 3 || insts[0] != a || insts[1] != c || insts[2] != ret {
		t.Fatalf("expected b0 to contain a, c, ret in order, got %v", insts)
	}
	for _, id := range f.BlockIDs() {
		if id == b1 {
			t.Fatalf("b1 should have been removed")
		}
	}
}

func TestInvertCompareToZeroDropsDeadCompare(t *testing.T) {
	in := types.NewInterner()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody([]types.TypeID{i32}, nil)
	b0 := f.NewBlock(0)
	b1 := f.NewBlock(1)
	b2 := f.NewBlock(2)
	f.Entry = b0

	x := f.NewArg(0)
	zero := f.NewConstInt(i32, 0, 0)
	f.AppendInst(b0, zero)
	cmp := f.NewCompare(ir.CmpEq, i32, x, f.Inst(zero).Result, 1)
	f.AppendInst(b0, cmp)
	br := f.NewBranch(f.Inst(cmp).Result, []ir.BlockID{b1, b2}, 2, void)
	f.AppendInst(b0, br)
	f.AddSucc(b0, b1)
	f.AddSucc(b0, b2)

	retVoid1 := f.NewReturn(ir.NoValueID, 0, void)
	f.AppendInst(b1, retVoid1)
	retVoid2 := f.NewReturn(ir.NoValueID, 0, void)
	f.AppendInst(b2, retVoid2)

	folded := InvertCompareToZero(f)
	if folded != 1 {
		t.Fatalf("expected 1 branch inverted, got %d", folded)
	}
	brInst := f.Inst(br)
	if f.OperandValue(brInst.Operands[0]) != x {
		t.Fatalf("expected branch condition to become x directly")
	}
	if brInst.Targets[0] != b2 || brInst.Targets[1] != b1 {
		t.Fatalf("expected targets swapped, got %v", brInst.Targets)
	}
	if f.HasUses(f.Inst(cmp).Result) {
		t.Fatalf("expected compare's result to have no remaining uses")
	}
}

func TestRunToFixpointConverges(t *testing.T) {
	f := buildConstBranch(t)
	result := RunToFixpoint(f, DefaultOptions())
	if !result.Changed() {
		t.Fatalf("expected RunToFixpoint to report changes")
	}
	testkit.AssertValid(t, f)
	testkit.AssertReachable(t, f)

	second := RunToFixpoint(f, DefaultOptions())
	if second.Changed() {
		t.Fatalf("expected RunToFixpoint to be idempotent on a stable body, got %+v", second)
	}
}

func TestRemoveUselessInstructionsKeepsSideEffectingCall(t *testing.T) {
	in := types.NewInterner()
	members := types.NewMembers()
	i32 := in.Builtins().Int32
	void := in.Builtins().Void

	f := ir.NewMethodBody(nil, nil)
	bb := f.NewBlock(0)
	f.Entry = bb

	method := members.NewMethod(types.MethodInfo{Result: void, Static: true})
	unusedConst := f.NewConstInt(i32, 5, 0)
	f.AppendInst(bb, unusedConst)
	call := f.NewCall(types.NoTypeID, method, nil, 1)
	f.AppendInst(bb, call)
	ret := f.NewReturn(ir.NoValueID, 2, void)
	f.AppendInst(bb, ret)

	removed := RemoveUselessInstructions(f)
	if removed != 1 {
		t.Fatalf("expected only the unused constant removed, got %d", removed)
	}
	insts := f.Instructions(bb)
	if len(insts) != 2 || insts[0] != call || insts[1] != ret {
		t.Fatalf("expected call and ret to survive, got %v", insts)
	}
}
