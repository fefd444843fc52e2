package opt

import "ilcore/internal/ir"

// InvertCompareToZero rewrites a conditional branch of the form
// br(ceq(x, 0) ? T : F) into br(x ? F : T): the comparison's zero operand
// is dropped, the branch condition becomes x directly, and the two
// targets swap. If the comparison instruction has no remaining uses
// afterward it is removed. There is no symmetric "x != 0" case: this
// instruction set has no not-equal comparator (ECMA-335 itself has none —
// bne.un is a fused branch-comparison, not built from ceq), so a
// not-equal test already reaches this pass as a bare truthiness branch on
// x with no InstCompare to fold at all.
func InvertCompareToZero(f *ir.MethodBody) int {
	folded := 0
	for _, blockID := range f.BlockIDs() {
		blk := f.Block(blockID)
		if blk.Last == ir.NoInstID {
			continue
		}
		term := f.Inst(blk.Last)
		if term.Kind != ir.InstBranch || len(term.Operands) == 0 || len(term.Targets) != 2 {
			continue
		}
		cond := f.OperandValue(term.Operands[0])
		def := f.Value(cond).Def
		if def == ir.NoInstID {
			continue
		}
		cmp := f.Inst(def)
		if cmp.Kind != ir.InstCompare || cmp.CmpOp != ir.CmpEq || len(cmp.Operands) != 2 {
			continue
		}

		lhs := f.OperandValue(cmp.Operands[0])
		rhs := f.OperandValue(cmp.Operands[1])
		nonZero, ok := pickNonZeroOperand(f, lhs, rhs)
		if !ok {
			continue
		}

		f.SetOperand(term.Operands[0], nonZero)
		term.Targets[0], term.Targets[1] = term.Targets[1], term.Targets[0]
		if !f.HasUses(cmp.Result) {
			f.Remove(def)
		}
		folded++
	}
	return folded
}

// pickNonZeroOperand reports the operand of a two-operand comparison that
// is not a zero integer constant, provided exactly one of the two is.
func pickNonZeroOperand(f *ir.MethodBody, lhs, rhs ir.ValueID) (ir.ValueID, bool) {
	lz, rz := isZeroConst(f, lhs), isZeroConst(f, rhs)
	switch {
	case lz && !rz:
		return rhs, true
	case rz && !lz:
		return lhs, true
	default:
		return ir.NoValueID, false
	}
}

func isZeroConst(f *ir.MethodBody, v ir.ValueID) bool {
	def := f.Value(v).Def
	if def == ir.NoInstID {
		return false
	}
	inst := f.Inst(def)
	return inst.Kind == ir.InstConst && inst.ConstKind == ir.ConstInt && inst.ConstInt == 0
}

// MergeJumpChains finds every block B ending in an unconditional jump to
// a block S that has B as its only predecessor and carries no header
// instructions, splices S's body onto the end of B, rewires S's successor
// phis to name B, and drops S from the body. Returns the number of
// blocks merged away.
func MergeJumpChains(f *ir.MethodBody) int {
	merged := 0
	for _, blockID := range f.BlockIDs() {
		blk := f.Block(blockID)
		if blk.Last == ir.NoInstID {
			continue
		}
		term := f.Inst(blk.Last)
		if term.Kind != ir.InstBranch || len(term.Targets) != 1 {
			continue
		}
		succID := term.Targets[0]
		if succID == blockID {
			continue
		}
		succBlk := f.Block(succID)
		if len(succBlk.Preds) != 1 || succBlk.Preds[0] != blockID {
			continue
		}
		if succBlk.First != succBlk.FirstNonHeader {
			continue // S carries a phi or guard header, cannot merge
		}

		jump := blk.Last
		first, last := succBlk.First, succBlk.Last
		f.Remove(jump)
		if first != ir.NoInstID {
			f.MoveRange(first, last, blockID)
		}
		f.RemoveSucc(blockID, succID)
		f.TransferSuccessors(succID, blockID)
		f.MarkBlockRemoved(succID)
		merged++
	}
	return merged
}
