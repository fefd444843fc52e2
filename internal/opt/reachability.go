package opt

import "ilcore/internal/ir"

// FoldConstantBranches rewrites every conditional branch whose condition
// traces to a constant into an unconditional jump to the statically
// known target, dropping the untaken edge and its contribution to that
// successor's phis. Returns the number of branches folded.
func FoldConstantBranches(f *ir.MethodBody) int {
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
		condInst := f.Inst(def)
		if condInst.Kind != ir.InstConst || condInst.ConstKind != ir.ConstInt {
			continue
		}

		// Targets[0] is the fall-through/false edge, Targets[1] the taken/
		// true edge, matching NewBranch's documented convention.
		taken := term.Targets[1]
		untaken := term.Targets[0]
		if condInst.ConstInt == 0 {
			taken, untaken = untaken, taken
		}

		f.SetOperand(term.Operands[0], ir.NoValueID)
		term.Operands = nil
		f.SetBranch(blk.Last, []ir.BlockID{taken})
		f.RemoveSucc(blockID, untaken)
		f.RemovePhiIncoming(untaken, blockID)
		folded++
	}
	return folded
}

// RemoveUnreachableBlocks deletes every block not reachable from f.Entry
// by following Succs, first stripping each removed block's contribution
// from any surviving successor's phis. Returns the number of blocks
// removed.
func RemoveUnreachableBlocks(f *ir.MethodBody) int {
	reachable := map[ir.BlockID]bool{f.Entry: true}
	worklist := []ir.BlockID{f.Entry}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, succ := range f.Block(id).Succs {
			if !reachable[succ] {
				reachable[succ] = true
				worklist = append(worklist, succ)
			}
		}
	}

	removed := 0
	for _, blockID := range f.BlockIDs() {
		if reachable[blockID] {
			continue
		}
		blk := f.Block(blockID)
		for _, succ := range append([]ir.BlockID(nil), blk.Succs...) {
			if reachable[succ] {
				f.RemovePhiIncoming(succ, blockID)
			}
		}
		for _, id := range f.Instructions(blockID) {
			f.Remove(id)
		}
		f.MarkBlockRemoved(blockID)
		removed++
	}
	return removed
}
