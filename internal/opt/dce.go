package opt

import (
	"ilcore/internal/ir"
)

// RemoveUselessInstructions runs one mark-and-sweep pass: every
// instruction that has side effects (or is a terminator/header the block
// needs) is live by definition; liveness propagates backward through
// operands. Anything left unmarked is removed. Returns the number of
// instructions deleted.
func RemoveUselessInstructions(f *ir.MethodBody) int {
	live := make(map[ir.InstID]bool)
	var worklist []ir.InstID

	for _, blockID := range f.BlockIDs() {
		for _, id := range f.Instructions(blockID) {
			inst := f.Inst(id)
			if inst.IsTerminator() || inst.Kind == ir.InstGuard || inst.HasSideEffects() {
				if !live[id] {
					live[id] = true
					worklist = append(worklist, id)
				}
			}
		}
	}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		inst := f.Inst(id)
		for _, opID := range inst.Operands {
			v := f.OperandValue(opID)
			if v == ir.NoValueID {
				continue
			}
			def := f.Value(v).Def
			if def == ir.NoInstID || live[def] {
				continue
			}
			live[def] = true
			worklist = append(worklist, def)
		}
	}

	removed := 0
	for _, blockID := range f.BlockIDs() {
		for _, id := range f.Instructions(blockID) {
			if live[id] {
				continue
			}
			f.Remove(id)
			removed++
		}
	}
	return removed
}

// PeelTrivialPhis repeatedly finds phis whose non-self-referential
// incoming values all agree, replaces every use of the phi with that
// single value, and removes the phi. Peeling one phi can make another
// phi trivial (a chain of phis feeding each other the same value), so the
// sweep repeats until nothing more peels or maxIters is reached. Returns
// the number of phis peeled.
func PeelTrivialPhis(f *ir.MethodBody, maxIters int) int {
	total := 0
	for i := 0; i < maxIters; i++ {
		n := peelTrivialPhisOnce(f)
		total += n
		if n == 0 {
			break
		}
	}
	return total
}

func peelTrivialPhisOnce(f *ir.MethodBody) int {
	peeled := 0
	for _, blockID := range f.BlockIDs() {
		for _, id := range f.Instructions(blockID) {
			inst := f.Inst(id)
			if inst.Kind != ir.InstPhi {
				continue
			}
			if unique, ok := trivialPhiValue(f, inst); ok {
				f.ReplaceWith(id, unique)
				peeled++
			}
		}
	}
	return peeled
}

// trivialPhiValue reports the single incoming value a phi resolves to if
// every operand is either that same value or a self-reference to the
// phi's own result, and there is at least one non-self operand.
func trivialPhiValue(f *ir.MethodBody, inst *ir.Instruction) (ir.ValueID, bool) {
	self := inst.Result
	var unique ir.ValueID
	haveUnique := false
	for _, opID := range inst.Operands {
		v := f.OperandValue(opID)
		if v == self {
			continue
		}
		if !haveUnique {
			unique = v
			haveUnique = true
			continue
		}
		if v != unique {
			return ir.NoValueID, false
		}
	}
	if !haveUnique {
		return ir.NoValueID, false
	}
	return unique, true
}
