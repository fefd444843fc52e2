package importer

import (
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// stackVal is one evaluation-stack slot: the SSA value currently
// occupying it and its static type, needed to pick the right opcode
// lowering (e.g. distinguishing an int32 add from a float add) without
// re-deriving it from the defining instruction every time.
type stackVal struct {
	v   ir.ValueID
	typ types.TypeID
}

// blockState is the abstract interpreter's state at one program point: the
// evaluation stack, plus the current SSA value of every promotable
// (non-exposed) variable slot. Exposed slots never appear here; they are
// read and written directly through LoadVar/StoreVar instructions.
type blockState struct {
	stack []stackVal
	vars  map[slot]ir.ValueID
}

func cloneVars(src map[slot]ir.ValueID) map[slot]ir.ValueID {
	out := make(map[slot]ir.ValueID, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func (s blockState) clone() blockState {
	out := blockState{vars: cloneVars(s.vars)}
	if len(s.stack) > 0 {
		out.stack = append([]stackVal(nil), s.stack...)
	}
	return out
}

// mergeInfo accumulates the phis a control-flow merge point needs as its
// predecessors are discovered. Phis are created on the first predecessor
// committed — always a forward edge in well-formed structured bytecode,
// since a loop header is reached by its entry edge before any back-edge
// exists to commit — and every later predecessor (including a back-edge,
// discovered only once the loop body itself has been interpreted) just
// appends one more incoming operand to the same phi instructions.
type mergeInfo struct {
	initialized bool
	stackPhis   []ir.InstID
	varPhis     map[slot]ir.InstID
	committed   map[ir.BlockID]bool
}

func newMergeInfo() *mergeInfo {
	return &mergeInfo{varPhis: make(map[slot]ir.InstID), committed: make(map[ir.BlockID]bool)}
}

// commitPredIntoMerge records pred's contribution to block's merge phis,
// creating them first if pred is the first predecessor seen.
func commitPredIntoMerge(fc *funcCtx, block ir.BlockID, m *mergeInfo, pred ir.BlockID, exit blockState) {
	startOffset := fc.body.Block(block).StartOffset

	if !m.initialized {
		m.stackPhis = make([]ir.InstID, len(exit.stack))
		for i, sv := range exit.stack {
			phi := fc.body.NewPhi(sv.typ, startOffset)
			fc.body.AppendHeader(block, phi)
			m.stackPhis[i] = phi
		}
		for sl := range exit.vars {
			phi := fc.body.NewPhi(fc.slotType(sl), startOffset)
			fc.body.AppendHeader(block, phi)
			m.varPhis[sl] = phi
		}
		m.initialized = true
	}

	for i, sv := range exit.stack {
		if i >= len(m.stackPhis) {
			break // stack-shape mismatch; caught by Validate/testkit, not fatal here
		}
		fc.body.AddPhiOperand(m.stackPhis[i], pred, sv.v)
	}
	for sl, phi := range m.varPhis {
		v, ok := exit.vars[sl]
		if !ok {
			v = fc.initialVars[sl]
		}
		fc.body.AddPhiOperand(phi, pred, v)
	}
}

// projectMergeState reads the current phi results back out as a
// blockState usable as the merge block's entry state. Valid to call as
// soon as the phis are created; later predecessor commits only append
// operands, never change a phi's Result value.
func projectMergeState(fc *funcCtx, m *mergeInfo) blockState {
	st := blockState{vars: make(map[slot]ir.ValueID, len(m.varPhis))}
	st.stack = make([]stackVal, len(m.stackPhis))
	for i, phi := range m.stackPhis {
		inst := fc.body.Inst(phi)
		st.stack[i] = stackVal{v: inst.Result, typ: inst.Type}
	}
	for sl, phi := range m.varPhis {
		st.vars[sl] = fc.body.Inst(phi).Result
	}
	return st
}

// commitToSuccessors pushes block's just-computed exit state onward to
// every ordinary (non-exception) successor, creating or extending that
// successor's merge phis as needed, and populating its entry state the
// first time it is reached.
func commitToSuccessors(fc *funcCtx, block ir.BlockID, exit blockState) {
	for _, succ := range fc.body.Block(block).Succs {
		if _, isHandler := fc.handlerGuard[succ]; isHandler {
			continue
		}
		preds := fc.body.Block(succ).Preds
		if len(preds) <= 1 {
			if _, ok := fc.entries[succ]; !ok {
				fc.entries[succ] = exit.clone()
			}
			continue
		}

		m := fc.merges[succ]
		if m == nil {
			m = newMergeInfo()
			fc.merges[succ] = m
		}
		if !m.committed[block] {
			commitPredIntoMerge(fc, succ, m, block, exit)
			m.committed[block] = true
		}
		if _, ok := fc.entries[succ]; !ok {
			fc.entries[succ] = projectMergeState(fc, m)
		}
	}
}
