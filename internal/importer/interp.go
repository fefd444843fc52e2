package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/diag"
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// importBlocks implements spec.md §4.4 step 6: walk every block in
// ascending bytecode-offset order, abstractly interpreting its raw
// instruction range into SSA IR. Ascending order is significant: every
// forward edge's source has already been interpreted by the time its
// target is visited, which is what lets merge phis be created lazily on
// the first predecessor committed rather than needing a two-pass
// incomplete-phi scheme.
func importBlocks(fc *funcCtx) error {
	initial := blockState{vars: cloneVars(fc.initialVars)}
	fc.entries[fc.body.Entry] = initial
	if fc.offsetBlock[0] != fc.body.Entry {
		// a synthetic entry was created because offset 0 has a back-edge.
		// It is not itself a leader, so the main loop below never visits
		// it; commit its (trivial) exit state by hand so the real offset-0
		// block's merge phis see it as one of their predecessors.
		fc.exits[fc.body.Entry] = initial
		commitToSuccessors(fc, fc.body.Entry, initial)
	}

	for h, guard := range fc.handlerGuard {
		fc.entries[h] = handlerEntryState(fc, guard)
	}

	for _, off := range fc.leaders.sorted {
		block := fc.offsetBlock[off]
		if _, ok := fc.entries[block]; !ok {
			// no predecessor ever committed to this block: unreachable raw
			// bytecode. Give it an empty state so interpretation does not
			// panic; RemoveUnreachableBlocks deletes it from the final IR.
			fc.entries[block] = blockState{vars: map[slot]ir.ValueID{}}
		}

		exit, err := interpBlock(fc, block)
		if err != nil {
			return err
		}
		fc.exits[block] = exit
		commitToSuccessors(fc, block, exit)
	}
	return nil
}

// handlerEntryState builds the fixed entry state for a catch/filter/
// finally/fault handler block: an empty stack, except a catch or filter
// block receives the guard's caught-exception value as its sole stack
// slot. No promotable variable carries a value here: variable analysis
// marks any slot touched on both sides of a region boundary as
// CrossesRegions, which forces it exposed, so a promotable slot is never
// legitimately read inside a handler it was not also read or written in.
func handlerEntryState(fc *funcCtx, guard ir.InstID) blockState {
	inst := fc.body.Inst(guard)
	st := blockState{vars: map[slot]ir.ValueID{}}
	if inst.GuardKind == ir.GuardCatch {
		st.stack = []stackVal{{v: inst.Result, typ: inst.Type}}
	}
	return st
}

// interpBlock runs the abstract interpreter over one block's raw
// instruction range, appending the IR instructions it produces, and
// returns the state leaving the block.
func interpBlock(fc *funcCtx, block ir.BlockID) (blockState, error) {
	st := fc.entries[block].clone()

	start := fc.body.Block(block).StartOffset
	end := fc.blockEnd[block]
	idx := fc.offsetIndex[start]

	pop := func(offset uint32) (stackVal, error) {
		if len(st.stack) == 0 {
			return stackVal{}, stackMismatch(diag.StackMismatchUnderflow, offset, "evaluation stack underflow")
		}
		n := len(st.stack) - 1
		v := st.stack[n]
		st.stack = st.stack[:n]
		return v, nil
	}
	push := func(v ir.ValueID, typ types.TypeID) {
		st.stack = append(st.stack, stackVal{v: v, typ: typ})
	}
	emit := func(id ir.InstID) {
		fc.body.AppendInst(block, id)
	}

	var lastOpCode cil.OpCode
	sawAny := false

	for idx < len(fc.raw.Instrs) && fc.raw.Instrs[idx].Offset < end {
		instr := fc.raw.Instrs[idx]
		idx++
		sawAny = true
		lastOpCode = instr.OpCode

		if instr.OpCode.IsBranch() {
			if err := lowerBranch(fc, block, &st, instr, pop, push, emit); err != nil {
				return blockState{}, err
			}
			continue
		}
		if err := interpOne(fc, &st, instr, pop, push, emit); err != nil {
			return blockState{}, err
		}
	}

	if !sawAny || !lastOpCode.IsBranch() {
		// implicit fall-through: synthesize an unconditional jump to the
		// single successor the leader/edge discovery already recorded.
		succs := fc.body.Block(block).Succs
		if len(succs) != 1 {
			return blockState{}, invalidInput(diag.InvalidInputTruncated, end,
				"block falls off the end of the method without a terminator")
		}
		br := fc.body.NewBranch(ir.NoValueID, []ir.BlockID{succs[0]}, end, fc.voidType())
		emit(br)
	}

	return st, nil
}

type popFunc func(offset uint32) (stackVal, error)
type pushFunc func(v ir.ValueID, typ types.TypeID)
type emitFunc func(id ir.InstID)

// interpOne lowers one non-branch raw instruction, mutating st and
// appending whatever IR instructions it produces via emit.
func interpOne(fc *funcCtx, st *blockState, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset

	if op, ok := ir.BinaryOpFromOpCode(instr.OpCode); ok {
		rhs, err := pop(off)
		if err != nil {
			return err
		}
		lhs, err := pop(off)
		if err != nil {
			return err
		}
		id := fc.body.NewBinary(op, lhs.typ, lhs.v, rhs.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, lhs.typ)
		return nil
	}
	if op, ok := ir.CompareOpFromOpCode(instr.OpCode); ok {
		rhs, err := pop(off)
		if err != nil {
			return err
		}
		lhs, err := pop(off)
		if err != nil {
			return err
		}
		i32 := fc.int32Type()
		id := fc.body.NewCompare(op, i32, lhs.v, rhs.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, i32)
		return nil
	}

	switch instr.OpCode {
	case cil.OpNop, cil.OpBreak:
		return nil

	case cil.OpDup:
		v, err := pop(off)
		if err != nil {
			return err
		}
		push(v.v, v.typ)
		push(v.v, v.typ)
		return nil

	case cil.OpPop:
		_, err := pop(off)
		return err

	case cil.OpLdcI4:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveInt32)
		id := fc.body.NewConstInt(typ, instr.Operand.Int, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	case cil.OpLdcI8:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveInt64)
		id := fc.body.NewConstInt(typ, instr.Operand.Int, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	case cil.OpLdcR4:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveFloat32)
		id := fc.body.NewConstFloat(typ, instr.Operand.Float, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	case cil.OpLdcR8:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveFloat64)
		id := fc.body.NewConstFloat(typ, instr.Operand.Float, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	case cil.OpLdstr:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveString)
		id := fc.body.NewConstString(typ, instr.Operand.Str, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	case cil.OpLdnull:
		typ := fc.provider.GetPrimitiveType(types.PrimitiveObject)
		id := fc.body.NewConstNull(typ, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil

	case cil.OpLdarg, cil.OpLdloc:
		return interpLoadVar(fc, st, instr, push, emit)
	case cil.OpStarg, cil.OpStloc:
		return interpStoreVar(fc, st, instr, pop, emit)
	case cil.OpLdarga, cil.OpLdloca:
		return interpVarAddr(fc, instr, push, emit)

	case cil.OpNeg:
		v, err := pop(off)
		if err != nil {
			return err
		}
		zero := fc.zeroConst(v.typ, off)
		emit(zero)
		id := fc.body.NewBinary(ir.BinSub, v.typ, fc.body.Inst(zero).Result, v.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, v.typ)
		return nil
	case cil.OpNot:
		v, err := pop(off)
		if err != nil {
			return err
		}
		allOnes := fc.body.NewConstInt(v.typ, -1, off)
		emit(allOnes)
		id := fc.body.NewBinary(ir.BinXor, v.typ, v.v, fc.body.Inst(allOnes).Result, off)
		emit(id)
		push(fc.body.Inst(id).Result, v.typ)
		return nil

	case cil.OpConv:
		v, err := pop(off)
		if err != nil {
			return err
		}
		id := fc.body.NewConvert(instr.Operand.Type, v.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, instr.Operand.Type)
		return nil

	case cil.OpLdfld, cil.OpLdflda, cil.OpStfld, cil.OpLdsfld, cil.OpLdsflda, cil.OpStsfld:
		return interpField(fc, instr, pop, push, emit)

	case cil.OpNewarr, cil.OpLdlen, cil.OpLdelem, cil.OpLdelema, cil.OpStelem:
		return interpArray(fc, instr, pop, push, emit)

	case cil.OpCall, cil.OpCallVirt, cil.OpNewobj:
		return interpCall(fc, instr, pop, push, emit)
	case cil.OpCallI:
		return unsupported(diag.UnsupportedConstructCallConv, off, "indirect calls (calli) are not modeled by this frontend")

	case cil.OpCastclass, cil.OpIsinst, cil.OpBox, cil.OpUnbox, cil.OpUnboxAny:
		return interpTypedUnary(fc, instr, pop, push, emit)

	case cil.OpSizeof:
		u32 := fc.provider.GetPrimitiveType(types.PrimitiveUInt32)
		id := fc.body.NewIntrinsic(ir.IntrinsicSizeOf, u32, nil, off)
		fc.body.Inst(id).CatchType = instr.Operand.Type // queried type, reusing the Guard-only field
		emit(id)
		push(fc.body.Inst(id).Result, u32)
		return nil

	case cil.OpLdexn:
		// the caught exception value is delivered via the guard-seeded
		// entry stack, not re-materialized here; a reader emitting this
		// pseudo-op redundantly is tolerated as a no-op.
		return nil

	default:
		return unsupported(diag.UnsupportedConstructOpcode, off, "opcode %s is not modeled by this frontend", instr.OpCode)
	}
}
