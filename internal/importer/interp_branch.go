package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/diag"
	"ilcore/internal/ir"
)

// lowerBranch lowers the one terminator at the end of a block's raw range.
// The instruction set has no not-equal or "unordered, not-greater"
// comparator (CompareOp.Invert never succeeds), so every branch whose CIL
// sense is the logical negation of an available CompareOp is lowered by
// keeping the same comparator and swapping which target is the
// taken/fall-through edge, rather than inventing a negated compare.
func lowerBranch(fc *funcCtx, block ir.BlockID, st *blockState, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset
	i32 := fc.int32Type()
	target := func(i int) ir.BlockID { return fc.offsetBlock[instr.Operand.Targets[i]] }
	fallthroughBlock := fc.offsetBlock[fc.blockEnd[block]]

	switch instr.OpCode {
	case cil.OpBr:
		emit(fc.body.NewBranch(ir.NoValueID, []ir.BlockID{target(0)}, off, fc.voidType()))
		return nil

	case cil.OpLeave:
		// leave clears the evaluation stack unconditionally.
		st.stack = nil
		emit(fc.body.NewBranch(ir.NoValueID, []ir.BlockID{target(0)}, off, fc.voidType()))
		return nil

	case cil.OpBrTrue:
		cond, err := pop(off)
		if err != nil {
			return err
		}
		zero := fc.zeroConst(cond.typ, off)
		emit(zero)
		iszero := fc.body.NewCompare(ir.CmpEq, i32, cond.v, fc.body.Inst(zero).Result, off)
		emit(iszero)
		// iszero true means the original value was falsy: that case must
		// land on the fall-through edge, so it goes in Targets[1].
		emit(fc.body.NewBranch(fc.body.Inst(iszero).Result, []ir.BlockID{target(0), fallthroughBlock}, off, fc.voidType()))
		return nil

	case cil.OpBrFalse:
		cond, err := pop(off)
		if err != nil {
			return err
		}
		zero := fc.zeroConst(cond.typ, off)
		emit(zero)
		iszero := fc.body.NewCompare(ir.CmpEq, i32, cond.v, fc.body.Inst(zero).Result, off)
		emit(iszero)
		// iszero true means branch taken (value was falsy).
		emit(fc.body.NewBranch(fc.body.Inst(iszero).Result, []ir.BlockID{fallthroughBlock, target(0)}, off, fc.voidType()))
		return nil

	case cil.OpBeq, cil.OpBne, cil.OpBgt, cil.OpBge, cil.OpBlt, cil.OpBle:
		rhs, err := pop(off)
		if err != nil {
			return err
		}
		lhs, err := pop(off)
		if err != nil {
			return err
		}
		cmpOp, trueIsTaken := branchCompare(instr.OpCode)
		cmp := fc.body.NewCompare(cmpOp, i32, lhs.v, rhs.v, off)
		emit(cmp)
		result := fc.body.Inst(cmp).Result
		if trueIsTaken {
			emit(fc.body.NewBranch(result, []ir.BlockID{fallthroughBlock, target(0)}, off, fc.voidType()))
		} else {
			emit(fc.body.NewBranch(result, []ir.BlockID{target(0), fallthroughBlock}, off, fc.voidType()))
		}
		return nil

	case cil.OpSwitch:
		return unsupported(diag.UnsupportedConstructOpcode, off, "switch has no N-way branch representation in this IR")

	case cil.OpRet:
		if fc.raw.ReturnType == fc.voidType() {
			emit(fc.body.NewReturn(ir.NoValueID, off, fc.voidType()))
			return nil
		}
		v, err := pop(off)
		if err != nil {
			return err
		}
		emit(fc.body.NewReturn(v.v, off, fc.voidType()))
		return nil

	case cil.OpThrow:
		v, err := pop(off)
		if err != nil {
			return err
		}
		emit(fc.body.NewThrow(v.v, off, fc.voidType()))
		return nil

	case cil.OpRethrow:
		emit(fc.body.NewRethrow(off, fc.voidType()))
		return nil

	case cil.OpEndfinally:
		// control leaves the protected region; modeled as a plain return
		// with no value, matching a finally handler's empty-stack contract.
		emit(fc.body.NewReturn(ir.NoValueID, off, fc.voidType()))
		return nil

	case cil.OpEndfilter:
		v, err := pop(off)
		if err != nil {
			return err
		}
		emit(fc.body.NewReturn(v.v, off, fc.voidType()))
		return nil

	default:
		return unsupported(diag.UnsupportedConstructOpcode, off, "opcode %s is not modeled by this frontend", instr.OpCode)
	}
}

// branchCompare returns the CompareOp that computes op's condition and
// whether a true result means the branch is taken (as opposed to meaning
// fall-through, for the opcodes with no direct comparator and hence
// lowered via the equivalent inverted comparator).
func branchCompare(op cil.OpCode) (ir.CompareOp, bool) {
	switch op {
	case cil.OpBeq:
		return ir.CmpEq, true
	case cil.OpBne:
		return ir.CmpEq, false // not-equal: Eq result true means fall through
	case cil.OpBgt:
		return ir.CmpGt, true
	case cil.OpBge:
		return ir.CmpLt, false // >=: Lt result true means fall through
	case cil.OpBlt:
		return ir.CmpLt, true
	default: // cil.OpBle
		return ir.CmpGt, false // <=: Gt result true means fall through
	}
}
