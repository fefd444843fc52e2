package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/diag"
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// interpCall lowers call/callvirt/newobj. Arguments are pushed
// left-to-right before the call, with an instance call's receiver pushed
// first; popping therefore happens in reverse, and the popped values are
// re-reversed into declaration order before NewCall/NewNewObj are built. A
// call or newobj against one of the five handles
// types.SynthesizeMDArrayMethods hands out lowers to InstIntrinsic instead,
// since those methods have no real body to call into.
func interpCall(fc *funcCtx, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset
	methodRef := instr.Operand.Method
	info, ok := fc.provider.ResolveMethod(methodRef)
	if !ok {
		return invalidInput(diag.InvalidInputBadToken, off, "unresolved method token")
	}

	n := len(info.Params)
	if !info.Static {
		n++
	}
	args := make([]ir.ValueID, n)
	for i := n - 1; i >= 0; i-- {
		v, err := pop(off)
		if err != nil {
			return err
		}
		args[i] = v.v
	}

	if op, ok := mdArrayIntrinsicOp(info.ArrayIntrinsic); ok {
		resultType := info.Result
		if op == ir.IntrinsicMDArrayCtorSizes || op == ir.IntrinsicMDArrayCtorRanges {
			resultType = info.Array
		}
		id := fc.body.NewIntrinsic(op, resultType, args, off)
		emit(id)
		if resultType != fc.voidType() {
			push(fc.body.Inst(id).Result, resultType)
		}
		return nil
	}

	if instr.OpCode == cil.OpNewobj {
		// newobj's declaring type is the constructor's owner; this core
		// assumes a reference class here since newobj against a value type
		// constructor is not a pattern readers are expected to emit.
		typ := fc.provider.GetTypeFromDefinition(info.Owner, types.ClassReference)
		id := fc.body.NewNewObj(typ, methodRef, args, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil
	}

	if info.Result == types.NoTypeID || info.Result == fc.voidType() {
		id := fc.body.NewCall(types.NoTypeID, methodRef, args, off)
		emit(id)
		return nil
	}
	id := fc.body.NewCall(info.Result, methodRef, args, off)
	emit(id)
	push(fc.body.Inst(id).Result, info.Result)
	return nil
}

// mdArrayIntrinsicOp maps a types.ArrayOp off a synthesized MDArray method
// handle to the IntrinsicOp interpCall should emit instead of a real
// InstCall/InstNewObj.
func mdArrayIntrinsicOp(op types.ArrayOp) (ir.IntrinsicOp, bool) {
	switch op {
	case types.ArrayOpCtorSizes:
		return ir.IntrinsicMDArrayCtorSizes, true
	case types.ArrayOpCtorRanges:
		return ir.IntrinsicMDArrayCtorRanges, true
	case types.ArrayOpGet:
		return ir.IntrinsicMDArrayGet, true
	case types.ArrayOpSet:
		return ir.IntrinsicMDArraySet, true
	case types.ArrayOpAddress:
		return ir.IntrinsicMDArrayAddress, true
	default:
		return 0, false
	}
}
