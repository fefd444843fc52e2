package importer

import "ilcore/internal/cil"

// slotFor maps a var-family instruction to its flat slot index, mirroring
// slotTouch's dispatch in varflags.go.
func slotFor(fc *funcCtx, instr cil.Instr) slot {
	switch instr.OpCode {
	case cil.OpLdarg, cil.OpStarg, cil.OpLdarga:
		return slot(instr.Operand.VarIndex)
	default: // OpLdloc, OpStloc, OpLdloca
		return localSlot(fc, instr.Operand.VarIndex)
	}
}

// interpLoadVar lowers ldarg/ldloc. A promotable slot is read straight out
// of the interpreter's running vars map (falling back to its seeded
// initial value if this block never assigned it); an exposed slot goes
// through a real LoadVar instruction.
func interpLoadVar(fc *funcCtx, st *blockState, instr cil.Instr, push pushFunc, emit emitFunc) error {
	sl := slotFor(fc, instr)
	typ := fc.slotType(sl)

	if fc.promotable[sl] {
		v, ok := st.vars[sl]
		if !ok {
			v = fc.initialVars[sl]
		}
		push(v, typ)
		return nil
	}

	id := fc.body.NewLoadVar(typ, sl, instr.Offset)
	emit(id)
	push(fc.body.Inst(id).Result, typ)
	return nil
}

// interpStoreVar lowers starg/stloc.
func interpStoreVar(fc *funcCtx, st *blockState, instr cil.Instr, pop popFunc, emit emitFunc) error {
	sl := slotFor(fc, instr)
	v, err := pop(instr.Offset)
	if err != nil {
		return err
	}

	if fc.promotable[sl] {
		st.vars[sl] = v.v
		return nil
	}

	id := fc.body.NewStoreVar(sl, v.v, instr.Offset, fc.voidType())
	emit(id)
	return nil
}

// interpVarAddr lowers ldarga/ldloca. Variable analysis only lets this be
// called for a slot it has already marked AddrTaken, which in turn forces
// that slot exposed — never one still tracked in st.vars.
func interpVarAddr(fc *funcCtx, instr cil.Instr, push pushFunc, emit emitFunc) error {
	sl := slotFor(fc, instr)
	byref := fc.provider.GetByReferenceType(fc.slotType(sl))
	id := fc.body.NewVarAddr(byref, sl, instr.Offset)
	emit(id)
	push(fc.body.Inst(id).Result, byref)
	return nil
}
