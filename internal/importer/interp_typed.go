package importer

import "ilcore/internal/cil"

// interpTypedUnary lowers the four checked single-operand type operations.
// unbox.any collapses onto the same InstUnbox lowering as unbox: this core
// does not distinguish "unbox then load" from "unbox the address", since
// InstUnbox is already specified as producing the unboxed value directly
// rather than an address to it.
func interpTypedUnary(fc *funcCtx, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset
	v, err := pop(off)
	if err != nil {
		return err
	}
	typ := instr.Operand.Type

	switch instr.OpCode {
	case cil.OpCastclass:
		i := fc.body.NewCastClass(typ, v.v, off)
		emit(i)
		push(fc.body.Inst(i).Result, typ)
	case cil.OpIsinst:
		i := fc.body.NewIsInst(typ, v.v, off)
		emit(i)
		push(fc.body.Inst(i).Result, typ)
	case cil.OpBox:
		i := fc.body.NewBox(typ, v.v, off)
		emit(i)
		push(fc.body.Inst(i).Result, typ)
	default: // cil.OpUnbox, cil.OpUnboxAny
		i := fc.body.NewUnbox(typ, v.v, off)
		emit(i)
		push(fc.body.Inst(i).Result, typ)
	}
	return nil
}
