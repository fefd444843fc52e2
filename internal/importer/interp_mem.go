package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/diag"
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// interpField lowers the six field-access opcodes. Instance opcodes pop an
// object operand; the static opcodes (ldsfld/ldsflda/stsfld) have none, so
// NoValueID is passed as the object operand of the same FieldAddr/
// ExtractField instruction kinds an instance access uses — this core has
// no separate static-field instruction, and a byref-producing FieldAddr
// against a null object operand is a deliberate, documented reuse rather
// than a dedicated InstKind.
func interpField(fc *funcCtx, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset
	field := instr.Operand.Field
	info, ok := fc.provider.ResolveField(field)
	if !ok {
		return invalidInput(diag.InvalidInputBadToken, off, "unresolved field token")
	}

	switch instr.OpCode {
	case cil.OpLdfld:
		obj, err := pop(off)
		if err != nil {
			return err
		}
		id := fc.body.NewExtractField(info.Type, obj.v, field, off)
		emit(id)
		push(fc.body.Inst(id).Result, info.Type)
		return nil

	case cil.OpLdflda:
		obj, err := pop(off)
		if err != nil {
			return err
		}
		byref := fc.provider.GetByReferenceType(info.Type)
		id := fc.body.NewFieldAddr(byref, obj.v, field, off)
		emit(id)
		push(fc.body.Inst(id).Result, byref)
		return nil

	case cil.OpStfld:
		value, err := pop(off)
		if err != nil {
			return err
		}
		obj, err := pop(off)
		if err != nil {
			return err
		}
		return emitFieldStore(fc, info, field, obj.v, value.v, off, emit)

	case cil.OpLdsfld:
		id := fc.body.NewExtractField(info.Type, ir.NoValueID, field, off)
		emit(id)
		push(fc.body.Inst(id).Result, info.Type)
		return nil

	case cil.OpLdsflda:
		byref := fc.provider.GetByReferenceType(info.Type)
		id := fc.body.NewFieldAddr(byref, ir.NoValueID, field, off)
		emit(id)
		push(fc.body.Inst(id).Result, byref)
		return nil

	default: // cil.OpStsfld
		value, err := pop(off)
		if err != nil {
			return err
		}
		return emitFieldStore(fc, info, field, ir.NoValueID, value.v, off, emit)
	}
}

// emitFieldStore materializes the FieldAddr+Store pair stfld/stsfld share.
func emitFieldStore(fc *funcCtx, info types.FieldInfo, field types.FieldRef, obj, value ir.ValueID, off uint32, emit emitFunc) error {
	byref := fc.provider.GetByReferenceType(info.Type)
	addr := fc.body.NewFieldAddr(byref, obj, field, off)
	emit(addr)
	store := fc.body.NewStore(fc.body.Inst(addr).Result, value, off, fc.voidType())
	emit(store)
	return nil
}

// interpArray lowers newarr/ldlen/ldelem/ldelema/stelem. The element type
// for the ldelem/ldelema/stelem family is always taken from the
// instruction's own type operand: this frontend has no reverse TypeID
// lookup to recover an array's element type from the array value already
// on the stack, so it relies on the reader supplying the typed element
// token the way ldelem.i4/ldelem <T> and friends already carry it.
//
// Multi-dimensional arrays never reach here: newarr/ldlen/ldelem/ldelema/
// stelem are all defined over single-dimensional zero-based arrays only.
// An MDArray's constructor, Get, Set, and Address are ordinary-looking
// calls against the synthesized methods interpCall recognizes and lowers
// to InstIntrinsic.
func interpArray(fc *funcCtx, instr cil.Instr, pop popFunc, push pushFunc, emit emitFunc) error {
	off := instr.Offset

	switch instr.OpCode {
	case cil.OpNewarr:
		length, err := pop(off)
		if err != nil {
			return err
		}
		typ := fc.provider.GetSZArrayType(instr.Operand.Type)
		id := fc.body.NewNewArr(typ, length.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, typ)
		return nil

	case cil.OpLdlen:
		arr, err := pop(off)
		if err != nil {
			return err
		}
		nuint := fc.provider.GetPrimitiveType(types.PrimitiveUIntPtr)
		id := fc.body.NewIntrinsic(ir.IntrinsicArrayLen, nuint, []ir.ValueID{arr.v}, off)
		emit(id)
		push(fc.body.Inst(id).Result, nuint)
		return nil

	case cil.OpLdelem:
		idx, err := pop(off)
		if err != nil {
			return err
		}
		arr, err := pop(off)
		if err != nil {
			return err
		}
		elem := instr.Operand.Type
		byref := fc.provider.GetByReferenceType(elem)
		addr := fc.body.NewArrayAddr(byref, arr.v, idx.v, off)
		emit(addr)
		id := fc.body.NewLoad(elem, fc.body.Inst(addr).Result, off)
		emit(id)
		push(fc.body.Inst(id).Result, elem)
		return nil

	case cil.OpLdelema:
		idx, err := pop(off)
		if err != nil {
			return err
		}
		arr, err := pop(off)
		if err != nil {
			return err
		}
		byref := fc.provider.GetByReferenceType(instr.Operand.Type)
		id := fc.body.NewArrayAddr(byref, arr.v, idx.v, off)
		emit(id)
		push(fc.body.Inst(id).Result, byref)
		return nil

	default: // cil.OpStelem
		value, err := pop(off)
		if err != nil {
			return err
		}
		idx, err := pop(off)
		if err != nil {
			return err
		}
		arr, err := pop(off)
		if err != nil {
			return err
		}
		elem := instr.Operand.Type
		byref := fc.provider.GetByReferenceType(elem)
		addr := fc.body.NewArrayAddr(byref, arr.v, idx.v, off)
		emit(addr)
		store := fc.body.NewStore(fc.body.Inst(addr).Result, value.v, off, fc.voidType())
		emit(store)
		return nil
	}
}
