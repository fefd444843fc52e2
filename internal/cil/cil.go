// Package cil describes the external interfaces this module consumes: the
// shape of an already-decoded bytecode stream, and the callback surface a
// metadata reader must implement to resolve types on the importer's
// behalf. Nothing in this package decodes raw bytes — that is the reader's
// job, kept out of this core's scope.
package cil

import "ilcore/internal/types"

// OpCode is the small subset of the bytecode instruction set the frontend
// interprets. Instructions this core does not model surface as an
// UnsupportedConstruct error rather than silently misparsing.
type OpCode uint16

const (
	OpNop OpCode = iota
	OpBreak

	// Stack manipulation.
	OpDup
	OpPop

	// Constants.
	OpLdcI4
	OpLdcI8
	OpLdcR4
	OpLdcR8
	OpLdstr
	OpLdnull

	// Arguments and locals.
	OpLdarg
	OpStarg
	OpLdarga
	OpLdloc
	OpStloc
	OpLdloca

	// Arithmetic and bitwise.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpDivUn
	OpRem
	OpRemUn
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpShrUn
	OpNeg
	OpNot

	// Comparisons.
	OpCeq
	OpCgt
	OpCgtUn
	OpClt
	OpCltUn

	// Conversions.
	OpConv

	// Control flow.
	OpBr
	OpBrTrue
	OpBrFalse
	OpBeq
	OpBne
	OpBgt
	OpBge
	OpBlt
	OpBle
	OpSwitch
	OpRet
	OpThrow
	OpRethrow
	OpLeave
	OpEndfinally
	OpEndfilter

	// Calls.
	OpCall
	OpCallVirt
	OpCallI
	OpNewobj

	// Objects, fields, arrays.
	OpLdfld
	OpLdflda
	OpStfld
	OpLdsfld
	OpLdsflda
	OpStsfld
	OpNewarr
	OpLdlen
	OpLdelem
	OpLdelema
	OpStelem
	OpCastclass
	OpIsinst
	OpBox
	OpUnbox
	OpUnboxAny
	OpSizeof

	// Guarded regions.
	OpLdexn // pseudo-op materialized for an exception's caught value
)

func (op OpCode) String() string {
	names := [...]string{
		"nop", "break",
		"dup", "pop",
		"ldc.i4", "ldc.i8", "ldc.r4", "ldc.r8", "ldstr", "ldnull",
		"ldarg", "starg", "ldarga", "ldloc", "stloc", "ldloca",
		"add", "sub", "mul", "div", "div.un", "rem", "rem.un",
		"and", "or", "xor", "shl", "shr", "shr.un", "neg", "not",
		"ceq", "cgt", "cgt.un", "clt", "clt.un",
		"conv",
		"br", "brtrue", "brfalse", "beq", "bne", "bgt", "bge", "blt", "ble",
		"switch", "ret", "throw", "rethrow", "leave", "endfinally", "endfilter",
		"call", "callvirt", "calli", "newobj",
		"ldfld", "ldflda", "stfld", "ldsfld", "ldsflda", "stsfld",
		"newarr", "ldlen", "ldelem", "ldelema", "stelem",
		"castclass", "isinst", "box", "unbox", "unbox.any", "sizeof",
		"ldexn",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "unknown"
}

// IsBranch reports whether op transfers control other than by falling
// through to the next instruction.
func (op OpCode) IsBranch() bool {
	switch op {
	case OpBr, OpBrTrue, OpBrFalse, OpBeq, OpBne, OpBgt, OpBge, OpBlt, OpBle, OpSwitch,
		OpRet, OpThrow, OpRethrow, OpLeave, OpEndfinally, OpEndfilter:
		return true
	default:
		return false
	}
}

// IsConditionalBranch reports whether op has both a taken and a
// fall-through successor.
func (op OpCode) IsConditionalBranch() bool {
	switch op {
	case OpBrTrue, OpBrFalse, OpBeq, OpBne, OpBgt, OpBge, OpBlt, OpBle:
		return true
	default:
		return false
	}
}

// Operand carries the decoded operand of an Instr. Exactly one field is
// meaningful per OpCode; the rest are zero.
type Operand struct {
	Int       int64
	Float     float64
	Str       string
	Type      types.TypeID
	Method    types.MethodRef
	Field     types.FieldRef
	Targets   []uint32 // branch target offsets: one for unconditional/BrTrue/BrFalse-style, N for switch
	VarIndex  uint32   // local/argument slot index
	NumTokens uint32   // Newobj/Call argument count, when the reader cannot be re-consulted per-call
}

// Instr is one decoded bytecode instruction at a known byte offset.
type Instr struct {
	OpCode  OpCode
	Offset  uint32
	Operand Operand
}

// End returns the offset one past this instruction, given the raw byte
// length the reader reported for it. The importer needs this to draw
// leader/fall-through edges without re-consulting the reader.
func (i Instr) End(length uint32) uint32 {
	return i.Offset + length
}

// RegionKind classifies one entry of the exception-handling table.
type RegionKind uint8

const (
	RegionCatch RegionKind = iota
	RegionFilter
	RegionFinally
	RegionFault
)

func (k RegionKind) String() string {
	switch k {
	case RegionCatch:
		return "catch"
	case RegionFilter:
		return "filter"
	case RegionFinally:
		return "finally"
	case RegionFault:
		return "fault"
	default:
		return "unknown"
	}
}

// ExceptionRegion is one protected-region entry, mirroring the metadata
// reader's exception handling clause. TryStart/TryEnd and
// HandlerStart/HandlerEnd are half-open [start, end) byte-offset ranges;
// FilterStart is only meaningful when Kind == RegionFilter.
type ExceptionRegion struct {
	Kind         RegionKind
	TryStart     uint32
	TryEnd       uint32
	HandlerStart uint32
	HandlerEnd   uint32
	FilterStart  uint32
	CatchType    types.TypeID
}

// TypeProvider is the callback surface the importer invokes to resolve
// types while abstractly interpreting a method body. It is implemented by
// the (external) metadata reader; the core never talks to raw metadata
// tables directly.
type TypeProvider interface {
	GetPrimitiveType(code types.PrimitiveCode) types.TypeID
	GetTypeFromDefinition(def types.DefHandle, cls types.Class) types.TypeID
	GetGenericInstantiation(def types.DefHandle, cls types.Class, args []types.TypeID) types.TypeID
	GetSZArrayType(elem types.TypeID) types.TypeID
	GetArrayType(elem types.TypeID, rank uint32, lowerBounds []int32, sizes []uint32) types.TypeID
	GetByReferenceType(elem types.TypeID) types.TypeID
	GetPointerType(elem types.TypeID) types.TypeID
	GetPinnedType(elem types.TypeID) types.TypeID
	GetFunctionPointerType(params []types.TypeID, result types.TypeID) types.TypeID
	GetGenericTypeParameter(index uint32) types.TypeID
	GetGenericMethodParameter(index uint32) types.TypeID
	GetModifiedType(modifier types.DefHandle, unmodified types.TypeID, isRequired bool) types.TypeID

	// Method/field resolution for Call/Ldfld-family instructions.
	ResolveMethod(ref types.MethodRef) (types.MethodInfo, bool)
	ResolveField(ref types.FieldRef) (types.FieldInfo, bool)
}
