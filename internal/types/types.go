// Package types is the Type & Member Model: immutable, interned handles for
// primitive types, user-defined types, compound types, and the methods,
// fields, and parameters that hang off them. Every other component in the
// core consumes types through this package rather than any raw metadata
// handle.
package types

import "fmt"

// TypeID uniquely identifies a type inside an Interner. Zero is reserved.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// DefHandle is an opaque handle into the (external) metadata reader's
// TypeDef/TypeRef/TypeSpec tables. The core never interprets its bits; it
// is only ever produced and compared, courtesy of the TypeProvider
// collaborator described in the frontend's external interfaces.
type DefHandle uint32

// NoDefHandle marks the absence of a metadata handle.
const NoDefHandle DefHandle = 0

// Kind enumerates every variant of the Type sum described by the data
// model: primitives, compound types, and the two escape hatches for
// user-defined types (Def, Spec).
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindIntPtr
	KindUIntPtr
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindObject
	KindDef           // user-defined type resolved from a TypeDef/TypeRef handle
	KindSpec          // generic instantiation of a Def
	KindArray         // single-dimensional zero-based array (SZArray)
	KindMDArray       // multi-dimensional / non-zero-based array
	KindByref         // managed pointer (&T)
	KindPtr           // unmanaged pointer (T*)
	KindPinned        // pinned local slot (T pinned)
	KindFuncPtr       // function pointer signature
	KindGenericParam  // unbound generic parameter (!0 / !!0)
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUInt8:
		return "uint8"
	case KindUInt16:
		return "uint16"
	case KindUInt32:
		return "uint32"
	case KindUInt64:
		return "uint64"
	case KindIntPtr:
		return "intptr"
	case KindUIntPtr:
		return "uintptr"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindDef:
		return "def"
	case KindSpec:
		return "spec"
	case KindArray:
		return "array"
	case KindMDArray:
		return "mdarray"
	case KindByref:
		return "byref"
	case KindPtr:
		return "ptr"
	case KindPinned:
		return "pinned"
	case KindFuncPtr:
		return "funcptr"
	case KindGenericParam:
		return "genericparam"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Class distinguishes value classes from reference classes, per §3's "each
// variant exposes a Kind (value class versus reference class)".
type Class uint8

const (
	// ClassValue covers primitives, unmanaged pointers, and value-typed
	// Def/Spec instances (structs, enums).
	ClassValue Class = iota
	// ClassReference covers String, Object, arrays, and reference-typed
	// Def/Spec instances (classes, interfaces, delegates).
	ClassReference
)

func (c Class) String() string {
	if c == ClassReference {
		return "reference"
	}
	return "value"
}

// StackType is the evaluation-stack category a value collapses to, per the
// bytecode standard's stack-merge rules.
type StackType uint8

const (
	StackVoid StackType = iota
	StackInt32
	StackInt64
	StackNInt
	StackFloat
	StackObject
	StackByRef
	StackStruct
)

func (s StackType) String() string {
	switch s {
	case StackVoid:
		return "void"
	case StackInt32:
		return "int32"
	case StackInt64:
		return "int64"
	case StackNInt:
		return "nint"
	case StackFloat:
		return "float"
	case StackObject:
		return "object"
	case StackByRef:
		return "byref"
	case StackStruct:
		return "struct"
	default:
		return "?"
	}
}

// GenericParamOwner distinguishes type-level from method-level generic
// parameters (the "!0" vs "!!0" ECMA-335 textual distinction).
type GenericParamOwner uint8

const (
	GenericParamOfType GenericParamOwner = iota
	GenericParamOfMethod
)

// Type is the compact, structurally-compared descriptor for one member of
// the sum described by §3. Only the fields relevant to Kind are populated;
// the rest stay zero.
type Type struct {
	Kind Kind

	// Compound-type element, used by Array, MDArray, Byref, Ptr, Pinned.
	Elem TypeID

	// Def, Spec: the resolved metadata handle and its declared class
	// (value or reference), decided by the type provider since the core
	// cannot infer struct-vs-class from the handle alone.
	Def      DefHandle
	DefClass Class

	// Spec: generic instantiation arguments applied to Def.
	Args []TypeID

	// MDArray: rank plus optional non-default bounds. A nil LowerBounds
	// means "all zero"; a nil Sizes means "unknown at this dimension".
	Rank        uint32
	LowerBounds []int32
	Sizes       []uint32

	// FuncPtr: parameter and return types of the called signature.
	Params []TypeID
	Result TypeID

	// GenericParam: which parameter list it names and at what index.
	ParamOwner GenericParamOwner
	ParamIndex uint32
}

// Class reports whether the type is a value class or a reference class.
func (t Type) Class() Class {
	switch t.Kind {
	case KindString, KindObject, KindArray, KindMDArray:
		return ClassReference
	case KindDef, KindSpec:
		return t.DefClass
	default:
		return ClassValue
	}
}

// StackType reports the evaluation-stack category this type collapses to.
func (t Type) StackType() StackType {
	switch t.Kind {
	case KindVoid:
		return StackVoid
	case KindBool, KindInt8, KindInt16, KindInt32, KindUInt8, KindUInt16, KindUInt32, KindChar:
		return StackInt32
	case KindInt64, KindUInt64:
		return StackInt64
	case KindIntPtr, KindUIntPtr, KindPtr, KindFuncPtr:
		return StackNInt
	case KindFloat32, KindFloat64:
		return StackFloat
	case KindString, KindObject, KindArray, KindMDArray:
		return StackObject
	case KindByref:
		return StackByRef
	case KindDef, KindSpec:
		if t.DefClass == ClassReference {
			return StackObject
		}
		return StackStruct
	case KindPinned:
		// Pinned is a local-slot modifier; it is transparent on the stack.
		return StackStruct
	case KindGenericParam:
		// Not resolvable without instantiation; treated conservatively.
		return StackStruct
	default:
		return StackVoid
	}
}

// IsReferenceFree reports whether a value of this type can be duplicated on
// the stack without a managed-pointer hazard — used by the Forest hazard
// check's ArrayAddr/FieldAddr/Load commutativity rule.
func (t Type) IsReferenceFree() bool {
	return t.Kind != KindByref
}
