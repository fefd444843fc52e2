package types

import "fmt"

// PrimitiveCode mirrors the small, closed set of element-type codes the
// (external) metadata reader hands the type provider when it wants a
// primitive TypeID back — one entry per Kind that has no further payload.
type PrimitiveCode uint8

const (
	PrimitiveVoid PrimitiveCode = iota
	PrimitiveBool
	PrimitiveChar
	PrimitiveInt8
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveUInt8
	PrimitiveUInt16
	PrimitiveUInt32
	PrimitiveUInt64
	PrimitiveIntPtr
	PrimitiveUIntPtr
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveString
	PrimitiveObject
)

// GetPrimitiveType resolves one of the built-in kinds by code, matching the
// TypeProvider.GetPrimitiveType callback the frontend invokes while
// abstractly interpreting a Ldc/Conv/Ldelem instruction.
func (in *Interner) GetPrimitiveType(code PrimitiveCode) TypeID {
	b := in.builtins
	switch code {
	case PrimitiveVoid:
		return b.Void
	case PrimitiveBool:
		return b.Bool
	case PrimitiveChar:
		return b.Char
	case PrimitiveInt8:
		return b.Int8
	case PrimitiveInt16:
		return b.Int16
	case PrimitiveInt32:
		return b.Int32
	case PrimitiveInt64:
		return b.Int64
	case PrimitiveUInt8:
		return b.UInt8
	case PrimitiveUInt16:
		return b.UInt16
	case PrimitiveUInt32:
		return b.UInt32
	case PrimitiveUInt64:
		return b.UInt64
	case PrimitiveIntPtr:
		return b.IntPtr
	case PrimitiveUIntPtr:
		return b.UIntPtr
	case PrimitiveFloat32:
		return b.Float32
	case PrimitiveFloat64:
		return b.Float64
	case PrimitiveString:
		return b.String
	case PrimitiveObject:
		return b.Object
	default:
		return NoTypeID
	}
}

// GetTypeFromDefinition interns a Def type for a resolved TypeDef/TypeRef
// handle. cls tells the interner whether the definition is a value type or
// a reference type, since that cannot be inferred from the handle alone.
func (in *Interner) GetTypeFromDefinition(def DefHandle, cls Class) TypeID {
	return in.Intern(Type{Kind: KindDef, Def: def, DefClass: cls})
}

// GetGenericInstantiation interns a Spec type: a generic Def applied to a
// concrete argument list.
func (in *Interner) GetGenericInstantiation(def DefHandle, cls Class, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindSpec, Def: def, DefClass: cls, Args: cloneTypeIDs(args)})
}

// GetSZArrayType interns a single-dimensional zero-based array of elem.
func (in *Interner) GetSZArrayType(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem})
}

// GetArrayType interns a multi-dimensional or non-zero-based array. A nil
// lowerBounds means every dimension starts at zero; a nil sizes means the
// dimension sizes are unknown until runtime.
func (in *Interner) GetArrayType(elem TypeID, rank uint32, lowerBounds []int32, sizes []uint32) TypeID {
	return in.Intern(Type{
		Kind:        KindMDArray,
		Elem:        elem,
		Rank:        rank,
		LowerBounds: cloneInt32s(lowerBounds),
		Sizes:       cloneUint32s(sizes),
	})
}

// GetByReferenceType interns a managed pointer (&T).
func (in *Interner) GetByReferenceType(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindByref, Elem: elem})
}

// GetPointerType interns an unmanaged pointer (T*).
func (in *Interner) GetPointerType(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindPtr, Elem: elem})
}

// GetPinnedType interns a pinned local slot (T pinned). Pinning only makes
// sense on a local variable's declared type, not on an arbitrary value, but
// the core does not enforce that; it is the frontend's responsibility.
func (in *Interner) GetPinnedType(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindPinned, Elem: elem})
}

// GetFunctionPointerType interns a function pointer signature.
func (in *Interner) GetFunctionPointerType(params []TypeID, result TypeID) TypeID {
	return in.Intern(Type{Kind: KindFuncPtr, Params: cloneTypeIDs(params), Result: result})
}

// GetGenericTypeParameter interns an unbound type-level generic parameter
// (textual form "!index").
func (in *Interner) GetGenericTypeParameter(index uint32) TypeID {
	return in.Intern(Type{Kind: KindGenericParam, ParamOwner: GenericParamOfType, ParamIndex: index})
}

// GetGenericMethodParameter interns an unbound method-level generic
// parameter (textual form "!!index").
func (in *Interner) GetGenericMethodParameter(index uint32) TypeID {
	return in.Intern(Type{Kind: KindGenericParam, ParamOwner: GenericParamOfMethod, ParamIndex: index})
}

// GetModifiedType drops the custom modifier and returns unmodified
// unchanged. The modifier's identity and the isRequired flag are accepted
// so the TypeProvider surface matches the reader's callback signature, but
// neither is stored: nothing downstream of the frontend inspects modopts
// or modreqs, and threading them through the Type sum would cost every
// consumer a case they can never act on.
func (in *Interner) GetModifiedType(modifier DefHandle, unmodified TypeID, isRequired bool) TypeID {
	_ = modifier
	_ = isRequired
	return unmodified
}

// Postfix renders t's ECMA-335-style textual postfix form, as used by the
// debug printer.
func (t Type) Postfix() string {
	switch t.Kind {
	case KindArray:
		return "[]"
	case KindMDArray:
		if t.Rank <= 1 {
			return "[*]"
		}
		return fmt.Sprintf("[%d]", t.Rank)
	case KindByref:
		return "&"
	case KindPtr:
		return "*"
	case KindPinned:
		return " pinned"
	case KindFuncPtr:
		return "*()"
	case KindGenericParam:
		if t.ParamOwner == GenericParamOfMethod {
			return fmt.Sprintf("!!%d", t.ParamIndex)
		}
		return fmt.Sprintf("!%d", t.ParamIndex)
	default:
		return ""
	}
}

func cloneTypeIDs(ids []TypeID) []TypeID {
	if ids == nil {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}

func cloneInt32s(v []int32) []int32 {
	if v == nil {
		return nil
	}
	out := make([]int32, len(v))
	copy(out, v)
	return out
}

func cloneUint32s(v []uint32) []uint32 {
	if v == nil {
		return nil
	}
	out := make([]uint32, len(v))
	copy(out, v)
	return out
}
