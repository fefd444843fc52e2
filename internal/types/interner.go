package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins caches the TypeIDs of every primitive, so callers never re-intern
// them.
type Builtins struct {
	Void    TypeID
	Bool    TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
	UInt8   TypeID
	UInt16  TypeID
	UInt32  TypeID
	UInt64  TypeID
	IntPtr  TypeID
	UIntPtr TypeID
	Float32 TypeID
	Float64 TypeID
	Char    TypeID
	String  TypeID
	Object  TypeID
}

// Interner provides stable TypeIDs by structural equality. Compound types
// (Array, MDArray, Byref, Ptr, Pinned, FuncPtr, Spec, GenericParam) are
// deduplicated the same way as primitives: two structurally equal
// descriptors always resolve to the same TypeID.
type Interner struct {
	types    []Type
	index    map[string]TypeID
	builtins Builtins
}

// NewInterner constructs an interner pre-seeded with every primitive type.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[string]TypeID, 64),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // TypeID 0 is reserved

	in.builtins = Builtins{
		Void:    in.Intern(Type{Kind: KindVoid}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		Int8:    in.Intern(Type{Kind: KindInt8}),
		Int16:   in.Intern(Type{Kind: KindInt16}),
		Int32:   in.Intern(Type{Kind: KindInt32}),
		Int64:   in.Intern(Type{Kind: KindInt64}),
		UInt8:   in.Intern(Type{Kind: KindUInt8}),
		UInt16:  in.Intern(Type{Kind: KindUInt16}),
		UInt32:  in.Intern(Type{Kind: KindUInt32}),
		UInt64:  in.Intern(Type{Kind: KindUInt64}),
		IntPtr:  in.Intern(Type{Kind: KindIntPtr}),
		UIntPtr: in.Intern(Type{Kind: KindUIntPtr}),
		Float32: in.Intern(Type{Kind: KindFloat32}),
		Float64: in.Intern(Type{Kind: KindFloat64}),
		Char:    in.Intern(Type{Kind: KindChar}),
		String:  in.Intern(Type{Kind: KindString}),
		Object:  in.Intern(Type{Kind: KindObject}),
	}
	return in
}

// Builtins returns the cached primitive TypeIDs.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures t has a stable TypeID, allocating one on first sight.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for id, or false if id is unknown.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an invalid TypeID; reserved for call sites that have
// already validated the ID (e.g. re-reading a TypeID this package handed
// out moments ago).
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Equal reports whether two Type values are structurally identical. Because
// every interned type is deduplicated, TypeID equality already implies
// this; Equal exists for callers holding raw Type values that have not
// been interned yet.
func Equal(a, b Type) bool {
	return typeKey(a) == typeKey(b)
}

// typeKey computes the structural-equality key used to deduplicate every
// Type variant, including the ones with slice-typed payloads (MDArray,
// FuncPtr, Spec) that Go's built-in comparable-key maps cannot index.
func typeKey(t Type) string {
	switch t.Kind {
	case KindArray, KindByref, KindPtr, KindPinned:
		return fmt.Sprintf("%d:%d", t.Kind, t.Elem)
	case KindMDArray:
		return fmt.Sprintf("%d:%d:%d:%v:%v", t.Kind, t.Elem, t.Rank, t.LowerBounds, t.Sizes)
	case KindFuncPtr:
		return fmt.Sprintf("%d:%v:%d", t.Kind, t.Params, t.Result)
	case KindSpec:
		return fmt.Sprintf("%d:%d:%d:%v", t.Kind, t.Def, t.DefClass, t.Args)
	case KindDef:
		return fmt.Sprintf("%d:%d:%d", t.Kind, t.Def, t.DefClass)
	case KindGenericParam:
		return fmt.Sprintf("%d:%d:%d", t.Kind, t.ParamOwner, t.ParamIndex)
	default:
		return fmt.Sprintf("%d", t.Kind)
	}
}
