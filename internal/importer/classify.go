package importer

import "ilcore/internal/types"

// primitiveSet caches which TypeIDs the provider hands back for the
// closed set of PrimitiveCodes, so the importer can classify a TypeID
// without needing the Interner directly — TypeProvider only exposes
// construction callbacks, not a reverse Lookup. Used to pick a
// type-appropriate zero value when a local needs default-initializing.
type primitiveSet struct {
	ints    map[types.TypeID]bool
	floats  map[types.TypeID]bool
	nullish map[types.TypeID]bool // String/Object: zero value is null
}

func newPrimitiveSet(p interface {
	GetPrimitiveType(types.PrimitiveCode) types.TypeID
}) *primitiveSet {
	s := &primitiveSet{
		ints:    make(map[types.TypeID]bool, 12),
		floats:  make(map[types.TypeID]bool, 2),
		nullish: make(map[types.TypeID]bool, 2),
	}
	for _, c := range []types.PrimitiveCode{
		types.PrimitiveBool, types.PrimitiveChar,
		types.PrimitiveInt8, types.PrimitiveInt16, types.PrimitiveInt32, types.PrimitiveInt64,
		types.PrimitiveUInt8, types.PrimitiveUInt16, types.PrimitiveUInt32, types.PrimitiveUInt64,
		types.PrimitiveIntPtr, types.PrimitiveUIntPtr,
	} {
		s.ints[p.GetPrimitiveType(c)] = true
	}
	for _, c := range []types.PrimitiveCode{types.PrimitiveFloat32, types.PrimitiveFloat64} {
		s.floats[p.GetPrimitiveType(c)] = true
	}
	for _, c := range []types.PrimitiveCode{types.PrimitiveString, types.PrimitiveObject} {
		s.nullish[p.GetPrimitiveType(c)] = true
	}
	return s
}

// zeroKind classifies typ for default-local-initialization purposes.
// Anything not recognized as an integer or float primitive is treated as
// reference-like and zero-initialized with a null constant; this core
// does not model zeroing a value-typed struct field by field, matching
// §4.4's documented narrowing that a struct-valued local's first real
// write is expected to precede any read of its default state.
type zeroKind uint8

const (
	zeroInt zeroKind = iota
	zeroFloat
	zeroNull
)

func (fc *funcCtx) classifyZero(typ types.TypeID) zeroKind {
	if fc.primitives.ints[typ] {
		return zeroInt
	}
	if fc.primitives.floats[typ] {
		return zeroFloat
	}
	return zeroNull
}
