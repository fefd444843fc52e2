package importer

import "ilcore/internal/types"

// voidType resolves the Void TypeID through the type provider rather than
// caching it, since funcCtx has no direct line to the interner — only the
// TypeProvider callback surface the frontend is specified against.
func (fc *funcCtx) voidType() types.TypeID {
	return fc.provider.GetPrimitiveType(types.PrimitiveVoid)
}

func (fc *funcCtx) int32Type() types.TypeID {
	return fc.provider.GetPrimitiveType(types.PrimitiveInt32)
}

// isArgSlot reports whether sl names an argument rather than a local.
func (fc *funcCtx) isArgSlot(sl slot) bool {
	return int(sl) < fc.numArgs
}

// slotType returns the declared type of slot sl, looking it up in
// ArgTypes or LocalTypes depending on which half of the flat slot space
// sl falls in.
func (fc *funcCtx) slotType(sl slot) types.TypeID {
	if fc.isArgSlot(sl) {
		return fc.raw.ArgTypes[sl]
	}
	return fc.raw.LocalTypes[int(sl)-fc.numArgs]
}

// flatLocalIndex returns the raw local-table index backing slot sl. Only
// meaningful when !isArgSlot(sl).
func (fc *funcCtx) flatLocalIndex(sl slot) uint32 {
	return sl - uint32(fc.numArgs)
}
