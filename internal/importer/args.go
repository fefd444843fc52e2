package importer

import (
	"ilcore/internal/ir"
	"ilcore/internal/types"
)

// seedArguments implements spec.md §4.4 step 5. Arguments are SSA values
// by construction (ir.MethodBody.NewArg), so a slot that is never stored
// to and never has its address taken needs nothing further: every ldarg
// of it is just a direct use of that one value. A slot that is stored to
// (starg) or addressed needs a mutable backing: a pure phi-merged
// variable if it stays non-exposed, or a real memory slot if it is
// exposed, seeded by storing the incoming argument value at the top of
// the entry block.
//
// Locals get the analogous default-initialization treatment here too:
// CIL locals are zero-initialized, so every local slot (promotable or
// exposed) is seeded with a type-appropriate zero constant materialized
// once at entry.
func seedArguments(fc *funcCtx) {
	fc.initialVars = make(map[slot]ir.ValueID)
	entry := fc.body.Entry

	for i := 0; i < fc.numArgs; i++ {
		sl := slot(i)
		fl := fc.flags[sl]
		argVal := fc.argValues[i]

		if !fl.Has(FlagStored) && !fl.Has(FlagAddrTaken) {
			fc.initialVars[sl] = argVal
			continue
		}
		if fc.promotable[sl] {
			fc.initialVars[sl] = argVal
			continue
		}
		st := fc.body.NewStoreVar(sl, argVal, 0, fc.voidType())
		appendBodyInst(fc, entry, st)
	}

	for i := range fc.raw.LocalTypes {
		sl := slot(fc.numArgs + i)
		fl := fc.flags[sl]
		if !fl.Has(FlagLoaded) && !fl.Has(FlagStored) && !fl.Has(FlagAddrTaken) {
			continue // never touched; no seed needed
		}

		zero := fc.zeroConst(fc.slotType(sl), 0)
		appendBodyInst(fc, entry, zero)
		zeroVal := fc.body.Inst(zero).Result

		if fc.promotable[sl] {
			fc.initialVars[sl] = zeroVal
			continue
		}
		st := fc.body.NewStoreVar(sl, zeroVal, 0, fc.voidType())
		appendBodyInst(fc, entry, st)
	}
}

// zeroConst materializes a type-appropriate zero/null constant instruction,
// not yet linked into any block.
func (fc *funcCtx) zeroConst(typ types.TypeID, offset uint32) ir.InstID {
	switch fc.classifyZero(typ) {
	case zeroInt:
		return fc.body.NewConstInt(typ, 0, offset)
	case zeroFloat:
		return fc.body.NewConstFloat(typ, 0, offset)
	default:
		return fc.body.NewConstNull(typ, offset)
	}
}
