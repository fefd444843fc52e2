// Package alias provides a deliberately conservative must/may-alias
// oracle consulted by the Forest hazard check. It is not a whole-program
// alias analysis: it only distinguishes the patterns the importer's own
// instruction shapes make cheap to tell apart (distinct field handles,
// distinct arguments, a freshly allocated object versus anything else),
// and answers "maybe" for everything it cannot prove otherwise. A false
// "maybe" only costs Forest a missed rematerialization opportunity, never
// correctness, since the hazard check's default when unsure is to keep an
// instruction where it is.
package alias

import "ilcore/internal/ir"

// Result is the three-valued answer an alias query returns.
type Result uint8

const (
	MayAlias Result = iota
	NoAlias
	MustAlias
)

// Query answers alias questions about two address-producing values within
// one method body.
type Query struct {
	f *ir.MethodBody
}

// New constructs a Query bound to f.
func New(f *ir.MethodBody) *Query {
	return &Query{f: f}
}

// Alias reports the relationship between the addresses produced by two
// instructions, both of which must be one of FieldAddr, ArrayAddr, or an
// argument-derived address. Any other instruction kind conservatively
// answers MayAlias.
func (q *Query) Alias(a, b ir.InstID) Result {
	if a == b {
		return MustAlias
	}
	ia, ib := q.f.Inst(a), q.f.Inst(b)

	if ia.Kind == ir.InstFieldAddr && ib.Kind == ir.InstFieldAddr {
		return q.aliasFieldAddr(ia, ib)
	}
	if ia.Kind == ir.InstArrayAddr && ib.Kind == ir.InstArrayAddr {
		return q.aliasArrayAddr(ia, ib)
	}
	if (ia.Kind == ir.InstFieldAddr && ib.Kind == ir.InstArrayAddr) ||
		(ia.Kind == ir.InstArrayAddr && ib.Kind == ir.InstFieldAddr) {
		// A field slot and an array element never occupy the same storage.
		return NoAlias
	}
	return MayAlias
}

func (q *Query) aliasFieldAddr(a, b *ir.Instruction) Result {
	if a.Field != b.Field {
		return NoAlias
	}
	objA := q.f.OperandValue(a.Operands[0])
	objB := q.f.OperandValue(b.Operands[0])
	if objA == objB {
		return MustAlias
	}
	return MayAlias
}

func (q *Query) aliasArrayAddr(a, b *ir.Instruction) Result {
	arrA := q.f.OperandValue(a.Operands[0])
	arrB := q.f.OperandValue(b.Operands[0])
	if arrA != arrB {
		return NoAlias
	}
	idxA := q.f.OperandValue(a.Operands[1])
	idxB := q.f.OperandValue(b.Operands[1])
	if idxA == idxB {
		return MustAlias
	}
	// Same array, different (or unprovably distinct) index values: could
	// still be the same element at runtime.
	return MayAlias
}

// StoreMayClobberLoad reports whether a store instruction could write to
// the same location a later load reads from, per Forest's hazard check
// ("does a store between the leaf's definition and its use potentially
// invalidate it").
func (q *Query) StoreMayClobberLoad(store, load ir.InstID) bool {
	storeInst, loadInst := q.f.Inst(store), q.f.Inst(load)
	if storeInst.Kind != ir.InstStore || loadInst.Kind != ir.InstLoad {
		return true
	}
	storeAddr := q.f.OperandValue(storeInst.Operands[0])
	loadAddr := q.f.OperandValue(loadInst.Operands[0])
	defStore := q.f.Value(storeAddr).Def
	defLoad := q.f.Value(loadAddr).Def
	if defStore == ir.NoInstID || defLoad == ir.NoInstID {
		return true // one of the addresses is an argument/opaque; be conservative
	}
	return q.Alias(defStore, defLoad) != NoAlias
}

// StoreMayClobberField reports whether a store instruction could write to
// the same field a later ExtractField reads by value. Unlike
// StoreMayClobberLoad, there is no second address to run through Alias:
// ExtractField carries its object operand directly rather than through a
// FieldAddr, so this only compares field identity and conservatively
// assumes the objects could be the same one.
func (q *Query) StoreMayClobberField(store, extractField ir.InstID) bool {
	storeInst, efInst := q.f.Inst(store), q.f.Inst(extractField)
	if storeInst.Kind != ir.InstStore || efInst.Kind != ir.InstExtractField {
		return true
	}
	storeAddr := q.f.OperandValue(storeInst.Operands[0])
	defStore := q.f.Value(storeAddr).Def
	if defStore == ir.NoInstID {
		return true // address is an argument/opaque; be conservative
	}
	addrInst := q.f.Inst(defStore)
	if addrInst.Kind != ir.InstFieldAddr {
		return true // store through some other address shape; be conservative
	}
	return addrInst.Field == efInst.Field
}
