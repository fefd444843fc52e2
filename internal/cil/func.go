package cil

import "ilcore/internal/types"

// RawMethod bundles the decoded instruction stream and exception table the
// (external) metadata reader hands the importer for one method body, plus
// the signature pieces the reader has already resolved through
// TypeProvider. Instrs must be sorted by ascending Offset; an
// instruction's end offset is the next instruction's Offset, or Length for
// the last one. Regions must be supplied inner-first, per §6.
type RawMethod struct {
	Instrs     []Instr
	Length     uint32 // one past the last instruction's final byte
	Regions    []ExceptionRegion
	ArgTypes   []types.TypeID
	LocalTypes []types.TypeID
	ReturnType types.TypeID // types.NoTypeID / Builtins.Void for a void method
}

// End returns the half-open end offset of the instruction at index i.
func (m *RawMethod) End(i int) uint32 {
	if i+1 < len(m.Instrs) {
		return m.Instrs[i+1].Offset
	}
	return m.Length
}
