package importer

import "ilcore/internal/cil"

// VarFlags records what the bytecode stream does to one argument or local
// slot, gathered in a single linear pass before any block is built. The
// importer consults these bits to decide whether a slot can be carried as
// a pure SSA value (phi'd at merges) or must be demoted to a real memory
// slot addressed by LoadVar/StoreVar.
type VarFlags uint16

const (
	FlagLoaded VarFlags = 1 << iota
	FlagStored
	FlagAddrTaken
	FlagCrossesBlock
	FlagCrossesRegions
	FlagMultipleStores
)

// IsExposed reports whether a slot must be memory-backed: its address was
// taken, or its uses span more than one protected-region chain. Crossing
// an ordinary block boundary does not force exposure — that is exactly
// what the phi mechanism exists to handle.
func (v VarFlags) IsExposed() bool {
	return v&(FlagAddrTaken|FlagCrossesRegions) != 0
}

func (v VarFlags) Has(f VarFlags) bool { return v&f != 0 }

// analyzeVariables implements spec.md §4.4 step 2: one forward pass over
// the raw instruction stream recording, per slot, whether it is ever
// loaded, stored more than once, has its address taken, crosses a block
// boundary, or crosses into a differently-protected region.
func analyzeVariables(fc *funcCtx) {
	fc.flags = make(map[slot]VarFlags)
	fc.promotable = make(map[slot]bool)

	type touch struct {
		blockLeader uint32
		regionRef   uint32 // representative offset used for AreOnSameRegion queries
		storeCount  int
	}
	first := make(map[slot]*touch)

	currentLeader := uint32(0)
	leaderIdx := 0

	for _, instr := range fc.raw.Instrs {
		for leaderIdx < len(fc.leaders.sorted) && fc.leaders.sorted[leaderIdx] <= instr.Offset {
			currentLeader = fc.leaders.sorted[leaderIdx]
			leaderIdx++
		}

		sl, flag, isAddr, ok := slotTouch(fc, instr)
		if !ok {
			continue
		}

		fl := fc.flags[sl] | flag
		t, seen := first[sl]
		if !seen {
			t = &touch{blockLeader: currentLeader, regionRef: instr.Offset}
			first[sl] = t
		} else {
			if t.blockLeader != currentLeader {
				fl |= FlagCrossesBlock
			}
			if !fc.regions.AreOnSameRegion(t.regionRef, instr.Offset) {
				fl |= FlagCrossesRegions
			}
		}
		if isAddr {
			fl |= FlagAddrTaken
		}
		if flag == FlagStored {
			t.storeCount++
			if t.storeCount > 1 {
				fl |= FlagMultipleStores
			}
		}
		fc.flags[sl] = fl
	}

	for s, fl := range fc.flags {
		fc.promotable[s] = !fl.IsExposed()
	}
}

// slotTouch classifies one instruction's effect on an argument/local slot,
// returning ok=false for instructions that do not touch a var slot at all.
func slotTouch(fc *funcCtx, instr cil.Instr) (sl slot, flag VarFlags, isAddr bool, ok bool) {
	switch instr.OpCode {
	case cil.OpLdarg:
		return slot(instr.Operand.VarIndex), FlagLoaded, false, true
	case cil.OpStarg:
		return slot(instr.Operand.VarIndex), FlagStored, false, true
	case cil.OpLdarga:
		return slot(instr.Operand.VarIndex), FlagLoaded, true, true
	case cil.OpLdloc:
		return localSlot(fc, instr.Operand.VarIndex), FlagLoaded, false, true
	case cil.OpStloc:
		return localSlot(fc, instr.Operand.VarIndex), FlagStored, false, true
	case cil.OpLdloca:
		return localSlot(fc, instr.Operand.VarIndex), FlagLoaded, true, true
	default:
		return 0, 0, false, false
	}
}

func localSlot(fc *funcCtx, localIndex uint32) slot {
	return slot(fc.numArgs) + localIndex
}
