package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/ir"
)

// createBlocks implements spec.md §4.4 step 3: one BasicBlock per leader,
// in ascending offset order, with the half-open raw byte range each block
// covers recorded for the per-block interpreter to walk later.
func createBlocks(fc *funcCtx) error {
	for i, instr := range fc.raw.Instrs {
		if _, ok := fc.offsetIndex[instr.Offset]; !ok {
			fc.offsetIndex[instr.Offset] = i
		}
	}

	offsets := fc.leaders.sorted
	for i, off := range offsets {
		end := fc.raw.Length
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		id := fc.body.NewBlock(off)
		fc.offsetBlock[off] = id
		fc.blockEnd[id] = end
	}
	return nil
}

// wireEdges implements spec.md §4.4 step 3's CFG-edge half: for every
// block, look at the raw opcode ending its covered range and record the
// successor offsets it implies, including the implicit fall-through a
// block without an explicit terminator gets.
func wireEdges(fc *funcCtx) {
	for _, id := range fc.body.BlockIDs() {
		start := fc.body.Block(id).StartOffset
		end := fc.blockEnd[id]
		lastIdx := lastInstrIndex(fc.raw, start, end)
		if lastIdx < 0 {
			continue // empty block, e.g. a handler/filter placeholder with no raw bytes yet
		}
		last := fc.raw.Instrs[lastIdx]

		var succOffsets []uint32
		switch {
		case !last.OpCode.IsBranch():
			succOffsets = []uint32{end}
		case last.OpCode == cil.OpRet || last.OpCode == cil.OpThrow ||
			last.OpCode == cil.OpRethrow || last.OpCode == cil.OpEndfinally ||
			last.OpCode == cil.OpEndfilter:
			// no successors
		case last.OpCode == cil.OpSwitch:
			succOffsets = append(succOffsets, last.Operand.Targets...)
			succOffsets = append(succOffsets, end)
		default:
			// Br, BrTrue/False, Beq/Bne/Bgt/Bge/Blt/Ble, Leave: one taken
			// target, plus a fall-through for every conditional form.
			succOffsets = append(succOffsets, last.Operand.Targets...)
			if last.OpCode.IsConditionalBranch() {
				succOffsets = append(succOffsets, end)
			}
		}

		seen := make(map[uint32]bool, len(succOffsets))
		for _, off := range succOffsets {
			if seen[off] {
				continue
			}
			seen[off] = true
			if succID, ok := fc.offsetBlock[off]; ok {
				fc.body.AddSucc(id, succID)
			}
		}
	}

	resolveEntry(fc)
}

// lastInstrIndex returns the index into fc.raw.Instrs of the last
// instruction whose offset falls in [start, end), or -1 if the range is
// empty.
func lastInstrIndex(m *cil.RawMethod, start, end uint32) int {
	best := -1
	for i, instr := range m.Instrs {
		if instr.Offset < start || instr.Offset >= end {
			continue
		}
		best = i
	}
	return best
}

// resolveEntry implements spec.md §4.4's entry-synthesis rule: if the
// block at offset 0 already has an incoming edge (a loop whose header is
// the method's first instruction), give it a dedicated predecessor-free
// entry block instead, so MethodBody.Entry keeps its zero-predecessor
// invariant. SimplifyCFG's jump-chain merge folds the synthetic block
// back away transparently in the common case where no back-edge exists.
func resolveEntry(fc *funcCtx) {
	zero := fc.offsetBlock[0]
	if len(fc.body.Block(zero).Preds) == 0 {
		fc.body.Entry = zero
		return
	}

	entry := fc.body.NewBlock(0)
	br := fc.body.NewBranch(ir.NoValueID, []ir.BlockID{zero}, 0, fc.voidType())
	fc.body.AppendInst(entry, br)
	fc.body.AddSucc(entry, zero)
	fc.body.Entry = entry
}

// appendBodyInst appends inst to block's body, splicing it in just before
// an already-recorded terminator if one exists (the synthetic entry
// block's unconditional jump) rather than after it.
func appendBodyInst(fc *funcCtx, block ir.BlockID, inst ir.InstID) {
	blk := fc.body.Block(block)
	if blk.Last != ir.NoInstID && fc.body.Inst(blk.Last).IsTerminator() {
		fc.body.InsertBefore(blk.Last, inst)
		return
	}
	fc.body.AppendInst(block, inst)
}
