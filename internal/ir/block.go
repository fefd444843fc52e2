package ir

// BasicBlock is a maximal straight-line instruction run: header
// instructions (phis, guards) first, then the body, ending in exactly one
// terminator. Instructions are threaded via Instruction.Prev/Next rather
// than stored in a slice, so InsertBefore/InsertAfter/Remove are O(1) and
// never invalidate another instruction's identity.
//
// Headers are only ever produced by the importer while it is still
// building the block (AppendHeader), before any body instruction has been
// appended. Every editing primitive below (InsertBefore, InsertAfter,
// InsertAnteLast, MoveRange) operates on non-header instructions only;
// passes never need to insert a new phi or guard into an already-built
// block.
type BasicBlock struct {
	ID          BlockID
	StartOffset uint32

	First          InstID // first instruction (header or body), NoInstID if empty
	FirstNonHeader InstID // first body instruction, NoInstID if the block is all headers (or empty)
	Last           InstID // terminator, NoInstID if not yet closed

	Preds []BlockID
	Succs []BlockID

	Sealed  bool // true once every predecessor has been discovered
	Removed bool // true once RemoveUnreachableBlocks has dropped this block
}

func (f *MethodBody) instAt(id InstID) *Instruction {
	return &f.instrs[id]
}

func (f *MethodBody) blockAt(id BlockID) *BasicBlock {
	return &f.blocks[id]
}

// AppendHeader appends a phi or guard instruction to the end of block's
// header run. It must not be called after AppendInst has added a body
// instruction to the same block.
func (f *MethodBody) AppendHeader(block BlockID, id InstID) {
	blk := f.blockAt(block)
	n := f.instAt(id)
	n.Block = block
	n.Prev = blk.Last
	n.Next = NoInstID

	if blk.Last != NoInstID {
		f.instAt(blk.Last).Next = id
	} else {
		blk.First = id
	}
	blk.Last = id
}

// AppendInst appends a body instruction (including the eventual
// terminator) to the end of block.
func (f *MethodBody) AppendInst(block BlockID, id InstID) {
	blk := f.blockAt(block)
	n := f.instAt(id)
	n.Block = block
	n.Prev = blk.Last
	n.Next = NoInstID

	if blk.Last != NoInstID {
		f.instAt(blk.Last).Next = id
	} else {
		blk.First = id
	}
	blk.Last = id
	if blk.FirstNonHeader == NoInstID {
		blk.FirstNonHeader = id
	}
}

// InsertBefore splices newInst immediately before at within at's block.
// at must be a body instruction, not a header.
func (f *MethodBody) InsertBefore(at, newInst InstID) {
	target := f.instAt(at)
	blk := f.blockAt(target.Block)
	f.linkBody(blk, newInst, target.Prev, at)
}

// InsertAfter splices newInst immediately after at within at's block.
func (f *MethodBody) InsertAfter(at, newInst InstID) {
	target := f.instAt(at)
	blk := f.blockAt(target.Block)
	f.linkBody(blk, newInst, at, target.Next)
}

// InsertAnteLast inserts newInst immediately before block's terminator,
// the usual insertion point for a rematerialized instruction the Forest
// analysis wants to place right before control leaves the block.
func (f *MethodBody) InsertAnteLast(block BlockID, newInst InstID) {
	blk := f.blockAt(block)
	if blk.Last == NoInstID {
		f.AppendInst(block, newInst)
		return
	}
	f.InsertBefore(blk.Last, newInst)
}

func (f *MethodBody) linkBody(blk *BasicBlock, newInst InstID, prev, next InstID) {
	n := f.instAt(newInst)
	n.Block = blk.ID
	n.Prev = prev
	n.Next = next

	if prev != NoInstID {
		f.instAt(prev).Next = newInst
	} else {
		blk.First = newInst
	}
	if next != NoInstID {
		f.instAt(next).Prev = newInst
	} else {
		blk.Last = newInst
	}
	if blk.FirstNonHeader == next {
		blk.FirstNonHeader = newInst
	}
}

// Remove unlinks inst from its block's instruction list and drops every
// operand it held, unlinking each from its value's use-list. It does not
// check whether inst still has uses; callers (DCE's dead-instruction
// sweep) are responsible for verifying that first.
func (f *MethodBody) Remove(inst InstID) {
	n := f.instAt(inst)
	blk := f.blockAt(n.Block)

	if n.Prev != NoInstID {
		f.instAt(n.Prev).Next = n.Next
	} else {
		blk.First = n.Next
	}
	if n.Next != NoInstID {
		f.instAt(n.Next).Prev = n.Prev
	} else {
		blk.Last = n.Prev
	}
	if blk.FirstNonHeader == inst {
		blk.FirstNonHeader = n.Next
	}

	for _, opID := range n.Operands {
		f.unlinkUse(opID)
	}
	n.Prev, n.Next = NoInstID, NoInstID
}

// ReplaceWith removes old and rewrites every use of its result (if any) to
// name replacement instead. It is the primitive both DCE (replacing a
// trivial phi) and SimplifyCFG (replacing a constant branch condition) use.
func (f *MethodBody) ReplaceWith(old InstID, replacement ValueID) {
	oldInst := f.instAt(old)
	if oldInst.Result != NoValueID {
		f.ReplaceUses(oldInst.Result, replacement)
	}
	f.Remove(old)
}

// MoveRange relocates the body instructions [first, last] (inclusive,
// following Next links) to the end of dest, preserving their relative
// order. Used by SimplifyCFG's single-predecessor jump-chain merge to fold
// a successor block's body into its predecessor.
func (f *MethodBody) MoveRange(first, last InstID, dest BlockID) {
	srcBlock := f.blockAt(f.instAt(first).Block)
	prev := f.instAt(first).Prev
	next := f.instAt(last).Next

	if prev != NoInstID {
		f.instAt(prev).Next = next
	} else {
		srcBlock.First = next
	}
	if next != NoInstID {
		f.instAt(next).Prev = prev
	} else {
		srcBlock.Last = prev
	}
	if srcBlock.FirstNonHeader == first {
		srcBlock.FirstNonHeader = next
	}

	destBlock := f.blockAt(dest)
	for cur := first; ; cur = f.instAt(cur).Next {
		f.instAt(cur).Block = dest
		if cur == last {
			break
		}
	}

	if destBlock.Last != NoInstID {
		f.instAt(destBlock.Last).Next = first
	} else {
		destBlock.First = first
	}
	f.instAt(first).Prev = destBlock.Last
	f.instAt(last).Next = NoInstID
	destBlock.Last = last
	if destBlock.FirstNonHeader == NoInstID {
		destBlock.FirstNonHeader = first
	}
}

// SetBranch rewrites a terminator's target list in place, used by
// SimplifyCFG's compare-to-zero inversion (swap the two targets) and by
// constant-branch folding (collapse to a single target). It does not touch
// Preds/Succs; RedirectPhis/AddSucc/RemoveSucc handle that separately since
// they must also rewrite phi operand lists.
func (f *MethodBody) SetBranch(term InstID, targets []BlockID) {
	f.instAt(term).Targets = targets
}

// RedirectPhis rewrites every phi in target so that operands previously
// arriving from oldPred now arrive from newPred instead, and updates
// target's Preds list to match. Used when a block is spliced out of the
// CFG (SimplifyCFG's jump-chain merge).
func (f *MethodBody) RedirectPhis(target BlockID, oldPred, newPred BlockID) {
	blk := f.blockAt(target)
	for id := blk.First; id != NoInstID && id != blk.FirstNonHeader; id = f.instAt(id).Next {
		inst := f.instAt(id)
		if inst.Kind != InstPhi {
			continue
		}
		for i, pred := range inst.Targets {
			if pred == oldPred {
				inst.Targets[i] = newPred
			}
		}
	}
	for i, p := range blk.Preds {
		if p == oldPred {
			blk.Preds[i] = newPred
		}
	}
}

// MarkBlockRemoved flags block as no longer part of the body. It does not
// unlink the block's instructions or edges; callers (RemoveUnreachableBlocks)
// are responsible for detaching everything first.
func (f *MethodBody) MarkBlockRemoved(block BlockID) {
	f.blockAt(block).Removed = true
}

// RemovePhiIncoming drops the incoming value pred contributes to every
// phi in target, and removes pred from target's Preds list. Used when a
// predecessor edge disappears outright (a folded constant branch drops
// the untaken edge) rather than being redirected to a different block.
func (f *MethodBody) RemovePhiIncoming(target BlockID, pred BlockID) {
	blk := f.blockAt(target)
	for id := blk.First; id != NoInstID && id != blk.FirstNonHeader; id = f.instAt(id).Next {
		inst := f.instAt(id)
		if inst.Kind != InstPhi {
			continue
		}
		for i, p := range inst.Targets {
			if p != pred {
				continue
			}
			f.unlinkUse(inst.Operands[i])
			inst.Targets = append(inst.Targets[:i], inst.Targets[i+1:]...)
			inst.Operands = append(inst.Operands[:i], inst.Operands[i+1:]...)
			break
		}
	}
	removeFirst(&blk.Preds, pred)
}

// RedirectSuccPhis applies RedirectPhis to every successor of block.
func (f *MethodBody) RedirectSuccPhis(block BlockID, oldSelf, newSelf BlockID) {
	for _, succ := range f.blockAt(block).Succs {
		f.RedirectPhis(succ, oldSelf, newSelf)
	}
}

// TransferSuccessors moves every outgoing edge of from onto to: each
// successor's phis are redirected to name to instead of from (which also
// fixes up that successor's Preds list), then to.Succs absorbs from's
// edge list. from.Succs is left empty. Used by SimplifyCFG's jump-chain
// merge once from's body has already been spliced into to.
func (f *MethodBody) TransferSuccessors(from, to BlockID) {
	fromBlk := f.blockAt(from)
	for _, succ := range fromBlk.Succs {
		f.RedirectPhis(succ, from, to)
	}
	toBlk := f.blockAt(to)
	toBlk.Succs = append(toBlk.Succs, fromBlk.Succs...)
	fromBlk.Succs = nil
}

// AddSucc records a CFG edge block -> succ in both directions.
func (f *MethodBody) AddSucc(block, succ BlockID) {
	f.blockAt(block).Succs = append(f.blockAt(block).Succs, succ)
	f.blockAt(succ).Preds = append(f.blockAt(succ).Preds, block)
}

// RemoveSucc removes a CFG edge block -> succ in both directions, dropping
// the first matching entry on each side.
func (f *MethodBody) RemoveSucc(block, succ BlockID) {
	removeFirst(&f.blockAt(block).Succs, succ)
	removeFirst(&f.blockAt(succ).Preds, block)
}

func removeFirst(list *[]BlockID, id BlockID) {
	for i, b := range *list {
		if b == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// Instructions returns every instruction in block, in list order,
// including headers. Intended for tests and the debug printer; hot passes
// should walk First/Next directly to avoid the allocation.
func (f *MethodBody) Instructions(block BlockID) []InstID {
	var out []InstID
	blk := f.blockAt(block)
	if blk.First == NoInstID {
		return out
	}
	for id := blk.First; ; id = f.instAt(id).Next {
		out = append(out, id)
		if id == blk.Last {
			break
		}
	}
	return out
}
