// Package forest classifies each SSA value as a leaf (safe to fold into
// its user(s) as an expression-tree operand, the way a stack-machine
// target's codegen wants) or a tree root (must materialize into a real
// temporary). A value is a leaf when it is either single-use, or one of
// the rematerialize-whitelisted kinds with every use in the same block
// and none of them a phi -- cheap enough to recompute at each use site
// instead of naming once. A kind that reads memory only qualifies once
// the hazard check has confirmed nothing between its definition and every
// one of its uses could have written the memory it reads. Anything else,
// including a value that escapes its block or feeds a phi, is a tree
// root. Forest never rewrites the IR itself -- DCE and SimplifyCFG do
// that; Forest only produces the classification a downstream
// expression-tree emitter would consult.
package forest

import (
	"ilcore/internal/alias"
	"ilcore/internal/ir"
)

// Options tunes the analysis. The zero value is not usable; call
// DefaultOptions.
type Options struct {
	// RematerializeWhitelist lists instruction kinds considered cheap
	// enough to duplicate at every use site rather than materialize once.
	// FieldAddr and ArrayAddr only compute an address and never read
	// memory, so they need no hazard check; ExtractField and the
	// MDArray-get/ArrayLen intrinsics do read memory and are additionally
	// gated on hasClobberBetween at every one of their use sites.
	RematerializeWhitelist map[ir.InstKind]bool
}

// DefaultOptions returns the whitelist spec.md's Forest section documents.
func DefaultOptions() Options {
	return Options{
		RematerializeWhitelist: map[ir.InstKind]bool{
			ir.InstFieldAddr:    true,
			ir.InstExtractField: true,
			ir.InstArrayAddr:    true,
			ir.InstIntrinsic:    true,
		},
	}
}

// Info is the result of one Analyze run: a leaf/root bit per instruction
// with a result value.
type Info struct {
	leaf map[ir.InstID]bool
}

// IsLeaf reports whether id was classified as a leaf.
func (in *Info) IsLeaf(id ir.InstID) bool {
	return in.leaf[id]
}

// IsTreeRoot is the complement of IsLeaf for instructions that produce a
// value; instructions with no result (Store, Return, Throw) are always
// tree roots in the sense that they can never be inlined into a user.
func (in *Info) IsTreeRoot(id ir.InstID) bool {
	return !in.leaf[id]
}

// SetLeaf lets a downstream consumer override a classification, e.g. to
// force materialization of a value it needs to name explicitly for
// debugging.
func (in *Info) SetLeaf(id ir.InstID, leaf bool) {
	if in.leaf == nil {
		in.leaf = make(map[ir.InstID]bool)
	}
	in.leaf[id] = leaf
}

// Analyze classifies every instruction in f. aq may be nil if f contains
// no memory-reading instruction (the hazard check is only ever consulted
// for a Load/ExtractField/memory-reading intrinsic).
func Analyze(f *ir.MethodBody, aq *alias.Query, opts Options) *Info {
	info := &Info{leaf: make(map[ir.InstID]bool)}

	for _, blockID := range f.BlockIDs() {
		ids := f.Instructions(blockID)
		for i := len(ids) - 1; i >= 0; i-- {
			id := ids[i]
			inst := f.Inst(id)
			if !inst.HasResult() {
				continue
			}
			if classifyAsLeaf(f, aq, opts, blockID, id, inst) {
				info.leaf[id] = true
			}
		}
	}
	return info
}

func classifyAsLeaf(f *ir.MethodBody, aq *alias.Query, opts Options, blockID ir.BlockID, id ir.InstID, inst *ir.Instruction) bool {
	v := f.Value(inst.Result)
	if v.NumUses == 0 {
		return false
	}
	uses := f.Uses(inst.Result)

	if v.NumUses == 1 {
		user := f.OperandUser(uses[0])
		userInst := f.Inst(user)
		if userInst.Block != blockID || userInst.Kind == ir.InstPhi {
			return false
		}
		if inst.MayReadFromMemory() {
			if aq == nil || hasClobberBetween(f, aq, blockID, id, user) {
				return false
			}
		}
		return true
	}

	// More than one use: only a whitelisted, cheap-to-rematerialize kind
	// can still be a leaf, and only if every use sits in this same block,
	// none of them is a phi, and (for a memory-reading kind) nothing
	// between the definition and that particular use could have clobbered
	// it -- each use site gets its own copy of the computation instead of
	// a single materialized temporary.
	if !opts.RematerializeWhitelist[inst.Kind] {
		return false
	}
	for _, use := range uses {
		user := f.OperandUser(use)
		userInst := f.Inst(user)
		if userInst.Block != blockID || userInst.Kind == ir.InstPhi {
			return false
		}
		if inst.MayReadFromMemory() {
			if aq == nil || hasClobberBetween(f, aq, blockID, id, user) {
				return false
			}
		}
	}
	return true
}

// hasClobberBetween reports whether any instruction strictly between def
// and user in the same block may write memory def's read depends on. Every
// MayWriteToMemory instruction is inspected, not only Store: a Call or
// NewObj has no precise address to compare against and is always treated
// as a clobber, the same conservative default StoreMayClobberLoad falls
// back to for an unresolvable address.
func hasClobberBetween(f *ir.MethodBody, aq *alias.Query, blockID ir.BlockID, def, user ir.InstID) bool {
	ids := f.Instructions(blockID)
	inRange := false
	for _, id := range ids {
		if id == def {
			inRange = true
			continue
		}
		if id == user {
			break
		}
		if !inRange {
			continue
		}
		write := f.Inst(id)
		if !write.MayWriteToMemory() {
			continue
		}
		if mayClobber(f, aq, id, write, def) {
			return true
		}
	}
	return false
}

// mayClobber answers whether a specific write instruction can invalidate a
// specific memory-reading def. Store-against-Load and Store-against-
// ExtractField are resolved precisely through the alias query, and a
// StoreVar against a LoadVar compares slot indices directly; every other
// pairing falls back to a conservative "yes".
func mayClobber(f *ir.MethodBody, aq *alias.Query, writeID ir.InstID, write *ir.Instruction, readID ir.InstID) bool {
	read := f.Inst(readID)
	switch {
	case write.Kind == ir.InstStore && read.Kind == ir.InstLoad:
		return aq.StoreMayClobberLoad(writeID, readID)
	case write.Kind == ir.InstStore && read.Kind == ir.InstExtractField:
		return aq.StoreMayClobberField(writeID, readID)
	case write.Kind == ir.InstStoreVar && read.Kind == ir.InstLoadVar:
		return write.Method == read.Method // slot index, reusing NewLoadVar's Method-field encoding
	default:
		return true
	}
}
