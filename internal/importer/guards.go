package importer

import (
	"ilcore/internal/cil"
	"ilcore/internal/ir"
	"ilcore/internal/region"
)

// materializeGuards implements spec.md §4.4 step 4: for each protected
// region, insert a GuardInst header into its try-region's entry block,
// and record which block(s) that guard seeds the entry stack of.
//
// Regions whose try range coincides exactly with a sibling's (a try
// guarded by both a catch and a finally) simply accumulate multiple
// guard headers on the same entry block, each tagged with its own
// RegionDepth; region.Build already orders those as siblings rather than
// nesting one inside the other, so the two headers never conflict about
// which is "more nested". This core does not implement the defensive
// block-split the spec's prose anticipates for a guard collision with an
// unrelated, non-sibling region sharing a try-start offset, since
// region.Build's widest-first construction never produces that shape
// for well-formed input.
func materializeGuards(fc *funcCtx) {
	for i := 1; i <= fc.regions.Len(); i++ {
		node := fc.regions.Node(region.NodeID(i))
		r := node.Region

		tryEntry, ok := fc.offsetBlock[r.TryStart]
		if !ok {
			continue
		}
		handler, ok := fc.offsetBlock[r.HandlerStart]
		if !ok {
			continue
		}

		filter := ir.NoBlockID
		if r.Kind == cil.RegionFilter {
			if fb, ok := fc.offsetBlock[r.FilterStart]; ok {
				filter = fb
			}
		}

		kind := guardKindOf(r.Kind)
		depth := node.Depth - 1

		guard := fc.body.NewGuard(kind, handler, filter, r.CatchType, depth, r.TryStart, fc.voidType())
		fc.body.AppendHeader(tryEntry, guard)

		if filter != ir.NoBlockID {
			fc.body.AddSucc(tryEntry, filter)
			fc.body.AddSucc(filter, handler)
			fc.handlerGuard[filter] = guard
		} else {
			fc.body.AddSucc(tryEntry, handler)
		}
		fc.handlerGuard[handler] = guard
	}
}

func guardKindOf(k cil.RegionKind) ir.GuardKind {
	switch k {
	case cil.RegionFinally:
		return ir.GuardFinally
	case cil.RegionFault:
		return ir.GuardFault
	default: // RegionCatch, RegionFilter
		return ir.GuardCatch
	}
}
