package region

import (
	"testing"

	"ilcore/internal/cil"
)

func TestBuildNestsRegionsByTryRangeContainment(t *testing.T) {
	regions := []cil.ExceptionRegion{
		{Kind: cil.RegionCatch, TryStart: 0, TryEnd: 100, HandlerStart: 100, HandlerEnd: 110},
		{Kind: cil.RegionFinally, TryStart: 10, TryEnd: 50, HandlerStart: 50, HandlerEnd: 60},
	}
	tree := Build(regions)
	if tree.Len() != 2 {
		t.Fatalf("expected 2 regions, got %d", tree.Len())
	}

	inner := tree.findInnermostContaining(20, 21)
	if inner == RootID {
		t.Fatalf("offset 20 should resolve to the inner finally region")
	}
	node := tree.Node(inner)
	if node.Region.TryStart != 10 {
		t.Fatalf("expected the narrower region (try start 10), got try start %d", node.Region.TryStart)
	}
	if node.Depth != 2 {
		t.Fatalf("expected depth 2 (root -> outer -> inner), got %d", node.Depth)
	}
}

func TestAreOnSameRegionDistinguishesNesting(t *testing.T) {
	regions := []cil.ExceptionRegion{
		{Kind: cil.RegionCatch, TryStart: 0, TryEnd: 100, HandlerStart: 100, HandlerEnd: 110},
		{Kind: cil.RegionFinally, TryStart: 10, TryEnd: 50, HandlerStart: 50, HandlerEnd: 60},
	}
	tree := Build(regions)

	if !tree.AreOnSameRegion(60, 70) {
		t.Fatalf("60 and 70 are both only in the outer try, should match")
	}
	if tree.AreOnSameRegion(20, 70) {
		t.Fatalf("20 (inner+outer) and 70 (outer only) should not match")
	}
	if !tree.AreOnSameRegion(15, 25) {
		t.Fatalf("15 and 25 are both in the inner+outer chain, should match")
	}
}

func TestOffsetOutsideAnyRegionResolvesToRoot(t *testing.T) {
	tree := Build(nil)
	chain := tree.ContainingChain(5)
	if len(chain) != 0 {
		t.Fatalf("expected empty chain outside any region, got %v", chain)
	}
}
