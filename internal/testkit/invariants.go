// Package testkit collects invariant checkers shared by every package's
// tests: SSA well-formedness, Forest leaf/root consistency, and the
// bounded-iteration guarantee opt's passes promise. None of this runs in
// production; it exists so a table-driven test can assert "the body is
// still well-formed after this rewrite" in one line instead of
// reimplementing the walk in every _test.go file.
package testkit

import (
	"fmt"

	"ilcore/internal/forest"
	"ilcore/internal/ir"
)

// TestingT is the subset of *testing.T the checkers in this package need,
// so they can also run from a table-driven subtest's t.Run callback without
// pulling in the testing package itself.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// AssertValid fails t if f.Validate() reports any error.
func AssertValid(t TestingT, f *ir.MethodBody) {
	t.Helper()
	if err := f.Validate(); err != nil {
		t.Fatalf("method body failed validation: %v", err)
	}
}

// CountUses walks every operand in f and returns the true use count of
// value, independent of the cached TrackedValue.NumUses field. Tests use
// this to catch a NumUses bookkeeping bug that Validate's own use-list
// walk might share a blind spot with.
func CountUses(f *ir.MethodBody, value ir.ValueID) int {
	n := 0
	for _, id := range f.BlockIDs() {
		for _, instID := range f.Instructions(id) {
			for _, opID := range f.Inst(instID).Operands {
				if f.OperandValue(opID) == value {
					n++
				}
			}
		}
	}
	return n
}

// AssertNoUses fails t if value still has any recorded use, the condition
// DCE's dead-instruction sweep must establish before it calls f.Remove.
func AssertNoUses(t TestingT, f *ir.MethodBody, value ir.ValueID) {
	t.Helper()
	if f.HasUses(value) {
		t.Fatalf("value %d still has uses", value)
	}
	if n := CountUses(f, value); n != 0 {
		t.Fatalf("value %d has %d uses by direct operand scan despite HasUses reporting none", value, n)
	}
}

// Unreachable returns every block ID in f that cannot be reached from
// f.Entry by following Succs edges.
func Unreachable(f *ir.MethodBody) []ir.BlockID {
	seen := map[ir.BlockID]bool{f.Entry: true}
	worklist := []ir.BlockID{f.Entry}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, succ := range f.Block(id).Succs {
			if !seen[succ] {
				seen[succ] = true
				worklist = append(worklist, succ)
			}
		}
	}
	var out []ir.BlockID
	for _, id := range f.BlockIDs() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// AssertReachable fails t if not every block in f is reachable from
// f.Entry, the property SimplifyCFG's unreachable-block removal is
// supposed to leave true of its own output.
func AssertReachable(t TestingT, f *ir.MethodBody) {
	t.Helper()
	if unreached := Unreachable(f); len(unreached) != 0 {
		t.Fatalf("unreachable blocks remain: %v", unreached)
	}
}

// AssertPhiArityMatchesPreds fails t if any phi in f carries a different
// number of incoming values than its block has predecessors, independent
// of f.Validate (which stops at the first violation instead of naming
// every offending phi).
func AssertPhiArityMatchesPreds(t TestingT, f *ir.MethodBody) {
	t.Helper()
	for _, blockID := range f.BlockIDs() {
		blk := f.Block(blockID)
		for _, instID := range f.Instructions(blockID) {
			inst := f.Inst(instID)
			if inst.Kind != ir.InstPhi {
				continue
			}
			if len(inst.Targets) != len(blk.Preds) {
				t.Fatalf("phi %d in block %d has %d incoming values, block has %d preds",
					instID, blockID, len(inst.Targets), len(blk.Preds))
			}
		}
	}
}

// AssertForestLeafInvariants fails t if info disagrees with the
// definition Forest promises: every use of a leaf is in the block it was
// defined in, and none of those uses is a phi. A leaf with more than one
// use must also be a rematerialize-whitelisted kind.
func AssertForestLeafInvariants(t TestingT, f *ir.MethodBody, info *forest.Info) {
	t.Helper()
	for _, blockID := range f.BlockIDs() {
		for _, instID := range f.Instructions(blockID) {
			inst := f.Inst(instID)
			if !inst.HasResult() || !info.IsLeaf(instID) {
				continue
			}
			v := f.Value(inst.Result)
			if v.NumUses == 0 {
				t.Fatalf("instruction %d classified as leaf but has no uses", instID)
			}
			for _, use := range f.Uses(inst.Result) {
				user := f.Inst(f.OperandUser(use))
				if user.Block != blockID {
					t.Fatalf("instruction %d classified as leaf but a use escapes block %d into %d", instID, blockID, user.Block)
				}
				if user.Kind == ir.InstPhi {
					t.Fatalf("instruction %d classified as leaf but one of its uses is a phi", instID)
				}
			}
		}
	}
}

// RunUntilStable runs pass repeatedly until it reports zero changes or
// maxIters is reached, returning the total number of changes made and an
// error if the cap was hit without converging. Tests use this to assert a
// pass converges well inside opt's documented iteration cap, then call
// pass once more and require zero changes to confirm idempotency.
func RunUntilStable(pass func() (int, error), maxIters int) (int, error) {
	total := 0
	for i := 0; i < maxIters; i++ {
		n, err := pass()
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			return total, nil
		}
	}
	return total, fmt.Errorf("testkit: pass did not converge within %d iterations", maxIters)
}
