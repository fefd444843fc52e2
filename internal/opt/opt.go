// Package opt implements the two passes the core ships: dead-code
// elimination and CFG simplification. Both operate in place on a
// *ir.MethodBody and report how many edits they made so a driver can
// iterate to a fixpoint; neither ever partially applies an edit — a pass
// either commits a rewrite or leaves the instruction alone.
package opt

// Options tunes the iteration caps the two passes use to guarantee
// termination. The zero value is not usable; call DefaultOptions.
type Options struct {
	// MaxPhiPeelIters bounds DCE's trivial-phi-peeling loop: peeling one
	// phi can make another phi trivial (a chain of phis all resolving to
	// the same incoming value), so the sweep repeats until nothing more
	// peels or this cap is hit.
	MaxPhiPeelIters int

	// MaxFixpointIters bounds RunToFixpoint's outer DCE/SimplifyCFG
	// alternation, and separately bounds SimplifyCFG's own internal
	// iterate-until-stable loop. spec.md requires only that the bound be
	// linear in block count; a caller with an unusually large method body
	// should scale this up rather than rely on the default.
	MaxFixpointIters int
}

// DefaultOptions returns caps generous enough for any method body this
// core is expected to see (bytecode methods are bounded in size by the
// container format itself) while still being a hard, documented limit
// rather than "iterate forever".
func DefaultOptions() Options {
	return Options{
		MaxPhiPeelIters:  64,
		MaxFixpointIters: 64,
	}
}

// Result reports what one call into this package changed, so a caller
// can log a trace event or decide whether to re-run dependent analyses
// (Forest's classification is invalidated by any DCE or SimplifyCFG edit
// that touches the block it was computed over).
type Result struct {
	BlocksRemoved  int
	InstrsRemoved  int
	PhisPeeled     int
	BranchesFolded int
	BlocksMerged   int
}

// Changed reports whether this Result recorded any edit at all.
func (r Result) Changed() bool {
	return r.BlocksRemoved+r.InstrsRemoved+r.PhisPeeled+r.BranchesFolded+r.BlocksMerged > 0
}

func (r *Result) merge(other Result) {
	r.BlocksRemoved += other.BlocksRemoved
	r.InstrsRemoved += other.InstrsRemoved
	r.PhisPeeled += other.PhisPeeled
	r.BranchesFolded += other.BranchesFolded
	r.BlocksMerged += other.BlocksMerged
}
