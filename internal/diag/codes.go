package diag

import "fmt"

// Code identifies a diagnostic's kind, independent of its severity. Codes
// group by the four error kinds a well-formed pipeline can raise, plus a
// block of lint-level codes for non-fatal observations passes may want to
// surface (e.g. Forest declining to hoist a leaf, DCE hitting its phi-peel
// iteration cap).
type Code uint16

const (
	Unknown Code = 0

	// InvalidInput: the bytecode stream itself is malformed independent of
	// any stack-typing question (truncated instruction, out-of-range
	// branch target, exception region referencing an unknown handler).
	InvalidInputTruncated       Code = 1000
	InvalidInputBadBranchTarget Code = 1001
	InvalidInputBadRegion       Code = 1002
	InvalidInputBadToken        Code = 1003

	// StackMismatch: the bytecode is well-formed but violates the
	// evaluation-stack typing discipline (underflow, a merge point with
	// disagreeing stack depth or type, a non-empty stack falling through
	// the end of a method).
	StackMismatchUnderflow    Code = 2000
	StackMismatchDepth        Code = 2001
	StackMismatchType         Code = 2002
	StackMismatchFallThrough  Code = 2003
	StackMismatchGuardNonEmpty Code = 2004

	// UnsupportedConstruct: the input is valid but uses a feature this
	// core's frontend does not model.
	UnsupportedConstructOpcode    Code = 3000
	UnsupportedConstructCallConv  Code = 3001
	UnsupportedConstructExnFilter Code = 3002

	// InvariantViolation: an internal consistency check failed after the
	// importer produced IR — a bug in the core, not the input.
	InvariantViolationUseList  Code = 4000
	InvariantViolationCFG      Code = 4001
	InvariantViolationPhiArity Code = 4002

	// Lint: non-fatal observations a pass may want visible without
	// failing the pipeline.
	LintForestHazard  Code = 5000
	LintDCEIterCap    Code = 5001
	LintSimplifyCFGCap Code = 5002
)

func (c Code) String() string {
	switch {
	case c == Unknown:
		return "unknown"
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("invalid-input-%d", c)
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("stack-mismatch-%d", c)
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("unsupported-construct-%d", c)
	case c >= 4000 && c < 5000:
		return fmt.Sprintf("invariant-violation-%d", c)
	case c >= 5000:
		return fmt.Sprintf("lint-%d", c)
	default:
		return fmt.Sprintf("code-%d", uint16(c))
	}
}
