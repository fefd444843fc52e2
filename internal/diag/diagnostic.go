package diag

import (
	"ilcore/internal/source"
)

// Note points at a secondary span relevant to a diagnostic (e.g. the
// definition site referenced by a StackMismatch on its use).
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit describes a single suggested rewrite of a span, for lint-level
// diagnostics that have a concrete remediation (unused-block removal,
// dead-store elision).
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix bundles a set of edits under one human-readable title.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is a fully-formed report: what kind of problem, how severe,
// where in the method body, and optionally what would fix it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// WithFixSuggestion appends a pre-built Fix to the diagnostic.
func (d Diagnostic) WithFixSuggestion(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}
