package diag

import (
	"fmt"

	"ilcore/internal/source"
)

// Kind is the closed set of error categories a well-behaved pipeline stage
// can raise, matching the four failure modes the importer and passes
// distinguish: malformed input, a stack-typing violation, a feature the
// frontend does not model, and a self-consistency check failing after IR
// has already been built.
type Kind uint8

const (
	InvalidInput Kind = iota
	StackMismatch
	UnsupportedConstruct
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case StackMismatch:
		return "stack mismatch"
	case UnsupportedConstruct:
		return "unsupported construct"
	case InvariantViolation:
		return "invariant violation"
	default:
		return "unknown"
	}
}

// Error is a typed, wrapped error carrying the offending offset and a diag
// Code so a caller can either match on Kind (errors.As) or render it as a
// Diagnostic without re-deriving the span.
type Error struct {
	Kind    Kind
	Code    Code
	At      source.Span
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.At, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.At, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Diagnostic renders the error as a SevError diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	return NewError(e.Code, e.At, e.Message)
}

// Newf constructs a Kind-tagged error at the given span.
func Newf(kind Kind, code Code, at source.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, At: at, Message: fmt.Sprintf(format, args...)}
}

// Wrapf constructs a Kind-tagged error wrapping an underlying cause.
func Wrapf(kind Kind, code Code, at source.Span, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, At: at, Message: fmt.Sprintf(format, args...), Wrapped: cause}
}
