// Package errs defines the error taxonomy shared by the integration engine.
//
// Every failure surfaced by the engine is either a store error (returned
// wrapped with fmt.Errorf) or an *Error carrying one of four kinds. Callers
// classify with the IsX helpers, which see through wrapping.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an engine error.
type Kind int

const (
	// KindUnknown is the zero value and never produced by the engine.
	KindUnknown Kind = iota
	// KindInvalidInput means a required identifier was empty or absent.
	KindInvalidInput
	// KindValidation means a referenced entity failed a structural,
	// ownership or compatibility check.
	KindValidation
	// KindConformance means a named governance or process rule was violated.
	KindConformance
	// KindConcurrentModification means a batched integration failed its
	// pre-check or its sequential application phase.
	KindConcurrentModification
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindValidation:
		return "validation"
	case KindConformance:
		return "conformance"
	case KindConcurrentModification:
		return "concurrent modification"
	default:
		return "unknown"
	}
}

// Error is a classified engine error.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "apply_patch".
	Op string
	// Subject identifies the entity involved: an IRI, a step order, a rule.
	Subject string
	// Detail is the human readable reason.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(" error")
	if e.Op != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.Op)
	}
	if e.Subject != "" {
		fmt.Fprintf(&sb, " [%s]", e.Subject)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(op, detail string) error {
	return &Error{Kind: KindInvalidInput, Op: op, Detail: detail}
}

// Validation builds a KindValidation error.
func Validation(op, subject, detail string) error {
	return &Error{Kind: KindValidation, Op: op, Subject: subject, Detail: detail}
}

// Validationf builds a KindValidation error with a formatted detail.
func Validationf(op, subject, format string, args ...any) error {
	return Validation(op, subject, fmt.Sprintf(format, args...))
}

// Conformance builds a KindConformance error.
func Conformance(op, subject, detail string) error {
	return &Error{Kind: KindConformance, Op: op, Subject: subject, Detail: detail}
}

// Conformancef builds a KindConformance error with a formatted detail.
func Conformancef(op, subject, format string, args ...any) error {
	return Conformance(op, subject, fmt.Sprintf(format, args...))
}

// ConcurrentModification builds a KindConcurrentModification error.
func ConcurrentModification(op, subject, detail string, cause error) error {
	return &Error{Kind: KindConcurrentModification, Op: op, Subject: subject, Detail: detail, Err: cause}
}

// Wrap attaches a kind to an existing error, keeping it reachable via errors.Is/As.
func Wrap(kind Kind, op, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsInvalidInput reports whether err is an invalid-input error.
func IsInvalidInput(err error) bool { return hasKind(err, KindInvalidInput) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsConformance reports whether err is a conformance error.
func IsConformance(err error) bool { return hasKind(err, KindConformance) }

// IsConcurrentModification reports whether err is a concurrent-modification error.
func IsConcurrentModification(err error) bool { return hasKind(err, KindConcurrentModification) }

// hasKind walks the whole chain so an outer wrapper does not hide an inner kind.
func hasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
