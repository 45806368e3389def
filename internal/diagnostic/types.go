package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"duckproxy/internal/common"
)

// Sentinel errors. Use errors.Is to match; a *BindingError matches every
// sentinel whose code appears among its diagnostics.
var (
	ErrUnresolvedMember       = errors.New("duck: unresolved member")
	ErrAmbiguousMember        = errors.New("duck: ambiguous member")
	ErrInvalidShape           = errors.New("duck: invalid shape")
	ErrSynthesisInconsistency = errors.New("duck: synthesis inconsistency")
	ErrNilInstance            = errors.New("duck: nil instance")
	ErrReadOnlyMember         = errors.New("duck: member is read-only")
	ErrNotImplemented         = errors.New("duck: member not implemented by target")
)

// Diagnostic codes.
const (
	CodeUnresolved  = "unresolved_member"
	CodeAmbiguous   = "ambiguous_member"
	CodeInvalid     = "invalid_shape"
	CodeChainFailed = "chain_failed"
	CodeSynthesis   = "synthesis_inconsistency"
	CodeOptional    = "optional_default"
	CodeFiltered    = "filtered_default"
	CodeNarrowing   = "narrowing_binding"
)

// Diagnostics holds all diagnostic information from resolution.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// TypePair identifies the shape and target pair ("Shape<-Target").
	TypePair string
	// Member identifies the shape member this relates to (if any).
	Member string
	// Suggestions are the closest or competing candidates.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typePair, member string, suggestions ...string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:    DiagnosticError,
		Code:        code,
		Message:     message,
		TypePair:    typePair,
		Member:      member,
		Suggestions: suggestions,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typePair, member string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		TypePair: typePair,
		Member:   member,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typePair, member string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		TypePair: typePair,
		Member:   member,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Err returns a *BindingError holding all error diagnostics, or nil if valid.
func (d *Diagnostics) Err(typePair string) error {
	if d.IsValid() {
		return nil
	}

	return &BindingError{TypePair: typePair, Errors: d.Errors}
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.TypePair != "" {
		prefix = append(prefix, "["+d.TypePair+"]")
	}

	if d.Member != "" {
		prefix = append(prefix, d.Member)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (candidates: " + strings.Join(d.Suggestions, ", ") + ")"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// BindingError is returned when a shape cannot be bound to a target type.
// It enumerates every failed member of the pair.
type BindingError struct {
	TypePair string
	Errors   []Diagnostic
}

// Error implements error.
func (e *BindingError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		d.TypePair = ""
		parts = append(parts, d.String())
	}

	return fmt.Sprintf("duck: cannot bind %s: %s", e.TypePair, strings.Join(parts, "; "))
}

// Is reports whether target is the sentinel of one of the carried codes.
func (e *BindingError) Is(target error) bool {
	for _, d := range e.Errors {
		if sentinelFor(d.Code) == target {
			return true
		}
	}

	return false
}

// Has reports whether the error carries a diagnostic with the given code.
func (e *BindingError) Has(code string) bool {
	for _, d := range e.Errors {
		if d.Code == code {
			return true
		}
	}

	return false
}

// Members returns the names of the failed members in report order.
func (e *BindingError) Members() []string {
	names := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		names = append(names, d.Member)
	}

	return names
}

func sentinelFor(code string) error {
	switch code {
	case CodeUnresolved, CodeChainFailed:
		return ErrUnresolvedMember
	case CodeAmbiguous:
		return ErrAmbiguousMember
	case CodeInvalid:
		return ErrInvalidShape
	case CodeSynthesis:
		return ErrSynthesisInconsistency
	default:
		return nil
	}
}
