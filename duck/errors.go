package duck

import "duckproxy/internal/diagnostic"

// Sentinel errors. A *BindingError matches, through errors.Is, every
// sentinel whose code appears among its diagnostics.
var (
	ErrUnresolvedMember       = diagnostic.ErrUnresolvedMember
	ErrAmbiguousMember        = diagnostic.ErrAmbiguousMember
	ErrInvalidShape           = diagnostic.ErrInvalidShape
	ErrSynthesisInconsistency = diagnostic.ErrSynthesisInconsistency
	ErrNilInstance            = diagnostic.ErrNilInstance
	ErrReadOnlyMember         = diagnostic.ErrReadOnlyMember
	ErrNotImplemented         = diagnostic.ErrNotImplemented
)

// BindingError reports every failed member of one shape/target pair.
type BindingError = diagnostic.BindingError

// Diagnostic is one entry of a BindingError.
type Diagnostic = diagnostic.Diagnostic

// Diagnostic codes.
const (
	CodeUnresolved  = diagnostic.CodeUnresolved
	CodeAmbiguous   = diagnostic.CodeAmbiguous
	CodeInvalid     = diagnostic.CodeInvalid
	CodeChainFailed = diagnostic.CodeChainFailed
	CodeSynthesis   = diagnostic.CodeSynthesis
	CodeNarrowing   = diagnostic.CodeNarrowing
)
