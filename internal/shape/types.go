package shape

import (
	"reflect"
	"strings"

	"duckproxy/internal/common"
)

// Kind distinguishes live-forwarding shapes from snapshot shapes.
type Kind int

const (
	// KindProxy shapes forward every access to the wrapped instance.
	KindProxy Kind = iota + 1
	// KindCopy shapes read every member once, at construction.
	KindCopy
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindProxy:
		return "proxy"
	case KindCopy:
		return "copy"
	default:
		return common.UnknownStr
	}
}

// MemberKind is the kind of a single shape requirement.
type MemberKind int

const (
	// MemberMethod is a func-typed field forwarding to a method.
	MemberMethod MemberKind = iota + 1
	// MemberProperty is a value read (and optionally written) through
	// accessor methods or a field.
	MemberProperty
	// MemberField is a property bound to a target field by literal name.
	MemberField
	// MemberIndexer is a keyed accessor.
	MemberIndexer
)

// String returns a human-readable member kind name.
func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberField:
		return "field"
	case MemberIndexer:
		return "indexer"
	default:
		return common.UnknownStr
	}
}

// Shape describes a shape struct type after its tags have been parsed.
// A Shape is immutable once returned by Parse.
type Shape struct {
	// Type is the shape struct type.
	Type reflect.Type
	// Kind is proxy or copy.
	Kind Kind
	// Markers are the index paths of every embedded marker (one per
	// embedded shape contributing members, plus the shape's own).
	Markers [][]int
	// Members lists the requirements in declaration order, embedded
	// shapes expanded in place.
	Members []Requirement
}

// Name returns the shape type name used in diagnostics.
func (s *Shape) Name() string {
	return s.Type.String()
}

// Requirement is one member a target type must provide.
type Requirement struct {
	// Name is the shape field name.
	Name string
	// TargetName is the member name looked up on the target.
	TargetName string
	// Kind of the requirement.
	Kind MemberKind
	// Index is the field index path inside the shape struct.
	Index []int
	// Type is the declared shape field type.
	Type reflect.Type
	// Func is the call signature for methods, and the getter signature
	// of properties and indexers.
	Func reflect.Type
	// Value is the value type of properties, fields and indexers.
	Value reflect.Type
	// Key is the indexer key type.
	Key reflect.Type

	ReadOnly bool
	Optional bool
	Include  bool
	// Generic is the number of leading reflect.Type parameters forwarded
	// unchanged to the target.
	Generic int
	// Out lists output-only pointer parameter positions.
	Out []int

	// Nested is set when the value type is itself a shape.
	Nested *Nested
}

// Nested records a chained requirement.
type Nested struct {
	// Shape is the nested shape struct type.
	Shape reflect.Type
	// Pointer is true when the requirement holds *Shape.
	Pointer bool
}

// Type returns the type the requirement holds (Shape or *Shape).
func (n *Nested) Type() reflect.Type {
	if n.Pointer {
		return reflect.PointerTo(n.Shape)
	}

	return n.Shape
}

// IsOut reports whether parameter i is output-only.
func (r *Requirement) IsOut(i int) bool {
	for _, o := range r.Out {
		if o == i {
			return true
		}
	}

	return false
}

// Writable reports whether the requirement needs a setter.
func (r *Requirement) Writable() bool {
	switch r.Kind {
	case MemberProperty, MemberField, MemberIndexer:
		return !r.ReadOnly
	default:
		return false
	}
}

// Signature renders the requirement for diagnostics and plan reports.
func (r *Requirement) Signature() string {
	var b strings.Builder

	b.WriteString(r.Kind.String())
	b.WriteString(" ")
	b.WriteString(r.TargetName)

	switch r.Kind {
	case MemberMethod:
		b.WriteString(strings.TrimPrefix(r.Func.String(), "func"))
	case MemberIndexer:
		b.WriteString("[" + r.Key.String() + "] " + r.Value.String())
	default:
		b.WriteString(" " + r.Value.String())
	}

	return b.String()
}
