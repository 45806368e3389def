package plan

import (
	"fmt"
	"reflect"
	"strings"

	"duckproxy/internal/common"
	"duckproxy/internal/diagnostic"
	"duckproxy/internal/match"
	"duckproxy/internal/shape"
	"duckproxy/internal/target"
)

// Key identifies a (shape, target type) pair.
type Key struct {
	Shape  reflect.Type
	Target reflect.Type
}

// String renders the pair as "Shape<-Target".
func (k Key) String() string {
	return typeName(k.Shape) + "<-" + typeName(k.Target)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// Plan is the binding plan of one pair: one Binding per shape requirement,
// or the diagnostics explaining why the pair cannot be bound.
// A Plan is immutable once returned by the resolver.
type Plan struct {
	Key

	// Shape is nil when the shape itself is malformed.
	Shape *shape.Shape
	Table *target.Table
	// Bindings follow the order of Shape.Members.
	Bindings    []Binding
	Diagnostics diagnostic.Diagnostics
}

// Ok reports whether every requirement was bound.
func (p *Plan) Ok() bool {
	return p.Diagnostics.IsValid()
}

// Err returns the *diagnostic.BindingError of a failed plan, or nil.
func (p *Plan) Err() error {
	return p.Diagnostics.Err(p.Key.String())
}

// BindingKind is how a requirement is served by the target.
type BindingKind int

const (
	// BindMethod calls a target method.
	BindMethod BindingKind = iota + 1
	// BindFuncField calls the func value stored in a target field.
	BindFuncField
	// BindAccessors reads through a getter method and writes through a
	// Set-prefixed setter method.
	BindAccessors
	// BindField reads and writes a target field.
	BindField
	// BindIndexMethods serves an indexer through keyed getter/setter methods.
	BindIndexMethods
	// BindIndexField serves an indexer from a map, slice or array field.
	BindIndexField
	// BindDefault serves an optional requirement the target lacks.
	BindDefault
	// BindFiltered serves String/GoString by formatting the target.
	BindFiltered
)

// String returns a human-readable binding kind.
func (k BindingKind) String() string {
	switch k {
	case BindMethod:
		return "method"
	case BindFuncField:
		return "func_field"
	case BindAccessors:
		return "accessors"
	case BindField:
		return "field"
	case BindIndexMethods:
		return "index_methods"
	case BindIndexField:
		return "index_field"
	case BindDefault:
		return "default"
	case BindFiltered:
		return "filtered"
	default:
		return common.UnknownStr
	}
}

// Binding is one resolved requirement.
type Binding struct {
	Requirement shape.Requirement
	Kind        BindingKind

	// Method is the called method, getter or keyed getter.
	Method *target.Method
	// Setter is the setter method of a writable accessor binding.
	Setter *target.Method
	// Field is the bound field of field, func-field and index-field bindings.
	Field *target.Field

	// Compatibility is the weakest type compatibility across the member.
	Compatibility match.TypeCompatibility
	// Nested is set for chained requirements.
	Nested *NestedBinding
	// Explanation describes why this candidate was chosen.
	Explanation string
}

// Target renders the bound target member.
func (b *Binding) Target() string {
	switch {
	case b.Method != nil && b.Setter != nil:
		return fmt.Sprintf("method %s%s / %s%s", b.Method.Name, funcSuffix(b.Method.Type), b.Setter.Name, funcSuffix(b.Setter.Type))
	case b.Method != nil:
		return "method " + b.Method.Name + funcSuffix(b.Method.Type)
	case b.Field != nil:
		return "field " + fieldLabel(*b.Field)
	default:
		return ""
	}
}

func funcSuffix(t reflect.Type) string {
	return strings.TrimPrefix(t.String(), "func")
}

func fieldLabel(f target.Field) string {
	label := f.Name + " " + f.Type.String()
	if f.Depth > 0 {
		label += fmt.Sprintf(" (depth %d)", f.Depth)
	}

	return label
}

// NestedBinding describes a chained requirement. The nested adapter is
// built on first access.
type NestedBinding struct {
	// Shape is the nested shape struct type.
	Shape reflect.Type
	// Pointer is true when the requirement holds *Shape.
	Pointer bool
	// Static is the static type of the target member's value.
	Static reflect.Type
	// Deferred is true when Static is an interface: the pair is resolved
	// against the dynamic type at access time.
	Deferred bool
}

// Key returns the nested pair for a non-deferred chain.
func (n *NestedBinding) Key() Key {
	return Key{Shape: n.Shape, Target: n.Static}
}
