package match

import (
	"fmt"
	"reflect"

	"duckproxy/internal/common"
)

// TypeCompatibility represents the level of compatibility between two types
// when a value flows from a source type into a target type.
type TypeCompatibility int

const (
	// TypeIncompatible means no value of the source type can be used as the target.
	TypeIncompatible TypeCompatibility = iota
	// TypeNarrowing means the source is an interface whose dynamic value must be
	// asserted to the target type at call time; the assertion may fail.
	TypeNarrowing
	// TypeWidening means a lossless conversion exists (numeric widening or a
	// named type over the same underlying kind).
	TypeWidening
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictAssignable   = "assignable"
	VerdictWidening     = "widening"
	VerdictNarrowing    = "narrowing"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeWidening:
		return VerdictWidening
	case TypeNarrowing:
		return VerdictNarrowing
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string // String representation of source type
	TargetType    string // String representation of target type
}

// Ok reports whether the result allows binding at all.
func (r TypeCompatibilityResult) Ok() bool {
	return r.Compatibility > TypeIncompatible
}

func result(c TypeCompatibility, reason string, source, target reflect.Type) TypeCompatibilityResult {
	return TypeCompatibilityResult{
		Compatibility: c,
		Reason:        reason,
		SourceType:    typeString(source),
		TargetType:    typeString(target),
	}
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// ScoreTypeCompatibility determines how a value of type source can be used
// where type target is expected.
func ScoreTypeCompatibility(source, target reflect.Type) TypeCompatibilityResult {
	if source == nil || target == nil {
		return result(TypeIncompatible, "type information unavailable", source, target)
	}

	if source == target {
		return result(TypeIdentical, "types are identical", source, target)
	}

	if source.AssignableTo(target) {
		return result(TypeAssignable, "source is assignable to target", source, target)
	}

	if isWidening(source, target) {
		return result(TypeWidening, "source widens to target without loss", source, target)
	}

	if source.Kind() == reflect.Interface {
		if target.Kind() == reflect.Interface || target.Implements(source) {
			return result(TypeNarrowing, "requires a type assertion at call time", source, target)
		}
	}

	return result(TypeIncompatible, "types are not compatible", source, target)
}

func isWidening(source, target reflect.Type) bool {
	sk, tk := FromReflectType(source), FromReflectType(target)
	if sk != 0 || tk != 0 {
		return sk.Widens(tk)
	}

	// Same non-numeric kind and convertible: named types over the same
	// underlying representation (type Name string, type Tags []string).
	return source.Kind() == target.Kind() &&
		source.Kind() != reflect.Interface &&
		source.ConvertibleTo(target)
}

// ScoreByRef scores a pointer parameter pair. Values flow both ways for a
// by-reference parameter and only from target to requirement for an
// output-only one.
func ScoreByRef(required, target reflect.Type, outOnly bool) TypeCompatibilityResult {
	if required.Kind() != reflect.Ptr || target.Kind() != reflect.Ptr {
		if required.Kind() == reflect.Ptr {
			return result(TypeIncompatible, "by-reference parameter cannot bind a by-value parameter", required, target)
		}

		return result(TypeIncompatible, "by-value parameter cannot bind a by-reference parameter", required, target)
	}

	if required == target {
		return result(TypeIdentical, "types are identical", required, target)
	}

	back := ScoreTypeCompatibility(target.Elem(), required.Elem())
	if back.Compatibility < TypeWidening {
		return result(TypeIncompatible, "referenced value cannot be copied back: "+back.Reason, required, target)
	}

	if outOnly {
		return result(TypeWidening, "output copied back after the call", required, target)
	}

	in := ScoreTypeCompatibility(required.Elem(), target.Elem())
	if in.Compatibility < TypeWidening {
		return result(TypeIncompatible, "referenced value cannot be copied in: "+in.Reason, required, target)
	}

	return result(TypeWidening, "referenced value copied in and back", required, target)
}

// ScoreParam scores passing a required parameter to a target parameter.
// Two pointers are a by-reference pair; everything else is passed by value.
func ScoreParam(required, target reflect.Type, outOnly bool) TypeCompatibilityResult {
	if required.Kind() == reflect.Ptr && target.Kind() == reflect.Ptr {
		return ScoreByRef(required, target, outOnly)
	}

	if outOnly {
		return result(TypeIncompatible, "output parameter must be a pointer on both sides", required, target)
	}

	return ScoreTypeCompatibility(required, target)
}

// Converter turns a value of one type into a value of another.
type Converter func(reflect.Value) (reflect.Value, error)

// NewConverter compiles the conversion from source to target once so that
// calls only pay for the conversion itself.
func NewConverter(source, target reflect.Type) (Converter, TypeCompatibilityResult) {
	res := ScoreTypeCompatibility(source, target)

	switch res.Compatibility {
	case TypeIdentical:
		return identity, res
	case TypeAssignable:
		if target.Kind() != reflect.Interface {
			return identity, res
		}

		return func(v reflect.Value) (reflect.Value, error) {
			out := reflect.New(target).Elem()
			if v.IsValid() {
				out.Set(v)
			}

			return out, nil
		}, res
	case TypeWidening:
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(target), nil
		}, res
	case TypeNarrowing:
		return func(v reflect.Value) (reflect.Value, error) {
			return Narrow(v, target)
		}, res
	default:
		return nil, res
	}
}

// Narrow asserts the dynamic value held by the interface value v to target.
// A nil interface yields the zero value of target.
func Narrow(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(target), nil
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return reflect.Zero(target), nil
	}

	if v.Type().AssignableTo(target) {
		out := reflect.New(target).Elem()
		out.Set(v)

		return out, nil
	}

	if isWidening(v.Type(), target) {
		return v.Convert(target), nil
	}

	return reflect.Value{}, fmt.Errorf("value of type %s is not a %s", v.Type(), target)
}

func identity(v reflect.Value) (reflect.Value, error) {
	return v, nil
}

// IsErrorType reports whether t is the built-in error interface.
func IsErrorType(t reflect.Type) bool {
	return t == errorType
}

var errorType = reflect.TypeFor[error]()
