package target

import (
	"fmt"
	"reflect"
	"unsafe"

	"duckproxy/internal/diagnostic"
)

// Root returns the value methods are called on and the addressable struct
// fields are read from. A pointer instance is used as is; a struct value is
// copied first, so writes through fields stay on the copy.
func Root(instance reflect.Value) (recv, fields reflect.Value, err error) {
	switch instance.Kind() {
	case reflect.Ptr:
		if instance.IsNil() {
			return reflect.Value{}, reflect.Value{}, diagnostic.ErrNilInstance
		}

		if instance.Elem().Kind() == reflect.Struct {
			return instance, instance.Elem(), nil
		}

		return instance, reflect.Value{}, nil
	case reflect.Struct:
		cp := reflect.New(instance.Type()).Elem()
		cp.Set(instance)

		return cp, cp, nil
	default:
		return instance, reflect.Value{}, nil
	}
}

// FieldValue returns the settable value of f inside the addressable struct
// root. Unexported fields are reached through unsafe unless publicOnly is set.
func FieldValue(root reflect.Value, f Field, publicOnly bool) (reflect.Value, error) {
	if !root.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: no struct to read field %s from", diagnostic.ErrNilInstance, f.Name)
	}

	v := root
	for _, i := range f.Index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: nil embedded pointer on the path to field %s", diagnostic.ErrNilInstance, f.Name)
			}

			v = v.Elem()
		}

		v = v.Field(i)
	}

	if v.CanSet() {
		return v, nil
	}

	if publicOnly || !v.CanAddr() {
		return reflect.Value{}, fmt.Errorf("field %s of %s is not accessible", f.Name, root.Type())
	}

	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
}
