package match

import (
	"math"
	"reflect"
)

//go:generate go tool stringer -type=NumericKind -output=kind_string.go

// NumericKind classifies the underlying numeric representation of a type.
type NumericKind int

const (
	_ NumericKind = iota // zero value marks a non-numeric type

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUintptr
	KindFloat32
	KindFloat64
)

func (k NumericKind) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64, KindUintptr:
		return true
	}
}

func (k NumericKind) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k NumericKind) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64, KindUintptr:
		return true
	}
}

func (k NumericKind) Bits() int {
	switch k {
	default:
		panic("only numeric kinds have a meaningful bit size, but requested for: " + k.String())
	case KindInt, KindUint, KindUintptr:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
}

// FromReflectType returns the numeric kind of t's underlying type, or 0.
func FromReflectType(t reflect.Type) NumericKind {
	if t == nil {
		return 0
	}

	switch t.Kind() {
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Uintptr:
		return KindUintptr
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	default:
		return 0
	}
}

// Widens reports whether every value of kind k is exactly representable in kind to.
func (k NumericKind) Widens(to NumericKind) bool {
	if k == 0 || to == 0 {
		return false
	}

	if k == to {
		return true
	}

	switch {
	case k.IsSigned() && to.IsSigned():
		return k.Bits() <= to.Bits()
	case k.IsUnsigned() && to.IsUnsigned():
		return k.Bits() <= to.Bits()
	case k.IsUnsigned() && to.IsSigned():
		return k.Bits() < to.Bits()
	case k.IsInteger() && to == KindFloat32:
		return k.Bits() <= 16
	case k.IsInteger() && to == KindFloat64:
		return k.Bits() <= 32
	case k == KindFloat32 && to == KindFloat64:
		return true
	default:
		return false
	}
}
