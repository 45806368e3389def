package match

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status int

type label string

func TestScoreTypeCompatibility(t *testing.T) {
	tests := []struct {
		name   string
		source reflect.Type
		target reflect.Type
		want   TypeCompatibility
	}{
		{"identical", reflect.TypeFor[int](), reflect.TypeFor[int](), TypeIdentical},
		{"concrete to interface", reflect.TypeFor[*strings.Reader](), reflect.TypeFor[io.Reader](), TypeAssignable},
		{"int32 to int64", reflect.TypeFor[int32](), reflect.TypeFor[int64](), TypeWidening},
		{"uint8 to int16", reflect.TypeFor[uint8](), reflect.TypeFor[int16](), TypeWidening},
		{"int32 to float64", reflect.TypeFor[int32](), reflect.TypeFor[float64](), TypeWidening},
		{"float32 to float64", reflect.TypeFor[float32](), reflect.TypeFor[float64](), TypeWidening},
		{"named int to int", reflect.TypeFor[status](), reflect.TypeFor[int](), TypeWidening},
		{"named string to string", reflect.TypeFor[label](), reflect.TypeFor[string](), TypeWidening},
		{"any to string", reflect.TypeFor[any](), reflect.TypeFor[string](), TypeNarrowing},
		{"reader to writer", reflect.TypeFor[io.Reader](), reflect.TypeFor[io.Writer](), TypeNarrowing},
		{"int64 to int32", reflect.TypeFor[int64](), reflect.TypeFor[int32](), TypeIncompatible},
		{"int64 to float64", reflect.TypeFor[int64](), reflect.TypeFor[float64](), TypeIncompatible},
		{"int to uint", reflect.TypeFor[int](), reflect.TypeFor[uint](), TypeIncompatible},
		{"int to string", reflect.TypeFor[int](), reflect.TypeFor[string](), TypeIncompatible},
		{"reader to int", reflect.TypeFor[io.Reader](), reflect.TypeFor[int](), TypeIncompatible},
		{"nil", nil, reflect.TypeFor[int](), TypeIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTypeCompatibility(tt.source, tt.target)
			assert.Equal(t, tt.want, got.Compatibility, got.Reason)
		})
	}
}

func TestScoreByRef(t *testing.T) {
	pInt := reflect.TypeFor[*int]()
	pInt32 := reflect.TypeFor[*int32]()
	pInt64 := reflect.TypeFor[*int64]()
	pStatus := reflect.TypeFor[*status]()

	assert.Equal(t, TypeIdentical, ScoreByRef(pInt, pInt, false).Compatibility)
	// by-ref needs both directions; int <-> status share the underlying kind
	assert.Equal(t, TypeWidening, ScoreByRef(pInt, pStatus, false).Compatibility)
	// int32 -> int64 widens in, but int64 -> int32 does not come back
	assert.Equal(t, TypeIncompatible, ScoreByRef(pInt32, pInt64, false).Compatibility)
	// output-only: int64 (required) <- int32 (target) is fine
	assert.Equal(t, TypeWidening, ScoreByRef(pInt64, pInt32, true).Compatibility)

	res := ScoreByRef(reflect.TypeFor[int](), pInt, false)
	assert.Equal(t, TypeIncompatible, res.Compatibility)
	assert.Contains(t, res.Reason, "by-value parameter")

	res = ScoreByRef(pInt, reflect.TypeFor[int](), true)
	assert.Equal(t, TypeIncompatible, res.Compatibility)
	assert.Contains(t, res.Reason, "by-reference parameter")
}

func TestNewConverter(t *testing.T) {
	t.Run("widening", func(t *testing.T) {
		conv, res := NewConverter(reflect.TypeFor[int32](), reflect.TypeFor[int64]())
		require.True(t, res.Ok())

		out, err := conv(reflect.ValueOf(int32(7)))
		require.NoError(t, err)
		assert.Equal(t, int64(7), out.Interface())
	})

	t.Run("assignable to interface", func(t *testing.T) {
		conv, res := NewConverter(reflect.TypeFor[*strings.Reader](), reflect.TypeFor[io.Reader]())
		require.True(t, res.Ok())

		out, err := conv(reflect.ValueOf(strings.NewReader("x")))
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeFor[io.Reader](), out.Type())
	})

	t.Run("narrowing", func(t *testing.T) {
		conv, res := NewConverter(reflect.TypeFor[any](), reflect.TypeFor[string]())
		require.Equal(t, TypeNarrowing, res.Compatibility)

		in := reflect.New(reflect.TypeFor[any]()).Elem()
		in.Set(reflect.ValueOf("hello"))
		out, err := conv(in)
		require.NoError(t, err)
		assert.Equal(t, "hello", out.Interface())

		in.Set(reflect.ValueOf(42))
		_, err = conv(in)
		assert.Error(t, err)

		out, err = conv(reflect.New(reflect.TypeFor[any]()).Elem())
		require.NoError(t, err)
		assert.Equal(t, "", out.Interface())
	})

	t.Run("incompatible", func(t *testing.T) {
		conv, res := NewConverter(reflect.TypeFor[string](), reflect.TypeFor[int]())
		assert.Nil(t, conv)
		assert.False(t, res.Ok())
	})
}

func TestNumericKind(t *testing.T) {
	assert.Equal(t, KindInt32, FromReflectType(reflect.TypeFor[int32]()))
	assert.Equal(t, KindInt, FromReflectType(reflect.TypeFor[status]()))
	assert.Equal(t, NumericKind(0), FromReflectType(reflect.TypeFor[string]()))
	assert.Equal(t, 16, KindUint16.Bits())
	assert.True(t, KindUint16.Widens(KindInt32))
	assert.False(t, KindUint32.Widens(KindInt32))
	assert.False(t, KindInt.Widens(KindUint64))
	assert.Panics(t, func() { NumericKind(0).Bits() })
}

func ExampleNumericKind_String() {
	fmt.Println(KindInt, KindFloat64, NumericKind(0))
	// Output:
	// KindInt KindFloat64 NumericKind(0)
}

func TestTypeCompatibility_String(t *testing.T) {
	assert.Equal(t, "identical", TypeIdentical.String())
	assert.Equal(t, "narrowing", TypeNarrowing.String())
	assert.Equal(t, "unknown", TypeCompatibility(99).String())
	assert.Greater(t, TypeAssignable, TypeWidening)
}

func TestScoreParam(t *testing.T) {
	pInt := reflect.TypeFor[*int]()

	assert.Equal(t, TypeIdentical, ScoreParam(pInt, pInt, true).Compatibility)
	assert.Equal(t, TypeAssignable, ScoreParam(reflect.TypeFor[*strings.Reader](), reflect.TypeFor[io.Reader](), false).Compatibility)
	assert.Equal(t, TypeIncompatible, ScoreParam(reflect.TypeFor[int](), pInt, false).Compatibility)
	assert.Equal(t, TypeIncompatible, ScoreParam(pInt, reflect.TypeFor[any](), true).Compatibility)
}
