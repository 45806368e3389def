package shape

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duckproxy/internal/diagnostic"
)

type lengthShape struct {
	Proxy

	Length Property[int] `duck:",readonly"`
	Name   Property[string]
	Raw    Property[int]                `duck:"length,field"`
	Items  Indexer[string, int]         `duck:",readonly"`
	Reset  func()                       `duck:"Clear"`
	Lookup func(key string, out *int) bool `duck:",out=1"`
	Make   func(t reflect.Type, n int) any `duck:",generic=1"`
	Hidden func()                       `duck:"-"`

	cache map[string]int
}

type innerShape struct {
	Proxy

	Count func() int
}

type outerShape struct {
	innerShape

	Inner  func() innerShape
	InnerP Property[*innerShape] `duck:",readonly"`
}

type pointShape struct {
	Copy

	X int
	Y int `duck:"y,field"`
}

func TestParse_Proxy(t *testing.T) {
	s, err := Parse(reflect.TypeFor[lengthShape]())
	require.NoError(t, err)

	assert.Equal(t, KindProxy, s.Kind)
	assert.Equal(t, [][]int{{0}}, s.Markers)
	require.Len(t, s.Members, 7)

	byName := make(map[string]Requirement)
	for _, m := range s.Members {
		byName[m.Name] = m
	}

	length := byName["Length"]
	assert.Equal(t, MemberProperty, length.Kind)
	assert.Equal(t, reflect.TypeFor[int](), length.Value)
	assert.True(t, length.ReadOnly)
	assert.False(t, length.Writable())

	name := byName["Name"]
	assert.True(t, name.Writable())

	raw := byName["Raw"]
	assert.Equal(t, MemberField, raw.Kind)
	assert.Equal(t, "length", raw.TargetName)

	items := byName["Items"]
	assert.Equal(t, MemberIndexer, items.Kind)
	assert.Equal(t, reflect.TypeFor[string](), items.Key)

	assert.Equal(t, "Clear", byName["Reset"].TargetName)
	assert.Equal(t, []int{1}, byName["Lookup"].Out)
	lookup := byName["Lookup"]
	assert.True(t, lookup.IsOut(1))
	assert.Equal(t, 1, byName["Make"].Generic)

	_, hidden := byName["Hidden"]
	assert.False(t, hidden)
}

func TestParse_EmbeddedAndNested(t *testing.T) {
	s, err := Parse(reflect.TypeFor[outerShape]())
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 0}}, s.Markers)
	require.Len(t, s.Members, 3)

	assert.Equal(t, "Count", s.Members[0].Name)
	assert.Equal(t, []int{0, 1}, s.Members[0].Index)

	inner := s.Members[1]
	require.NotNil(t, inner.Nested)
	assert.Equal(t, reflect.TypeFor[innerShape](), inner.Nested.Shape)
	assert.False(t, inner.Nested.Pointer)

	innerP := s.Members[2]
	require.NotNil(t, innerP.Nested)
	assert.True(t, innerP.Nested.Pointer)
	assert.Equal(t, reflect.TypeFor[*innerShape](), innerP.Nested.Type())
}

func TestParse_Copy(t *testing.T) {
	s, err := Parse(reflect.TypeFor[pointShape]())
	require.NoError(t, err)

	assert.Equal(t, KindCopy, s.Kind)
	require.Len(t, s.Members, 2)
	assert.Equal(t, MemberProperty, s.Members[0].Kind)
	assert.True(t, s.Members[0].ReadOnly)
	assert.Equal(t, MemberField, s.Members[1].Kind)
	assert.Equal(t, "y", s.Members[1].TargetName)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		typ     reflect.Type
		message string
	}{
		{"not a struct", reflect.TypeFor[int](), "must be a struct"},
		{"no marker", reflect.TypeFor[struct{ X int }](), "neither"},
		{"both markers", reflect.TypeFor[struct {
			Proxy
			pointShape
		}](), "both"},
		{"unknown option", reflect.TypeFor[struct {
			Proxy
			F func() `duck:",bogus"`
		}](), "unknown option"},
		{"field on method", reflect.TypeFor[struct {
			Proxy
			F func() `duck:",field"`
		}](), "not valid on a method"},
		{"plain value in proxy", reflect.TypeFor[struct {
			Proxy
			N int
		}](), "must be a func"},
		{"func in copy", reflect.TypeFor[struct {
			Copy
			F func()
		}](), "plain value"},
		{"readonly in copy", reflect.TypeFor[struct {
			Copy
			N int `duck:",readonly"`
		}](), "implied"},
		{"generic not a type", reflect.TypeFor[struct {
			Proxy
			F func(int) `duck:",generic=1"`
		}](), "must be reflect.Type"},
		{"out not a pointer", reflect.TypeFor[struct {
			Proxy
			F func(int) `duck:",out=0"`
		}](), "pointer parameter"},
		{"out out of range", reflect.TypeFor[struct {
			Proxy
			F func() `duck:",out=2"`
		}](), "not a parameter"},
		{"writable chained property", reflect.TypeFor[struct {
			Proxy
			P Property[innerShape]
		}](), "must be readonly"},
		{"shape parameter", reflect.TypeFor[struct {
			Proxy
			F func(innerShape)
		}](), "only results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.typ)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diagnostic.ErrInvalidShape), err.Error())
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseTag(t *testing.T) {
	opts, err := parseTag("Other,readonly,optional,out=2,out=1")
	require.NoError(t, err)
	assert.Equal(t, "Other", opts.name)
	assert.True(t, opts.readOnly)
	assert.True(t, opts.optional)
	assert.Equal(t, []int{1, 2}, opts.out)

	_, err = parseTag(",generic=0")
	assert.Error(t, err)

	_, err = parseTag(",out=1,out=1")
	assert.Error(t, err)

	_, err = parseTag(",field=1")
	assert.Error(t, err)

	opts, err = parseTag("-")
	require.NoError(t, err)
	assert.True(t, opts.skip())
}

func TestIsShape(t *testing.T) {
	assert.True(t, IsShape(reflect.TypeFor[lengthShape]()))
	assert.True(t, IsShape(reflect.TypeFor[*pointShape]()))
	assert.True(t, IsShape(reflect.TypeFor[outerShape]()))
	assert.False(t, IsShape(reflect.TypeFor[struct{ N int }]()))
	assert.False(t, IsShape(reflect.TypeFor[string]()))
	assert.False(t, IsShape(nil))
}

func TestProperty(t *testing.T) {
	v := 1
	p := Property[int]{Getter: func() int { return v }}

	assert.Equal(t, 1, p.Get())
	assert.False(t, p.CanSet())
	assert.PanicsWithValue(t, diagnostic.ErrReadOnlyMember, func() { p.Set(2) })

	p.Setter = func(n int) { v = n }
	p.Set(5)
	assert.Equal(t, 5, v)

	var empty Indexer[string, int]
	assert.Equal(t, 0, empty.Get("x"))
	assert.Equal(t, MemberIndexer, accessorKind(reflect.TypeFor[Indexer[string, int]]()))
	assert.Equal(t, MemberProperty, accessorKind(reflect.TypeFor[Property[bool]]()))
	assert.Equal(t, MemberKind(0), accessorKind(reflect.TypeFor[struct{}]()))
}

func TestBind(t *testing.T) {
	var s lengthShape
	Bind(reflect.ValueOf(&s).Elem().Field(0), &struct{ N int }{N: 3})

	assert.Equal(t, reflect.TypeFor[*struct{ N int }](), s.InstanceType())
	assert.NotNil(t, s.Instance())
}
