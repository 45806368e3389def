package shape

import (
	"reflect"

	"duckproxy/internal/diagnostic"
)

// Proxy is embedded in live-forwarding shapes. After creation it holds the
// wrapped instance.
type Proxy struct {
	instance any
	typ      reflect.Type
}

// Instance returns the wrapped target instance.
func (p Proxy) Instance() any {
	return p.instance
}

// InstanceType returns the dynamic type of the wrapped instance.
func (p Proxy) InstanceType() reflect.Type {
	return p.typ
}

// Copy is embedded in snapshot shapes.
type Copy struct {
	source reflect.Type
}

// SourceType returns the type the snapshot was taken from.
func (c Copy) SourceType() reflect.Type {
	return c.source
}

// Bind attaches an instance to the marker at v (a settable Proxy or Copy value).
func Bind(v reflect.Value, instance any) {
	switch m := v.Addr().Interface().(type) {
	case *Proxy:
		m.instance = instance
		m.typ = reflect.TypeOf(instance)
	case *Copy:
		m.source = reflect.TypeOf(instance)
	}
}

var (
	proxyType = reflect.TypeFor[Proxy]()
	copyType  = reflect.TypeFor[Copy]()
)

// Property is a shape member read and written through accessors.
type Property[T any] struct {
	Getter func() T
	Setter func(T)
}

// Get reads the property.
func (p Property[T]) Get() T {
	if p.Getter == nil {
		var zero T
		return zero
	}

	return p.Getter()
}

// Set writes the property. It panics with ErrReadOnlyMember when the
// property was declared read-only.
func (p Property[T]) Set(v T) {
	if p.Setter == nil {
		panic(diagnostic.ErrReadOnlyMember)
	}

	p.Setter(v)
}

// CanSet reports whether Set is available.
func (p Property[T]) CanSet() bool {
	return p.Setter != nil
}

func (Property[T]) memberKind() MemberKind { return MemberProperty }

// Indexer is a keyed shape member.
type Indexer[K, V any] struct {
	Getter func(K) V
	Setter func(K, V)
}

// Get reads the element at key.
func (x Indexer[K, V]) Get(key K) V {
	if x.Getter == nil {
		var zero V
		return zero
	}

	return x.Getter(key)
}

// Set writes the element at key. It panics with ErrReadOnlyMember when the
// indexer was declared read-only.
func (x Indexer[K, V]) Set(key K, v V) {
	if x.Setter == nil {
		panic(diagnostic.ErrReadOnlyMember)
	}

	x.Setter(key, v)
}

// CanSet reports whether Set is available.
func (x Indexer[K, V]) CanSet() bool {
	return x.Setter != nil
}

func (Indexer[K, V]) memberKind() MemberKind { return MemberIndexer }

// accessor is implemented only by Property and Indexer.
type accessor interface {
	memberKind() MemberKind
}

var accessorType = reflect.TypeFor[accessor]()

// accessorKind returns MemberProperty or MemberIndexer for accessor types, 0 otherwise.
func accessorKind(t reflect.Type) MemberKind {
	if t.Kind() != reflect.Struct || !t.Implements(accessorType) {
		return 0
	}

	return reflect.Zero(t).Interface().(accessor).memberKind()
}

// Accessor field indexes, shared by Property and Indexer.
const (
	GetterField = 0
	SetterField = 1
)
