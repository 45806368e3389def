// Package duck adapts values to structural "shapes" at run time.
//
// A shape is a struct type describing the members a caller expects,
// independent of the concrete type that will provide them:
//
//	type HasLength struct {
//		duck.Proxy
//		Length duck.Property[int] `duck:",readonly"`
//	}
//
//	c := duck.NewCache()
//	s, err := duck.Create[HasLength](c, list)
//	n := s.Length.Get()
//
// Shapes embedding Proxy forward every access to the wrapped instance; shapes
// embedding Copy read every member once, when the value is created.
//
// Members are func fields (methods), Property fields (getter/setter pairs or
// fields) and Indexer fields (keyed accessors, maps, slices and arrays).
// The duck struct tag renames a member and sets options:
//
//	field        bind to a target field of identical type only
//	readonly     no setter is required or generated
//	optional     an unresolvable member binds to a default
//	include      resolve String/GoString against the target
//	generic=N    the first N parameters are reflect.Type type arguments
//	out=N        pointer parameter N is output-only (repeatable)
//
// Members whose type is itself a shape are chained: the nested adapter is
// built the first time the member is accessed.
//
// A Cache resolves every (shape, target type) pair once and caches the
// adapter factory, or the failure, for the lifetime of the cache. Binding
// failures are reported as *BindingError values matching the package
// sentinels through errors.Is.
//
// Go interfaces can be used as shapes through adapter structs registered with
// RegisterInterface; the duckgen command generates them.
package duck
