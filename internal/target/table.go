package target

import (
	"reflect"
	"slices"
	"sort"

	"duckproxy/internal/match"
)

// Method is a method in the method set of the target type.
type Method struct {
	Name  string
	Index int
	// Type is the method signature without receiver.
	Type reflect.Type
}

// Field is a struct field reachable from the target type.
type Field struct {
	Name string
	// Index is the index path from the root struct.
	Index []int
	Type  reflect.Type
	// Depth is the embedding depth (0 for fields declared on the root).
	Depth    int
	Exported bool
	// ViaPointer is true when the path dereferences an embedded pointer.
	ViaPointer bool
}

// Table is the member table of one target type. It is immutable once built.
type Table struct {
	Type reflect.Type
	// Struct is the struct type whose fields are listed (Type or Type.Elem()).
	Struct reflect.Type

	methods   map[string]Method
	ambiguous map[string][]string
	fields    map[string][]Field
}

// Build computes the member table of t.
func Build(t reflect.Type) *Table {
	tbl := &Table{
		Type:      t,
		methods:   make(map[string]Method),
		ambiguous: make(map[string][]string),
		fields:    make(map[string][]Field),
	}

	for i := range t.NumMethod() {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}

		mt := m.Type
		if t.Kind() != reflect.Interface {
			mt = dropReceiver(mt)
		}

		tbl.methods[m.Name] = Method{Name: m.Name, Index: i, Type: mt}
	}

	switch {
	case t.Kind() == reflect.Struct:
		tbl.Struct = t
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		tbl.Struct = t.Elem()
	}

	if tbl.Struct != nil {
		tbl.walkFields(t.Kind() == reflect.Ptr)
	}

	return tbl
}

func dropReceiver(mt reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		in = append(in, mt.In(i))
	}

	out := make([]reflect.Type, 0, mt.NumOut())
	for i := range mt.NumOut() {
		out = append(out, mt.Out(i))
	}

	return reflect.FuncOf(in, out, mt.IsVariadic())
}

type embedded struct {
	typ        reflect.Type
	index      []int
	depth      int
	addr       bool
	viaPointer bool
	ancestors  []reflect.Type
}

// walkFields visits the struct breadth-first. Fields at each depth are
// recorded under their name; embedded structs are queued for the next depth.
// Method names that Go drops because two embedded types at the same depth
// declare them are recorded as ambiguous.
func (tbl *Table) walkFields(addressable bool) {
	queue := []embedded{{typ: tbl.Struct, addr: addressable}}
	methodDepth := map[string]int{}
	methodOwners := map[string][]string{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for i := range cur.typ.NumField() {
			sf := cur.typ.Field(i)
			index := append(append([]int(nil), cur.index...), i)

			tbl.fields[sf.Name] = append(tbl.fields[sf.Name], Field{
				Name:       sf.Name,
				Index:      index,
				Type:       sf.Type,
				Depth:      cur.depth,
				Exported:   sf.IsExported(),
				ViaPointer: cur.viaPointer,
			})

			if !sf.Anonymous {
				continue
			}

			et, isPtr := sf.Type, false
			if et.Kind() == reflect.Ptr {
				et, isPtr = et.Elem(), true
			}

			tbl.noteEmbeddedMethods(sf, cur, methodDepth, methodOwners)

			if et.Kind() == reflect.Struct && et != cur.typ && !slices.Contains(cur.ancestors, et) {
				queue = append(queue, embedded{
					typ:        et,
					index:      index,
					depth:      cur.depth + 1,
					addr:       cur.addr || isPtr,
					viaPointer: cur.viaPointer || isPtr,
					ancestors:  append(append([]reflect.Type(nil), cur.ancestors...), cur.typ),
				})
			}
		}
	}

	for name, owners := range methodOwners {
		if len(owners) > 1 {
			sort.Strings(owners)
			tbl.ambiguous[name] = owners
		}
	}

	for name, fs := range tbl.fields {
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].Depth < fs[j].Depth })
		tbl.fields[name] = fs
	}
}

// noteEmbeddedMethods records the methods declared by the embedded field sf
// that are missing from the method set of the target. Methods the embedded
// type only promotes are recorded later, when its own embedded fields are
// walked at their real depth.
func (tbl *Table) noteEmbeddedMethods(sf reflect.StructField, cur embedded, depth map[string]int, owners map[string][]string) {
	d := cur.depth + 1
	owner := sf.Type.String()

	for _, name := range declaredMethods(sf.Type, cur.addr) {
		if _, ok := tbl.methods[name]; ok {
			continue
		}

		if prev, seen := depth[name]; seen && prev < d {
			continue
		}

		depth[name] = d

		if !slices.Contains(owners[name], owner) {
			owners[name] = append(owners[name], owner)
		}
	}
}

// declaredMethods lists the exported methods of the embedded type t that do
// not come from t's own embedded fields. A method t redeclares over an
// embedded one is attributed to the embedded field.
func declaredMethods(t reflect.Type, addr bool) []string {
	st := t
	if st.Kind() == reflect.Ptr {
		st, addr = st.Elem(), true
	}

	promoted := make(map[string]bool)

	if st.Kind() == reflect.Struct {
		for i := range st.NumField() {
			sf := st.Field(i)
			if !sf.Anonymous {
				continue
			}

			ft := methodSetType(sf.Type, addr)
			for j := range ft.NumMethod() {
				promoted[ft.Method(j).Name] = true
			}
		}
	}

	mt := methodSetType(t, addr)

	var names []string

	for i := range mt.NumMethod() {
		m := mt.Method(i)
		if m.IsExported() && !promoted[m.Name] {
			names = append(names, m.Name)
		}
	}

	return names
}

// methodSetType is the type whose method set is promoted from an embedded
// field of type t.
func methodSetType(t reflect.Type, addr bool) reflect.Type {
	if addr && t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface {
		return reflect.PointerTo(t)
	}

	return t
}

// Method returns the method named name.
func (tbl *Table) Method(name string) (Method, bool) {
	m, ok := tbl.methods[name]
	return m, ok
}

// AmbiguousMethod returns the embedded types that all declare name at the
// same depth, or nil.
func (tbl *Table) AmbiguousMethod(name string) []string {
	return tbl.ambiguous[name]
}

// Fields returns the shallowest fields named name. More than one result
// means the name is ambiguous at that depth.
func (tbl *Table) Fields(name string) []Field {
	all := tbl.fields[name]
	if len(all) == 0 {
		return nil
	}

	end := 1
	for end < len(all) && all[end].Depth == all[0].Depth {
		end++
	}

	return all[:end]
}

// Members lists every method and field, for candidate suggestions.
// Methods come first, each group sorted by name.
func (tbl *Table) Members() []match.Named {
	members := make([]match.Named, 0, len(tbl.methods)+len(tbl.fields))

	names := make([]string, 0, len(tbl.methods))
	for name := range tbl.methods {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		members = append(members, match.Named{Name: name, Kind: "method", Type: tbl.methods[name].Type})
	}

	names = names[:0]
	for name := range tbl.fields {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		f := tbl.fields[name][0]
		members = append(members, match.Named{Name: name, Kind: "field", Type: f.Type})
	}

	return members
}
