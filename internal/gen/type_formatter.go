package gen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// importSet assigns package qualifiers while types are rendered and
// remembers the imports they need.
type importSet struct {
	self   string
	byPath map[string]importSpec
	names  map[string]string // qualifier -> path
}

func newImportSet(self string) *importSet {
	return &importSet{
		self:   self,
		byPath: make(map[string]importSpec),
		names:  make(map[string]string),
	}
}

// add records path under name, or under name2, name3... when another
// package already uses name. It returns the qualifier.
func (s *importSet) add(path, name string) string {
	if spec, ok := s.byPath[path]; ok {
		if spec.Alias != "" {
			return spec.Alias
		}

		return name
	}

	qualifier := name
	for i := 2; s.names[qualifier] != ""; i++ {
		qualifier = fmt.Sprintf("%s%d", name, i)
	}

	spec := importSpec{Path: path}
	if qualifier != name {
		spec.Alias = qualifier
	}

	s.byPath[path] = spec
	s.names[qualifier] = path

	return qualifier
}

func (s *importSet) qualifier(pkg *types.Package) string {
	if pkg.Path() == s.self {
		return ""
	}

	return s.add(pkg.Path(), pkg.Name())
}

func (s *importSet) typeString(t types.Type) string {
	return types.TypeString(t, s.qualifier)
}

// used reports whether name is taken by an import qualifier.
func (s *importSet) used(name string) bool {
	return s.names[name] != ""
}

func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))
	for _, spec := range s.byPath {
		out = append(out, spec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// unexportedRef returns the first named type reachable from t that cannot
// be referenced from package self, or "".
func unexportedRef(t types.Type, self string) string {
	return walkUnexported(t, self, make(map[types.Type]bool))
}

func walkUnexported(t types.Type, self string, seen map[types.Type]bool) string {
	if seen[t] {
		return ""
	}

	seen[t] = true

	switch tt := t.(type) {
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() != self && !obj.Exported() {
			return obj.Pkg().Path() + "." + obj.Name()
		}

		for i := range tt.TypeArgs().Len() {
			if ref := walkUnexported(tt.TypeArgs().At(i), self, seen); ref != "" {
				return ref
			}
		}
	case *types.Pointer:
		return walkUnexported(tt.Elem(), self, seen)
	case *types.Slice:
		return walkUnexported(tt.Elem(), self, seen)
	case *types.Array:
		return walkUnexported(tt.Elem(), self, seen)
	case *types.Chan:
		return walkUnexported(tt.Elem(), self, seen)
	case *types.Map:
		if ref := walkUnexported(tt.Key(), self, seen); ref != "" {
			return ref
		}

		return walkUnexported(tt.Elem(), self, seen)
	case *types.Signature:
		for _, tuple := range []*types.Tuple{tt.Params(), tt.Results()} {
			for i := range tuple.Len() {
				if ref := walkUnexported(tuple.At(i).Type(), self, seen); ref != "" {
					return ref
				}
			}
		}
	case *types.Struct:
		for i := range tt.NumFields() {
			if ref := walkUnexported(tt.Field(i).Type(), self, seen); ref != "" {
				return ref
			}
		}
	}

	return ""
}

// capitalize upper-cases the first ASCII letter of s.
func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
