package shape

import (
	"fmt"
	"reflect"

	"duckproxy/internal/diagnostic"
)

// maxEmbedDepth bounds the marker search through embedded shapes.
const maxEmbedDepth = 16

var reflectTypeType = reflect.TypeFor[reflect.Type]()

// IsShape reports whether t is a shape struct or a pointer to one.
func IsShape(t reflect.Type) bool {
	if t == nil {
		return false
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	proxy, cp := markerKinds(t, 0)

	return proxy || cp
}

// markerKinds reports which markers t embeds, directly or through embedded shapes.
func markerKinds(t reflect.Type, depth int) (proxy, cp bool) {
	if depth > maxEmbedDepth {
		return false, false
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		switch {
		case f.Type == proxyType:
			proxy = true
		case f.Type == copyType:
			cp = true
		case f.Type.Kind() == reflect.Struct:
			p, c := markerKinds(f.Type, depth+1)
			proxy = proxy || p
			cp = cp || c
		}
	}

	return proxy, cp
}

// parser accumulates members and diagnostics for one shape.
type parser struct {
	shape *Shape
	diags diagnostic.Diagnostics
	names map[string]bool
}

// Parse builds the descriptor of the shape struct type t. Every malformed
// member is reported; the returned error is a *diagnostic.BindingError
// matching diagnostic.ErrInvalidShape.
func Parse(t reflect.Type) (*Shape, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", diagnostic.ErrInvalidShape)
	}

	p := &parser{
		shape: &Shape{Type: t},
		names: make(map[string]bool),
	}

	if t.Kind() != reflect.Struct {
		p.invalid("", "shape must be a struct type, got %s", t.Kind())
		return nil, p.diags.Err(t.String())
	}

	switch proxy, cp := markerKinds(t, 0); {
	case proxy && cp:
		p.invalid("", "shape embeds both duck.Proxy and duck.Copy")
	case proxy:
		p.shape.Kind = KindProxy
	case cp:
		p.shape.Kind = KindCopy
	default:
		p.invalid("", "shape embeds neither duck.Proxy nor duck.Copy")
	}

	if p.diags.HasErrors() {
		return nil, p.diags.Err(t.String())
	}

	p.walk(t, nil, 0)

	if p.diags.HasErrors() {
		return nil, p.diags.Err(t.String())
	}

	return p.shape, nil
}

func (p *parser) invalid(member, format string, args ...any) {
	p.diags.AddError(diagnostic.CodeInvalid, fmt.Sprintf(format, args...), p.shape.Type.String(), member)
}

func (p *parser) walk(t reflect.Type, prefix []int, depth int) {
	for i := range t.NumField() {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous {
			p.embedded(f, index, depth)
			continue
		}

		if !f.IsExported() {
			continue
		}

		opts, err := parseTag(f.Tag.Get(TagName))
		if err != nil {
			p.invalid(f.Name, "%v", err)
			continue
		}

		if opts.skip() {
			continue
		}

		if p.names[f.Name] {
			p.invalid(f.Name, "member declared more than once")
			continue
		}

		p.names[f.Name] = true

		if req, ok := p.member(f, index, opts); ok {
			p.shape.Members = append(p.shape.Members, req)
		}
	}
}

func (p *parser) embedded(f reflect.StructField, index []int, depth int) {
	switch {
	case f.Type == proxyType, f.Type == copyType:
		p.shape.Markers = append(p.shape.Markers, index)
	case f.Type.Kind() == reflect.Struct && IsShape(f.Type):
		if depth >= maxEmbedDepth {
			p.invalid(f.Name, "shapes embedded too deeply")
			return
		}

		p.walk(f.Type, index, depth+1)
	case f.Type.Kind() == reflect.Ptr && IsShape(f.Type):
		p.invalid(f.Name, "embedded shapes must not be pointers")
	case !f.IsExported():
		// helper state
	default:
		p.invalid(f.Name, "embedded field is neither a marker nor a shape")
	}
}

func (p *parser) member(f reflect.StructField, index []int, opts tagOptions) (Requirement, bool) {
	req := Requirement{
		Name:       f.Name,
		TargetName: f.Name,
		Index:      index,
		Type:       f.Type,
		ReadOnly:   opts.readOnly,
		Optional:   opts.optional,
		Include:    opts.include,
	}

	if opts.name != "" {
		req.TargetName = opts.name
	}

	if p.shape.Kind == KindCopy {
		return p.copyMember(req, opts)
	}

	switch {
	case f.Type.Kind() == reflect.Func:
		return p.methodMember(req, opts)
	case accessorKind(f.Type) == MemberProperty:
		return p.propertyMember(req, opts)
	case accessorKind(f.Type) == MemberIndexer:
		return p.indexerMember(req, opts)
	default:
		p.invalid(f.Name, "proxy shape member of type %s must be a func, duck.Property or duck.Indexer", f.Type)
		return req, false
	}
}

func (p *parser) methodMember(req Requirement, opts tagOptions) (Requirement, bool) {
	ft := req.Type
	req.Kind = MemberMethod
	req.Func = ft

	ok := true
	if opts.field {
		p.invalid(req.Name, "option %q is not valid on a method", optField)
		ok = false
	}

	if opts.readOnly {
		p.invalid(req.Name, "option %q is not valid on a method", optReadOnly)
		ok = false
	}

	if opts.generic > ft.NumIn() {
		p.invalid(req.Name, "generic=%d exceeds the %d parameters", opts.generic, ft.NumIn())
		ok = false
	} else {
		for i := range opts.generic {
			if ft.In(i) != reflectTypeType {
				p.invalid(req.Name, "generic parameter %d must be reflect.Type, got %s", i, ft.In(i))
				ok = false
			}
		}
	}

	req.Generic = opts.generic

	for _, o := range opts.out {
		switch {
		case o >= ft.NumIn():
			p.invalid(req.Name, "out=%d is not a parameter", o)
			ok = false
		case o < opts.generic:
			p.invalid(req.Name, "out=%d is a generic type parameter", o)
			ok = false
		case ft.In(o).Kind() != reflect.Ptr:
			p.invalid(req.Name, "out=%d must be a pointer parameter, got %s", o, ft.In(o))
			ok = false
		}
	}

	req.Out = opts.out

	if ft.NumOut() > 0 && IsShape(ft.Out(0)) {
		req.Nested = nestedOf(ft.Out(0))
	}

	for i := range ft.NumIn() {
		if IsShape(ft.In(i)) {
			p.invalid(req.Name, "parameter %d is a shape; only results can be chained", i)
			ok = false
		}
	}

	return req, ok
}

func (p *parser) propertyMember(req Requirement, opts tagOptions) (Requirement, bool) {
	req.Kind = MemberProperty
	if opts.field {
		req.Kind = MemberField
	}

	req.Func = req.Type.Field(GetterField).Type
	req.Value = req.Func.Out(0)

	ok := p.accessorChecks(&req, opts)

	return req, ok
}

func (p *parser) indexerMember(req Requirement, opts tagOptions) (Requirement, bool) {
	req.Kind = MemberIndexer
	req.Func = req.Type.Field(GetterField).Type
	req.Key = req.Func.In(0)
	req.Value = req.Func.Out(0)

	ok := p.accessorChecks(&req, opts)
	if opts.field {
		p.invalid(req.Name, "option %q is not valid on an indexer", optField)
		ok = false
	}

	return req, ok
}

func (p *parser) accessorChecks(req *Requirement, opts tagOptions) bool {
	ok := true

	if opts.generic != 0 || len(opts.out) > 0 {
		p.invalid(req.Name, "options %q and %q are only valid on methods", optGeneric, optOut)
		ok = false
	}

	if IsShape(req.Value) {
		req.Nested = nestedOf(req.Value)
		if !req.ReadOnly {
			p.invalid(req.Name, "chained member of shape type %s must be readonly", req.Value)
			ok = false
		}
	}

	return ok
}

func (p *parser) copyMember(req Requirement, opts tagOptions) (Requirement, bool) {
	ok := true

	if req.Type.Kind() == reflect.Func || accessorKind(req.Type) != 0 {
		p.invalid(req.Name, "copy shape member of type %s must be a plain value", req.Type)
		ok = false
	}

	if opts.readOnly {
		p.invalid(req.Name, "option %q is implied for copy shapes", optReadOnly)
		ok = false
	}

	if opts.generic != 0 || len(opts.out) > 0 {
		p.invalid(req.Name, "options %q and %q are only valid on methods", optGeneric, optOut)
		ok = false
	}

	req.Kind = MemberProperty
	if opts.field {
		req.Kind = MemberField
	}

	req.ReadOnly = true
	req.Value = req.Type
	req.Func = reflect.FuncOf(nil, []reflect.Type{req.Type}, false)

	if IsShape(req.Value) {
		req.Nested = nestedOf(req.Value)
	}

	return req, ok
}

func nestedOf(t reflect.Type) *Nested {
	if t.Kind() == reflect.Ptr {
		return &Nested{Shape: t.Elem(), Pointer: true}
	}

	return &Nested{Shape: t}
}
