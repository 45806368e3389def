package synth

import (
	"fmt"
	"reflect"

	"duckproxy/internal/diagnostic"
	"duckproxy/internal/match"
	"duckproxy/internal/plan"
	"duckproxy/internal/shape"
	"duckproxy/internal/target"
)

// Chainer provides the factories of chained pairs.
type Chainer interface {
	Factory(shapeType, targetType reflect.Type) (*Factory, error)
}

// Factory creates shape values over instances of one target type.
// It is safe for concurrent use.
type Factory struct {
	plan       *plan.Plan
	chain      Chainer
	publicOnly bool
	members    []member
}

// instance is the per-proxy state captured by member closures.
type instance struct {
	value  any
	recv   reflect.Value
	fields reflect.Value
}

// member fills one shape field of a new shape value.
type member struct {
	index []int
	bind  func(inst *instance, dst reflect.Value) error
}

// Build pre-computes every member binder of a successful plan. A failure
// here is a synthesis inconsistency.
func Build(p *plan.Plan, chain Chainer, publicOnly bool) (*Factory, error) {
	if !p.Ok() {
		return nil, p.Err()
	}

	f := &Factory{plan: p, chain: chain, publicOnly: publicOnly}

	var diags diagnostic.Diagnostics

	for i := range p.Bindings {
		b := &p.Bindings[i]

		bind, err := f.binder(b)
		if err != nil {
			diags.AddError(diagnostic.CodeSynthesis, err.Error(), p.Key.String(), b.Requirement.Name)
			continue
		}

		if bind != nil {
			f.members = append(f.members, member{index: b.Requirement.Index, bind: bind})
		}
	}

	if diags.HasErrors() {
		return nil, diags.Err(p.Key.String())
	}

	return f, nil
}

// Plan returns the plan the factory was built from.
func (f *Factory) Plan() *plan.Plan {
	return f.plan
}

// New returns a new shape value wrapping value, whose dynamic type must be
// the factory's target type.
func (f *Factory) New(value any) (reflect.Value, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return reflect.Value{}, diagnostic.ErrNilInstance
	}

	if v.Type() != f.plan.Target {
		return reflect.Value{}, fmt.Errorf("instance of type %s given to the factory of %s", v.Type(), f.plan.Key)
	}

	recv, fields, err := target.Root(v)
	if err != nil {
		return reflect.Value{}, err
	}

	inst := &instance{value: value, recv: recv, fields: fields}
	out := reflect.New(f.plan.Shape.Type).Elem()

	for _, m := range f.plan.Shape.Markers {
		shape.Bind(out.FieldByIndex(m), value)
	}

	for _, m := range f.members {
		if err := m.bind(inst, out.FieldByIndex(m.index)); err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", f.plan.Key, err)
		}
	}

	return out, nil
}

func (f *Factory) copyShape() bool {
	return f.plan.Shape.Kind == shape.KindCopy
}

func (f *Factory) binder(b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	req := &b.Requirement

	switch b.Kind {
	case plan.BindMethod:
		return f.methodBinder(req, b)
	case plan.BindFuncField:
		return f.funcFieldBinder(req, b)
	case plan.BindAccessors, plan.BindIndexMethods:
		return f.accessorBinder(req, b)
	case plan.BindField:
		return f.fieldBinder(req, b)
	case plan.BindIndexField:
		return f.indexFieldBinder(req, b)
	case plan.BindDefault:
		return f.defaultBinder(req), nil
	case plan.BindFiltered:
		return f.filteredBinder(req), nil
	default:
		return nil, fmt.Errorf("unsupported binding kind %s", b.Kind)
	}
}

func (f *Factory) methodBinder(req *shape.Requirement, b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	c, err := newCaller(req.Func, b.Method.Type, req, b.Nested, f.chain)
	if err != nil {
		return nil, err
	}

	index := b.Method.Index

	return func(inst *instance, dst reflect.Value) error {
		fn := inst.recv.Method(index)
		dst.Set(reflect.MakeFunc(req.Func, func(args []reflect.Value) []reflect.Value {
			return c.invoke(fn, args)
		}))

		return nil
	}, nil
}

func (f *Factory) funcFieldBinder(req *shape.Requirement, b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	c, err := newCaller(req.Func, b.Field.Type, req, b.Nested, f.chain)
	if err != nil {
		return nil, err
	}

	field := *b.Field

	return func(inst *instance, dst reflect.Value) error {
		dst.Set(reflect.MakeFunc(req.Func, func(args []reflect.Value) []reflect.Value {
			fn, err := target.FieldValue(inst.fields, field, f.publicOnly)
			if err != nil {
				return failure(req.Func, err)
			}

			if fn.IsNil() {
				return failure(req.Func, fmt.Errorf("%w: field %s is nil", diagnostic.ErrNotImplemented, field.Name))
			}

			return c.invoke(fn, args)
		}))

		return nil
	}, nil
}

// accessorBinder serves properties and indexers through getter/setter methods.
func (f *Factory) accessorBinder(req *shape.Requirement, b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	getter, err := newCaller(req.Func, b.Method.Type, req, b.Nested, f.chain)
	if err != nil {
		return nil, fmt.Errorf("getter: %w", err)
	}

	if f.copyShape() {
		index := b.Method.Index

		return func(inst *instance, dst reflect.Value) error {
			out, err := getter.call(inst.recv.Method(index), nil)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Name, err)
			}

			dst.Set(out[0])

			return nil
		}, nil
	}

	var (
		setter    *caller
		setterFn  reflect.Type
		setterIdx int
	)

	if req.Writable() {
		if b.Setter == nil {
			return nil, fmt.Errorf("writable member bound without a setter")
		}

		setterFn = req.Type.Field(shape.SetterField).Type
		setterIdx = b.Setter.Index

		setter, err = newCaller(setterFn, b.Setter.Type, &shape.Requirement{}, nil, f.chain)
		if err != nil {
			return nil, fmt.Errorf("setter: %w", err)
		}
	}

	getterIdx := b.Method.Index

	return func(inst *instance, dst reflect.Value) error {
		get := inst.recv.Method(getterIdx)
		dst.Field(shape.GetterField).Set(reflect.MakeFunc(req.Func, func(args []reflect.Value) []reflect.Value {
			return getter.invoke(get, args)
		}))

		if setter != nil {
			set := inst.recv.Method(setterIdx)
			dst.Field(shape.SetterField).Set(reflect.MakeFunc(setterFn, func(args []reflect.Value) []reflect.Value {
				return setter.invoke(set, args)
			}))
		}

		return nil
	}, nil
}

// read converts a target value to the requirement's value type, wrapping
// chained members.
type read func(reflect.Value) (reflect.Value, error)

func (f *Factory) reader(from, to reflect.Type, nb *plan.NestedBinding) (read, error) {
	if nb != nil {
		step := &nestedStep{binding: nb, chain: f.chain}
		return step.wrap, nil
	}

	conv, res := match.NewConverter(from, to)
	if conv == nil {
		return nil, fmt.Errorf("read %s as %s: %s", from, to, res.Reason)
	}

	return read(conv), nil
}

func (f *Factory) fieldBinder(req *shape.Requirement, b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	field := *b.Field

	get, err := f.reader(field.Type, req.Value, b.Nested)
	if err != nil {
		return nil, err
	}

	load := func(inst *instance) (reflect.Value, error) {
		fv, err := target.FieldValue(inst.fields, field, f.publicOnly)
		if err != nil {
			return reflect.Value{}, err
		}

		return get(fv)
	}

	if f.copyShape() {
		return func(inst *instance, dst reflect.Value) error {
			v, err := load(inst)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Name, err)
			}

			dst.Set(v)

			return nil
		}, nil
	}

	var put match.Converter

	if req.Writable() {
		conv, res := match.NewConverter(req.Value, field.Type)
		if conv == nil {
			return nil, fmt.Errorf("write %s as %s: %s", req.Value, field.Type, res.Reason)
		}

		put = conv
	}

	setterFn := req.Type.Field(shape.SetterField).Type

	return func(inst *instance, dst reflect.Value) error {
		dst.Field(shape.GetterField).Set(reflect.MakeFunc(req.Func, func([]reflect.Value) []reflect.Value {
			v, err := load(inst)
			if err != nil {
				panic(err)
			}

			return []reflect.Value{v}
		}))

		if put != nil {
			dst.Field(shape.SetterField).Set(reflect.MakeFunc(setterFn, func(args []reflect.Value) []reflect.Value {
				fv, err := target.FieldValue(inst.fields, field, f.publicOnly)
				if err != nil {
					panic(err)
				}

				v, err := put(args[0])
				if err != nil {
					panic(err)
				}

				fv.Set(v)

				return nil
			}))
		}

		return nil
	}, nil
}

var intType = reflect.TypeFor[int]()

func (f *Factory) indexFieldBinder(req *shape.Requirement, b *plan.Binding) (func(*instance, reflect.Value) error, error) {
	field := *b.Field
	isMap := field.Type.Kind() == reflect.Map

	keyType := intType
	if isMap {
		keyType = field.Type.Key()
	}

	key, res := match.NewConverter(req.Key, keyType)
	if key == nil {
		return nil, fmt.Errorf("key %s as %s: %s", req.Key, keyType, res.Reason)
	}

	get, err := f.reader(field.Type.Elem(), req.Value, b.Nested)
	if err != nil {
		return nil, err
	}

	var put match.Converter

	if req.Writable() {
		conv, res := match.NewConverter(req.Value, field.Type.Elem())
		if conv == nil {
			return nil, fmt.Errorf("write %s as %s: %s", req.Value, field.Type.Elem(), res.Reason)
		}

		put = conv
	}

	// locate returns the container field and the converted key.
	locate := func(inst *instance, k reflect.Value) (reflect.Value, reflect.Value) {
		fv, err := target.FieldValue(inst.fields, field, f.publicOnly)
		if err != nil {
			panic(err)
		}

		kv, err := key(k)
		if err != nil {
			panic(err)
		}

		return fv, kv
	}

	setterFn := req.Type.Field(shape.SetterField).Type

	return func(inst *instance, dst reflect.Value) error {
		dst.Field(shape.GetterField).Set(reflect.MakeFunc(req.Func, func(args []reflect.Value) []reflect.Value {
			fv, kv := locate(inst, args[0])

			var elem reflect.Value
			if isMap {
				elem = fv.MapIndex(kv)
				if !elem.IsValid() {
					elem = reflect.Zero(field.Type.Elem())
				}
			} else {
				elem = fv.Index(int(kv.Int()))
			}

			v, err := get(elem)
			if err != nil {
				panic(err)
			}

			return []reflect.Value{v}
		}))

		if put == nil {
			return nil
		}

		dst.Field(shape.SetterField).Set(reflect.MakeFunc(setterFn, func(args []reflect.Value) []reflect.Value {
			fv, kv := locate(inst, args[0])

			v, err := put(args[1])
			if err != nil {
				panic(err)
			}

			if isMap {
				if fv.IsNil() {
					fv.Set(reflect.MakeMap(field.Type))
				}

				fv.SetMapIndex(kv, v)
			} else {
				fv.Index(int(kv.Int())).Set(v)
			}

			return nil
		}))

		return nil
	}, nil
}

// defaultBinder serves an optional requirement the target lacks: calls return
// zero values and ErrNotImplemented, reads return zero, writes are dropped.
func (f *Factory) defaultBinder(req *shape.Requirement) func(*instance, reflect.Value) error {
	if f.copyShape() {
		return nil
	}

	return func(_ *instance, dst reflect.Value) error {
		if req.Kind == shape.MemberMethod {
			dst.Set(reflect.MakeFunc(req.Func, func([]reflect.Value) []reflect.Value {
				out := zeros(req.Func)
				if n := len(out); n > 0 && match.IsErrorType(req.Func.Out(n-1)) {
					err := error(diagnostic.ErrNotImplemented)
					out[n-1] = reflect.ValueOf(&err).Elem()
				}

				return out
			}))

			return nil
		}

		dst.Field(shape.GetterField).Set(reflect.MakeFunc(req.Func, func([]reflect.Value) []reflect.Value {
			return zeros(req.Func)
		}))

		if req.Writable() {
			setterFn := req.Type.Field(shape.SetterField).Type
			dst.Field(shape.SetterField).Set(reflect.MakeFunc(setterFn, func([]reflect.Value) []reflect.Value {
				return nil
			}))
		}

		return nil
	}
}

// filteredBinder serves String and GoString by formatting the target.
func (f *Factory) filteredBinder(req *shape.Requirement) func(*instance, reflect.Value) error {
	verb := "%v"
	if req.TargetName == "GoString" {
		verb = "%#v"
	}

	result := req.Func.Out(0)

	return func(inst *instance, dst reflect.Value) error {
		dst.Set(reflect.MakeFunc(req.Func, func([]reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.ValueOf(fmt.Sprintf(verb, inst.value)).Convert(result)}
		}))

		return nil
	}
}
