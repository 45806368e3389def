package synth

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"duckproxy/internal/match"
	"duckproxy/internal/plan"
	"duckproxy/internal/shape"
)

var errorType = reflect.TypeFor[error]()

// argStep moves one argument from the requirement signature to the target.
type argStep struct {
	// conv converts a by-value argument; nil passes it through.
	conv match.Converter

	// By-reference arguments are copied into a fresh target element and
	// copied back after the call.
	byRef   bool
	outOnly bool
	elem    reflect.Type
	in      match.Converter
	back    match.Converter
}

// caller forwards calls of the requirement signature want to a target
// function of signature have.
type caller struct {
	want reflect.Type
	have reflect.Type

	args    []argStep
	results []match.Converter
	nested  *nestedStep

	// errIndex is the position of a trailing error result in want, or -1.
	errIndex int
	// extraErr is set when want has a trailing error result have lacks.
	extraErr bool
}

func newCaller(want, have reflect.Type, req *shape.Requirement, nested *plan.NestedBinding, chain Chainer) (*caller, error) {
	c := &caller{
		want:     want,
		have:     have,
		args:     make([]argStep, want.NumIn()),
		results:  make([]match.Converter, have.NumOut()),
		errIndex: -1,
	}

	if want.NumIn() != have.NumIn() || want.IsVariadic() != have.IsVariadic() {
		return nil, fmt.Errorf("signature %s cannot forward to %s", want, have)
	}

	for i := range want.NumIn() {
		step, err := newArgStep(want.In(i), have.In(i), i < req.Generic, req.IsOut(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}

		c.args[i] = step
	}

	if n := want.NumOut(); n > 0 && match.IsErrorType(want.Out(n-1)) {
		c.errIndex = n - 1
		c.extraErr = n == have.NumOut()+1
	}

	if want.NumOut() != have.NumOut() && !c.extraErr {
		return nil, fmt.Errorf("signature %s cannot forward to %s", want, have)
	}

	for i := range have.NumOut() {
		if i == 0 && nested != nil {
			c.nested = &nestedStep{binding: nested, chain: chain}
			continue
		}

		conv, res := match.NewConverter(have.Out(i), want.Out(i))
		if conv == nil {
			return nil, fmt.Errorf("result %d: %s", i, res.Reason)
		}

		c.results[i] = conv
	}

	return c, nil
}

func newArgStep(want, have reflect.Type, generic, outOnly bool) (argStep, error) {
	if generic {
		if want != have {
			return argStep{}, fmt.Errorf("type argument %s cannot forward to %s", want, have)
		}

		return argStep{}, nil
	}

	if want == have {
		return argStep{}, nil
	}

	if want.Kind() == reflect.Ptr && have.Kind() == reflect.Ptr {
		step := argStep{byRef: true, outOnly: outOnly, elem: have.Elem()}

		back, res := match.NewConverter(have.Elem(), want.Elem())
		if back == nil || res.Compatibility < match.TypeWidening {
			return argStep{}, fmt.Errorf("cannot copy %s back: %s", have.Elem(), res.Reason)
		}

		step.back = back

		if !outOnly {
			in, res := match.NewConverter(want.Elem(), have.Elem())
			if in == nil || res.Compatibility < match.TypeWidening {
				return argStep{}, fmt.Errorf("cannot copy %s in: %s", want.Elem(), res.Reason)
			}

			step.in = in
		}

		return step, nil
	}

	if outOnly {
		return argStep{}, fmt.Errorf("output parameter %s is not a pointer pair with %s", want, have)
	}

	conv, res := match.NewConverter(want, have)
	if conv == nil {
		return argStep{}, fmt.Errorf("%s", res.Reason)
	}

	return argStep{conv: conv}, nil
}

type pendingRef struct {
	arg  int
	elem reflect.Value
}

// call forwards args to fn and converts the results back.
func (c *caller) call(fn reflect.Value, args []reflect.Value) ([]reflect.Value, error) {
	targs := make([]reflect.Value, len(args))

	var refs []pendingRef

	for i, a := range args {
		step := c.args[i]

		switch {
		case step.byRef:
			if a.IsNil() {
				targs[i] = reflect.Zero(c.have.In(i))
				continue
			}

			tp := reflect.New(step.elem)
			if !step.outOnly {
				v, err := step.in(a.Elem())
				if err != nil {
					return nil, fmt.Errorf("parameter %d: %w", i, err)
				}

				tp.Elem().Set(v)
			}

			targs[i] = tp
			refs = append(refs, pendingRef{arg: i, elem: tp.Elem()})
		case step.conv != nil:
			v, err := step.conv(a)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}

			targs[i] = v
		default:
			targs[i] = a
		}
	}

	var res []reflect.Value
	if c.have.IsVariadic() {
		res = fn.CallSlice(targs)
	} else {
		res = fn.Call(targs)
	}

	for _, ref := range refs {
		v, err := c.args[ref.arg].back(ref.elem)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", ref.arg, err)
		}

		args[ref.arg].Elem().Set(v)
	}

	out := make([]reflect.Value, c.want.NumOut())

	for i, r := range res {
		if i == 0 && c.nested != nil {
			v, err := c.nested.wrap(r)
			if err != nil {
				return nil, err
			}

			out[0] = v

			continue
		}

		v, err := c.results[i](r)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}

		out[i] = v
	}

	if c.extraErr {
		out[c.errIndex] = reflect.Zero(errorType)
	}

	return out, nil
}

// invoke is call for generated funcs: failures are returned through a
// trailing error result, or raised as a panic when there is none.
func (c *caller) invoke(fn reflect.Value, args []reflect.Value) []reflect.Value {
	out, err := c.call(fn, args)
	if err != nil {
		return failure(c.want, err)
	}

	return out
}

// failure returns zero results with err in the trailing error result of
// signature ft. Without such a result it panics with err.
func failure(ft reflect.Type, err error) []reflect.Value {
	n := ft.NumOut()
	if n == 0 || !match.IsErrorType(ft.Out(n-1)) {
		panic(err)
	}

	out := zeros(ft)
	out[n-1] = reflect.ValueOf(&err).Elem()

	return out
}

func zeros(ft reflect.Type) []reflect.Value {
	out := make([]reflect.Value, ft.NumOut())
	for i := range out {
		out[i] = reflect.Zero(ft.Out(i))
	}

	return out
}

// nestedStep wraps a chained member value into its nested adapter.
type nestedStep struct {
	binding *plan.NestedBinding
	chain   Chainer
	static  atomic.Pointer[Factory]
}

func (n *nestedStep) wrap(v reflect.Value) (reflect.Value, error) {
	want := n.binding.Shape
	if n.binding.Pointer {
		want = reflect.PointerTo(want)
	}

	if isNil(v) {
		return reflect.Zero(want), nil
	}

	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	f, err := n.factory(v.Type())
	if err != nil {
		return reflect.Value{}, err
	}

	pv, err := f.New(v.Interface())
	if err != nil {
		return reflect.Value{}, err
	}

	if n.binding.Pointer {
		ptr := reflect.New(n.binding.Shape)
		ptr.Elem().Set(pv)

		return ptr, nil
	}

	return pv, nil
}

// factory looks the nested factory up on first use. Deferred chains depend
// on the dynamic type and are looked up on every access.
func (n *nestedStep) factory(dynamic reflect.Type) (*Factory, error) {
	if n.binding.Deferred {
		return n.chain.Factory(n.binding.Shape, dynamic)
	}

	if f := n.static.Load(); f != nil {
		return f, nil
	}

	f, err := n.chain.Factory(n.binding.Shape, dynamic)
	if err != nil {
		return nil, err
	}

	n.static.Store(f)

	return f, nil
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
