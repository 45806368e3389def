package duck

import (
	"fmt"
	"reflect"

	"duckproxy/internal/plan"
	"duckproxy/internal/shape"
)

// CreateProxy returns a value of shapeType wrapping instance: a live proxy
// for a Proxy shape, a snapshot for a Copy shape. shapeType may also be a
// pointer to a shape struct, or an interface registered with
// RegisterInterface; an instance already implementing that interface is
// returned unchanged.
func (c *Cache) CreateProxy(shapeType reflect.Type, instance any) (any, error) {
	if instance == nil {
		return nil, ErrNilInstance
	}

	return c.GetOrCreate(shapeType, reflect.TypeOf(instance), instance)
}

// GetOrCreate is CreateProxy with an explicit target type, which must be
// the dynamic type of instance.
func (c *Cache) GetOrCreate(shapeType, targetType reflect.Type, instance any) (any, error) {
	if instance == nil {
		return nil, ErrNilInstance
	}

	if shapeType.Kind() == reflect.Interface && targetType.Implements(shapeType) {
		return instance, nil
	}

	st, pointer, err := c.shapeStruct(shapeType)
	if err != nil {
		return nil, err
	}

	f, err := c.factory(plan.Key{Shape: st, Target: targetType})
	if err != nil {
		return nil, err
	}

	v, err := f.f.New(instance)
	if err != nil {
		return nil, err
	}

	c.metrics.proxiesCreated.Inc()

	if pointer {
		ptr := reflect.New(st)
		ptr.Elem().Set(v)

		return ptr.Interface(), nil
	}

	return v.Interface(), nil
}

// Create returns a value of shape S wrapping instance. See CreateProxy.
func Create[S any](c *Cache, instance any) (S, error) {
	var zero S

	v, err := c.CreateProxy(reflect.TypeFor[S](), instance)
	if err != nil {
		return zero, err
	}

	s, ok := v.(S)
	if !ok {
		return zero, fmt.Errorf("%w: %T does not implement %s", ErrSynthesisInconsistency, v, reflect.TypeFor[S]())
	}

	return s, nil
}

// TryCreate is Create reporting failure as false instead of an error.
func TryCreate[S any](c *Cache, instance any) (S, bool) {
	s, err := Create[S](c, instance)
	return s, err == nil
}

// CanCreate reports whether S can wrap instances of instance's type,
// without creating a value.
func CanCreate[S any](c *Cache, instance any) bool {
	if instance == nil {
		return false
	}

	shapeType := reflect.TypeFor[S]()
	targetType := reflect.TypeOf(instance)

	if shapeType.Kind() == reflect.Interface && targetType.Implements(shapeType) {
		return true
	}

	_, err := c.Factory(shapeType, targetType)

	return err == nil
}

// RegisterInterface lets the interface I be used as a shape: values are
// built through the adapter struct S, a Proxy shape whose value implements I.
// duckgen emits such adapters.
func RegisterInterface[I, S any](c *Cache) error {
	it := reflect.TypeFor[I]()
	st := reflect.TypeFor[S]()

	if it.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s is not an interface", ErrInvalidShape, it)
	}

	sh, err := c.resolver.Shape(st)
	if err != nil {
		return err
	}

	if sh.Kind != shape.KindProxy {
		return fmt.Errorf("%w: adapter %s of %s is not a proxy shape", ErrInvalidShape, st, it)
	}

	if !st.Implements(it) {
		return fmt.Errorf("%w: adapter %s does not implement %s", ErrInvalidShape, st, it)
	}

	if prev, loaded := c.adapters.LoadOrStore(it, st); loaded && prev.(reflect.Type) != st {
		return fmt.Errorf("%w: %s already has adapter %s", ErrInvalidShape, it, prev)
	}

	return nil
}

// shapeStruct maps shapeType to the struct type the resolver works on, and
// whether values are handed out as pointers.
func (c *Cache) shapeStruct(shapeType reflect.Type) (reflect.Type, bool, error) {
	switch shapeType.Kind() {
	case reflect.Interface:
		v, ok := c.adapters.Load(shapeType)
		if !ok {
			return nil, false, fmt.Errorf("%w: interface %s has no registered adapter", ErrInvalidShape, shapeType)
		}

		return v.(reflect.Type), false, nil
	case reflect.Ptr:
		if shapeType.Elem().Kind() == reflect.Struct {
			return shapeType.Elem(), true, nil
		}
	}

	return shapeType, false, nil
}
