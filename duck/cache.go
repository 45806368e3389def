package duck

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"duckproxy/internal/plan"
	"duckproxy/internal/synth"
)

// Cache memoizes binding plans and adapter factories per (shape, target)
// pair. Resolution sessions run one at a time, so a pair reached both
// directly and through a chain is resolved once; stored plans and
// synthesis never wait on them. Failures are cached like successes.
//
// A Cache is safe for concurrent use. The zero value is not usable; call
// NewCache.
type Cache struct {
	cfg      Config
	log      *zap.Logger
	metrics  *metrics
	resolver *plan.Resolver

	// resolveMu serializes resolution sessions.
	resolveMu sync.Mutex

	entries  sync.Map // plan.Key -> *entry
	adapters sync.Map // interface reflect.Type -> adapter struct reflect.Type
}

type entry struct {
	key plan.Key

	// plan is written once, before planned is set.
	planned atomic.Bool
	plan    *plan.Plan

	synthOnce sync.Once
	factory   *Factory
	err       error
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cache{
		cfg:     o.config,
		log:     log,
		metrics: newMetrics(o.registerer),
	}

	c.resolver = plan.NewResolver(plan.ResolutionConfig{
		PublicOnly:    o.config.PublicOnly,
		MaxCandidates: o.config.MaxCandidates,
	}, c.lookup)

	return c
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.cfg
}

// Factory returns the factory of the (shape, target) pair, resolving and
// synthesizing it on first request. Concurrent first requests for one pair
// share a single resolution and a single synthesis.
//
// shapeType may be a shape struct, a pointer to one, or a registered
// interface.
func (c *Cache) Factory(shapeType, targetType reflect.Type) (*Factory, error) {
	st, _, err := c.shapeStruct(shapeType)
	if err != nil {
		return nil, err
	}

	return c.factory(plan.Key{Shape: st, Target: targetType})
}

func (c *Cache) factory(key plan.Key) (*Factory, error) {
	e, hit := c.entry(key)
	if hit {
		c.metrics.hits.Inc()
	} else {
		c.metrics.misses.Inc()
	}

	p := c.planOf(e)

	e.synthOnce.Do(func() {
		e.factory, e.err = c.synthesize(p)
	})

	return e.factory, e.err
}

func (c *Cache) entry(key plan.Key) (*entry, bool) {
	if v, ok := c.entries.Load(key); ok {
		return v.(*entry), true
	}

	v, loaded := c.entries.LoadOrStore(key, &entry{key: key})

	return v.(*entry), loaded
}

// planOf returns the plan of e, resolving it on first use. Every plan a
// session computes, chained pairs included, is stored before the session
// lock is released.
func (c *Cache) planOf(e *entry) *plan.Plan {
	if e.planned.Load() {
		return e.plan
	}

	c.resolveMu.Lock()
	defer c.resolveMu.Unlock()

	if e.planned.Load() {
		return e.plan
	}

	_, computed := c.resolver.Resolve(e.key)

	for _, p := range computed {
		c.metrics.resolutions.WithLabelValues(resultLabel(p.Ok())).Inc()
		c.store(p)
	}

	return e.plan
}

// store records p in its entry. Callers hold resolveMu.
func (c *Cache) store(p *plan.Plan) {
	e, _ := c.entry(p.Key)
	if e.planned.Load() {
		return
	}

	e.plan = p
	e.planned.Store(true)
}

// lookup serves plans already stored to the resolver. It never waits.
func (c *Cache) lookup(key plan.Key) (*plan.Plan, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}

	e := v.(*entry)
	if !e.planned.Load() {
		return nil, false
	}

	return e.plan, true
}

func (c *Cache) synthesize(p *plan.Plan) (*Factory, error) {
	pair := p.Key.String()

	if !p.Ok() {
		err := p.Err()
		c.log.Warn("shape cannot bind target",
			zap.String("pair", pair),
			zap.Strings("members", failedMembers(err)),
			zap.Error(err),
		)

		return nil, err
	}

	f, err := synth.Build(p, chainer{c}, c.cfg.PublicOnly)
	c.metrics.syntheses.WithLabelValues(resultLabel(err == nil)).Inc()

	if err != nil {
		c.log.Error("synthesis inconsistency",
			zap.String("pair", pair),
			zap.Error(err),
		)

		return nil, err
	}

	c.log.Debug("adapter synthesized",
		zap.String("pair", pair),
		zap.Int("members", len(p.Bindings)),
	)

	return &Factory{f: f, cache: c}, nil
}

func failedMembers(err error) []string {
	var be *BindingError
	if errors.As(err, &be) {
		return be.Members()
	}

	return nil
}

// chainer serves nested factories to the synthesizer.
type chainer struct {
	c *Cache
}

func (ch chainer) Factory(shapeType, targetType reflect.Type) (*synth.Factory, error) {
	f, err := ch.c.factory(plan.Key{Shape: shapeType, Target: targetType})
	if err != nil {
		return nil, err
	}

	return f.f, nil
}

// Factory creates shape values over instances of one target type.
type Factory struct {
	f     *synth.Factory
	cache *Cache
}

// New returns a new shape value wrapping instance. The dynamic type of
// instance must be the factory's target type.
func (f *Factory) New(instance any) (any, error) {
	v, err := f.f.New(instance)
	if err != nil {
		return nil, err
	}

	f.cache.metrics.proxiesCreated.Inc()

	return v.Interface(), nil
}

// Report describes the plan the factory was built from.
func (f *Factory) Report() PlanReport {
	return plan.NewReport(f.f.Plan())
}
