package plan

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"duckproxy/internal/common"
	"duckproxy/internal/diagnostic"
	"duckproxy/internal/match"
	"duckproxy/internal/shape"
	"duckproxy/internal/target"
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// PublicOnly restricts resolution to exported target members.
	PublicOnly bool
	// MaxCandidates is the maximum number of candidates to include in suggestions.
	MaxCandidates int
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		PublicOnly:    false,
		MaxCandidates: 5,
	}
}

// LookupFunc returns an already computed plan without blocking, if any.
type LookupFunc func(Key) (*Plan, bool)

// Resolver computes binding plans. It memoizes shape descriptors and target
// tables; it never waits on plans computed elsewhere.
type Resolver struct {
	config ResolutionConfig
	lookup LookupFunc

	shapes sync.Map // reflect.Type -> shapeResult
	tables sync.Map // reflect.Type -> *target.Table
}

type shapeResult struct {
	shape *shape.Shape
	err   error
}

// NewResolver creates a new Resolver. lookup may be nil.
func NewResolver(config ResolutionConfig, lookup LookupFunc) *Resolver {
	return &Resolver{config: config, lookup: lookup}
}

// Config returns the resolver configuration.
func (r *Resolver) Config() ResolutionConfig {
	return r.config
}

// Shape returns the memoized descriptor of the shape type t.
func (r *Resolver) Shape(t reflect.Type) (*shape.Shape, error) {
	if v, ok := r.shapes.Load(t); ok {
		res := v.(shapeResult)
		return res.shape, res.err
	}

	s, err := shape.Parse(t)
	v, _ := r.shapes.LoadOrStore(t, shapeResult{shape: s, err: err})
	res := v.(shapeResult)

	return res.shape, res.err
}

// Table returns the memoized member table of t.
func (r *Resolver) Table(t reflect.Type) *target.Table {
	if v, ok := r.tables.Load(t); ok {
		return v.(*target.Table)
	}

	v, _ := r.tables.LoadOrStore(t, target.Build(t))

	return v.(*target.Table)
}

// Resolve computes the plan of key. It also returns every plan computed
// along the way (key's own plan first, then chained pairs), so that callers
// can store them and never resolve those pairs again.
//
// A chained pair met again while it is still being resolved is assumed to
// bind. When such a pair fails after all, the session is run again with the
// failure known, so no returned plan rests on a broken assumption.
func (r *Resolver) Resolve(key Key) (*Plan, []*Plan) {
	failed := make(map[Key]error)

	for {
		s := &session{
			r:        r,
			plans:    make(map[Key]*Plan),
			visiting: make(map[Key]bool),
			assumed:  make(map[Key]bool),
			failed:   failed,
		}

		p := s.resolvePair(key)

		if s.settle() {
			continue
		}

		computed := make([]*Plan, 0, len(s.order))
		computed = append(computed, p)

		for _, k := range s.order {
			if k != key {
				computed = append(computed, s.plans[k])
			}
		}

		return p, computed
	}
}

// session is one resolution run. Chained pairs met while resolving are
// resolved in the same session; visiting cuts cycles.
type session struct {
	r        *Resolver
	plans    map[Key]*Plan
	order    []Key
	visiting map[Key]bool

	// assumed holds the pairs cut by visiting and taken to bind.
	assumed map[Key]bool
	// failed holds cut pairs known to fail from an earlier run.
	failed map[Key]error
}

// settle records the assumed pairs that failed. It reports whether any new
// failure was found, in which case the session must be run again.
func (s *session) settle() bool {
	again := false

	for k := range s.assumed {
		if _, known := s.failed[k]; known {
			continue
		}

		if p := s.plans[k]; p != nil && !p.Ok() {
			s.failed[k] = p.Err()
			again = true
		}
	}

	return again
}

func (s *session) resolvePair(key Key) *Plan {
	if p, ok := s.plans[key]; ok {
		return p
	}

	if s.r.lookup != nil {
		if p, ok := s.r.lookup(key); ok {
			return p
		}
	}

	s.visiting[key] = true
	defer delete(s.visiting, key)

	p := &Plan{Key: key}
	pair := key.String()

	sh, err := s.r.Shape(key.Shape)
	if err != nil {
		var be *diagnostic.BindingError
		if errors.As(err, &be) {
			for _, d := range be.Errors {
				p.Diagnostics.AddError(d.Code, d.Message, pair, d.Member, d.Suggestions...)
			}
		} else {
			p.Diagnostics.AddError(diagnostic.CodeInvalid, err.Error(), pair, "")
		}
	} else {
		p.Shape = sh
		p.Table = s.r.Table(key.Target)

		for _, req := range sh.Members {
			if b, ok := s.resolveMember(p, req); ok {
				p.Bindings = append(p.Bindings, b)
			}
		}
	}

	s.plans[key] = p
	s.order = append(s.order, key)

	return p
}

// candidate is one way a target could serve a requirement.
type candidate struct {
	rank    int
	binding Binding
	label   string
	// reason is set when the candidate does not fit.
	reason string
	// chain is set when a chained requirement could not be resolved.
	chain error
}

func (c *candidate) ok() bool {
	return c.reason == "" && c.chain == nil
}

// reject marks the candidate as unfit unless it already is.
func (c *candidate) reject(format string, args ...any) {
	if c.reason == "" {
		c.reason = fmt.Sprintf(format, args...)
	}
}

// require folds one compatibility check into the candidate.
func (c *candidate) require(res match.TypeCompatibilityResult, what string) {
	if !res.Ok() {
		c.reject("%s: %s cannot be used as %s", what, res.SourceType, res.TargetType)
		return
	}

	if res.Compatibility < c.binding.Compatibility {
		c.binding.Compatibility = res.Compatibility
	}
}

func (s *session) resolveMember(p *Plan, req shape.Requirement) (Binding, bool) {
	pair := p.Key.String()

	if isObjectContract(req) {
		p.Diagnostics.AddInfo(diagnostic.CodeFiltered, fmt.Sprintf("%s formats the target instance", req.TargetName), pair, req.Name)
		return Binding{Requirement: req, Kind: BindFiltered, Explanation: "object contract member"}, true
	}

	var cands []*candidate

	switch req.Kind {
	case shape.MemberMethod:
		cands = s.methodCandidates(p.Table, req)
	case shape.MemberProperty:
		cands = s.propertyCandidates(p.Table, req)
	case shape.MemberField:
		cands = s.fieldCandidates(p.Table, req, req.TargetName, 0)
	case shape.MemberIndexer:
		cands = s.indexerCandidates(p.Table, req)
	}

	best, ambiguous := pick(cands)

	switch {
	case best != nil && len(ambiguous) == 0:
		b := best.binding
		b.Explanation = explain(best, cands)

		if b.Compatibility == match.TypeNarrowing {
			p.Diagnostics.AddWarning(diagnostic.CodeNarrowing,
				fmt.Sprintf("%s narrows %s; values are checked at call time", req.Signature(), b.Explanation), pair, req.Name)
		}

		return b, true
	case len(ambiguous) > 0:
		labels := make([]string, 0, len(ambiguous))
		for _, c := range ambiguous {
			labels = append(labels, c.label)
		}

		p.Diagnostics.AddError(diagnostic.CodeAmbiguous,
			fmt.Sprintf("%d equally ranked candidates for %s", len(ambiguous), req.Signature()),
			pair, req.Name, labels...)

		return Binding{}, false
	}

	if req.Optional {
		p.Diagnostics.AddInfo(diagnostic.CodeOptional,
			fmt.Sprintf("target lacks optional %s; bound to a default", req.Signature()), pair, req.Name)

		return Binding{Requirement: req, Kind: BindDefault, Explanation: "optional member absent from target"}, true
	}

	var (
		reasons []string
		chain   error
	)

	for _, c := range cands {
		switch {
		case c.chain != nil:
			chain = c.chain
		case c.reason != "":
			reasons = append(reasons, c.label+": "+c.reason)
		}
	}

	if chain != nil {
		p.Diagnostics.AddError(diagnostic.CodeChainFailed,
			fmt.Sprintf("chained %s cannot be bound: %v", req.Signature(), chain), pair, req.Name)

		return Binding{}, false
	}

	msg := "no target member satisfies " + req.Signature()
	if len(reasons) > 0 {
		msg += ": " + strings.Join(reasons, "; ")
	}

	p.Diagnostics.AddError(diagnostic.CodeUnresolved, msg, pair, req.Name,
		s.suggest(p.Table, req)...)

	return Binding{}, false
}

// pick returns the best fitting candidate, or every fitting candidate sharing
// the lowest rank when there is more than one.
func pick(cands []*candidate) (*candidate, []*candidate) {
	var best []*candidate

	for _, c := range cands {
		if !c.ok() {
			continue
		}

		switch {
		case len(best) == 0 || c.rank < best[0].rank:
			best = []*candidate{c}
		case c.rank == best[0].rank:
			best = append(best, c)
		}
	}

	switch len(best) {
	case 0:
		return nil, nil
	case 1:
		return best[0], nil
	default:
		return nil, best
	}
}

func explain(best *candidate, cands []*candidate) string {
	var beaten []string

	for _, c := range cands {
		if c != best && c.ok() {
			beaten = append(beaten, c.label)
		}
	}

	if len(beaten) == 0 {
		return best.label
	}

	return best.label + " preferred over " + strings.Join(beaten, ", ")
}

func (s *session) suggest(tbl *target.Table, req shape.Requirement) []string {
	if tbl == nil {
		return nil
	}

	want := req.Value
	if req.Kind == shape.MemberMethod {
		want = req.Func
	}

	return match.Suggest(req.TargetName, want, tbl.Members(), s.r.config.MaxCandidates)
}

// isObjectContract reports whether req is a String/GoString method that is
// bound to the target's formatted form unless explicitly included.
func isObjectContract(req shape.Requirement) bool {
	if req.Kind != shape.MemberMethod || req.Include {
		return false
	}

	if req.TargetName != "String" && req.TargetName != "GoString" {
		return false
	}

	return req.Func.NumIn() == 0 && req.Func.NumOut() == 1 && req.Func.Out(0).Kind() == reflect.String
}

func (s *session) methodCandidates(tbl *target.Table, req shape.Requirement) []*candidate {
	var cands []*candidate

	name := req.TargetName

	if m, ok := tbl.Method(name); ok {
		c := &candidate{
			rank:    0,
			label:   "method " + name + funcSuffix(m.Type),
			binding: Binding{Requirement: req, Kind: BindMethod, Method: &m, Compatibility: match.TypeIdentical},
		}
		s.checkFunc(c, req, m.Type)
		cands = append(cands, c)
	}

	for _, owner := range tbl.AmbiguousMethod(name) {
		cands = append(cands, &candidate{rank: 0, label: "method " + name + " of " + owner})
	}

	for _, f := range tbl.Fields(name) {
		if f.Type.Kind() != reflect.Func {
			continue
		}

		c := &candidate{
			rank:    1,
			label:   "field " + fieldLabel(f),
			binding: Binding{Requirement: req, Kind: BindFuncField, Field: &f, Compatibility: match.TypeIdentical},
		}
		s.checkVisible(c, f)
		s.checkFunc(c, req, f.Type)
		cands = append(cands, c)
	}

	return cands
}

// checkFunc matches the call signature of a method requirement against tgt.
func (s *session) checkFunc(c *candidate, req shape.Requirement, tgt reflect.Type) {
	want := req.Func

	if want.NumIn() != tgt.NumIn() {
		c.reject("takes %d parameters, want %d", tgt.NumIn(), want.NumIn())
		return
	}

	if want.IsVariadic() != tgt.IsVariadic() {
		c.reject("variadic mismatch")
		return
	}

	for i := range req.Generic {
		if tgt.In(i) != want.In(i) {
			c.reject("parameter %d must be a reflect.Type type argument", i)
			return
		}
	}

	for i := req.Generic; i < want.NumIn(); i++ {
		c.require(match.ScoreParam(want.In(i), tgt.In(i), req.IsOut(i)), fmt.Sprintf("parameter %d", i))
	}

	extraErr := want.NumOut() == tgt.NumOut()+1 && match.IsErrorType(want.Out(want.NumOut()-1))
	if want.NumOut() != tgt.NumOut() && !extraErr {
		c.reject("returns %d results, want %d", tgt.NumOut(), want.NumOut())
		return
	}

	for i := range tgt.NumOut() {
		if i == 0 && req.Nested != nil {
			s.checkNested(c, req.Nested, tgt.Out(0))
			continue
		}

		c.require(match.ScoreTypeCompatibility(tgt.Out(i), want.Out(i)), fmt.Sprintf("result %d", i))
	}
}

func (s *session) checkVisible(c *candidate, f target.Field) {
	if !f.Exported && s.r.config.PublicOnly {
		c.reject("unexported field is not accessible in public-only mode")
	}
}

// checkNested resolves a chained requirement against the static type of the
// target member. Interface types are resolved at access time.
func (s *session) checkNested(c *candidate, n *shape.Nested, static reflect.Type) {
	nb := &NestedBinding{Shape: n.Shape, Pointer: n.Pointer, Static: static}
	c.binding.Nested = nb

	if static.Kind() == reflect.Interface {
		nb.Deferred = true
		return
	}

	if static.Kind() == reflect.Ptr && static.Elem().Kind() == reflect.Ptr {
		c.reject("cannot chain through %s", static)
		return
	}

	key := nb.Key()
	if s.visiting[key] {
		if err, ok := s.failed[key]; ok {
			c.chain = err
		} else {
			s.assumed[key] = true
		}

		return
	}

	if p := s.resolvePair(key); !p.Ok() {
		c.chain = p.Err()
	}
}

func (s *session) propertyCandidates(tbl *target.Table, req shape.Requirement) []*candidate {
	var cands []*candidate

	name := req.TargetName

	if m, ok := tbl.Method(name); ok {
		c := &candidate{
			rank:    0,
			label:   "method " + name + funcSuffix(m.Type),
			binding: Binding{Requirement: req, Kind: BindAccessors, Method: &m, Compatibility: match.TypeIdentical},
		}

		switch {
		case m.Type.NumIn() != 0 || m.Type.NumOut() != 1:
			c.reject("getter must take no parameters and return one value")
		case req.Nested != nil:
			s.checkNested(c, req.Nested, m.Type.Out(0))
		default:
			c.require(match.ScoreTypeCompatibility(m.Type.Out(0), req.Value), "getter result")
		}

		if req.Writable() {
			s.checkSetter(c, tbl, "Set"+name, []reflect.Type{req.Value})
		}

		cands = append(cands, c)
	}

	cands = append(cands, s.fieldCandidates(tbl, req, name, 1)...)

	if lower := common.LowerFirst(name); lower != name {
		cands = append(cands, s.fieldCandidates(tbl, req, lower, 2)...)
	}

	return cands
}

// checkSetter looks up the setter of a writable accessor binding. The setter
// takes the given parameter types (key and value for indexers) and returns nothing.
func (s *session) checkSetter(c *candidate, tbl *target.Table, name string, params []reflect.Type) {
	setter, ok := tbl.Method(name)
	if !ok {
		c.reject("writable member has no setter %s", name)
		return
	}

	if setter.Type.NumIn() != len(params) || setter.Type.NumOut() != 0 {
		c.reject("setter %s must take %d parameters and return nothing", name, len(params))
		return
	}

	for i, p := range params {
		c.require(match.ScoreTypeCompatibility(p, setter.Type.In(i)), fmt.Sprintf("setter parameter %d", i))
	}

	c.binding.Setter = &setter
	c.label += " / " + name + funcSuffix(setter.Type)
}

// fieldCandidates lists the fields named name at the shallowest depth. Field
// requirements need identical types; properties accept the compatibility ladder.
func (s *session) fieldCandidates(tbl *target.Table, req shape.Requirement, name string, rank int) []*candidate {
	var cands []*candidate

	for _, f := range tbl.Fields(name) {
		c := &candidate{
			rank:    rank,
			label:   "field " + fieldLabel(f),
			binding: Binding{Requirement: req, Kind: BindField, Field: &f, Compatibility: match.TypeIdentical},
		}

		s.checkVisible(c, f)

		switch {
		case req.Nested != nil:
			s.checkNested(c, req.Nested, f.Type)
		case req.Kind == shape.MemberField:
			if f.Type != req.Value {
				c.reject("field type %s is not identical to %s", f.Type, req.Value)
			}
		default:
			c.require(match.ScoreTypeCompatibility(f.Type, req.Value), "field read")

			if req.Writable() {
				c.require(match.ScoreTypeCompatibility(req.Value, f.Type), "field write")
			}
		}

		cands = append(cands, c)
	}

	return cands
}

func (s *session) indexerCandidates(tbl *target.Table, req shape.Requirement) []*candidate {
	var cands []*candidate

	name := req.TargetName

	if m, ok := tbl.Method(name); ok {
		c := &candidate{
			rank:    0,
			label:   "method " + name + funcSuffix(m.Type),
			binding: Binding{Requirement: req, Kind: BindIndexMethods, Method: &m, Compatibility: match.TypeIdentical},
		}

		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			c.reject("keyed getter must take one key and return one value")
		} else {
			c.require(match.ScoreTypeCompatibility(req.Key, m.Type.In(0)), "key")
			s.elementCheck(c, req, m.Type.Out(0))
		}

		if req.Writable() {
			s.checkSetter(c, tbl, "Set"+name, []reflect.Type{req.Key, req.Value})
		}

		cands = append(cands, c)
	}

	cands = append(cands, s.indexFieldCandidates(tbl, req, name, 1)...)

	if lower := common.LowerFirst(name); lower != name {
		cands = append(cands, s.indexFieldCandidates(tbl, req, lower, 2)...)
	}

	return cands
}

var intType = reflect.TypeFor[int]()

func (s *session) indexFieldCandidates(tbl *target.Table, req shape.Requirement, name string, rank int) []*candidate {
	var cands []*candidate

	for _, f := range tbl.Fields(name) {
		c := &candidate{
			rank:    rank,
			label:   "field " + fieldLabel(f),
			binding: Binding{Requirement: req, Kind: BindIndexField, Field: &f, Compatibility: match.TypeIdentical},
		}

		s.checkVisible(c, f)

		switch f.Type.Kind() {
		case reflect.Map:
			c.require(match.ScoreTypeCompatibility(req.Key, f.Type.Key()), "key")
		case reflect.Slice, reflect.Array:
			c.require(match.ScoreTypeCompatibility(req.Key, intType), "index")
		default:
			c.reject("field of type %s cannot be indexed", f.Type)
			cands = append(cands, c)

			continue
		}

		s.elementCheck(c, req, f.Type.Elem())

		if req.Writable() && req.Nested == nil {
			c.require(match.ScoreTypeCompatibility(req.Value, f.Type.Elem()), "element write")
		}

		cands = append(cands, c)
	}

	return cands
}

func (s *session) elementCheck(c *candidate, req shape.Requirement, elem reflect.Type) {
	if req.Nested != nil {
		s.checkNested(c, req.Nested, elem)
		return
	}

	c.require(match.ScoreTypeCompatibility(elem, req.Value), "element read")
}
