package duck

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

type list struct {
	length int
	items  []string
	Title  string
	parent *list
}

func (l *list) Length() int     { return l.length }
func (l *list) Name() string    { return "list" }
func (l *list) Label() string   { return "label:" + l.Title }
func (l *list) Parent() *list   { return l.parent }
func (l *list) Add(item string) { l.items = append(l.items, item); l.length = len(l.items) }

func (l *list) TryGet(i int, out *string) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}

	*out = l.items[i]

	return true
}

type hasLength struct {
	Proxy

	Length Property[int] `duck:",readonly"`
}

type mutableList struct {
	Proxy

	Title  Property[string]
	Add    func(item string)
	TryGet func(i int, out *string) bool `duck:",out=1"`
	Name   func() string                 `duck:"Label"`
	Length Property[int]                 `duck:",readonly"`
}

type listSnapshot struct {
	Copy

	Length int
	Title  string
}

type withParent struct {
	Proxy

	Parent func() *hasLength
}

type misspelled struct {
	Proxy

	Lenght Property[int] `duck:",readonly"`
}

type needsMissing struct {
	Proxy

	Missing func()
}

type badParent struct {
	Proxy

	Parent func() *needsMissing
}

// cycA over *cycT1 chains to cycB over *cycT2 and back; *cycT1 lacks Missing.
type cycA struct {
	Proxy

	Other   func() *cycB
	Missing func()
}

type cycB struct {
	Proxy

	Back func() *cycA
}

type cycT1 struct{ other *cycT2 }

func (c *cycT1) Other() *cycT2 { return c.other }

type cycT2 struct{ back *cycT1 }

func (c *cycT2) Back() *cycT1 { return c.back }

type leftCloser struct{}

func (leftCloser) Close() error { return nil }

type rightCloser struct{}

func (rightCloser) Close() error { return nil }

type twoClosers struct {
	leftCloser
	rightCloser
}

type closer struct {
	Proxy

	Close func() error
}

// Lengther is an interface shape with a hand-written adapter.
type Lengther interface {
	Len() int
}

type lengtherAdapter struct {
	Proxy

	LenFn func() int `duck:"Len"`
}

func (a lengtherAdapter) Len() int { return a.LenFn() }

type sized struct{ n int }

func (s *sized) Len() int { return s.n }

type smallSized struct{}

func (smallSized) Len() int32 { return 4 }

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()

	return NewCache(append([]Option{WithRegisterer(prometheus.NewRegistry())}, opts...)...)
}

func resolutions(c *Cache, result string) float64 {
	return testutil.ToFloat64(c.metrics.resolutions.WithLabelValues(result))
}

func syntheses(c *Cache, result string) float64 {
	return testutil.ToFloat64(c.metrics.syntheses.WithLabelValues(result))
}

func TestCreate_PropertyBeatsField(t *testing.T) {
	c := newTestCache(t)
	l := &list{length: 3}

	s, err := Create[hasLength](c, l)
	require.NoError(t, err)

	assert.Equal(t, l.Length(), s.Length.Get())
	assert.False(t, s.Length.CanSet())
	assert.Same(t, l, s.Instance())

	report, err := c.Plan(reflect.TypeFor[hasLength](), reflect.TypeFor[*list]())
	require.NoError(t, err)
	require.Len(t, report.Members, 1)
	assert.Equal(t, "method Length() int", report.Members[0].Target)
	assert.Contains(t, report.Members[0].Explanation, "preferred over field length int")
}

func TestCreate_Determinism(t *testing.T) {
	c := newTestCache(t)

	for i := range 10 {
		s, err := Create[hasLength](c, &list{length: i})
		require.NoError(t, err)
		assert.Equal(t, i, s.Length.Get())
	}

	assert.Equal(t, 1.0, resolutions(c, resultOK))
	assert.Equal(t, 1.0, syntheses(c, resultOK))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.misses))
	assert.Equal(t, 9.0, testutil.ToFloat64(c.metrics.hits))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.metrics.proxiesCreated))
}

func TestCreate_ForwardingAndSnapshot(t *testing.T) {
	c := newTestCache(t)
	l := &list{Title: "a"}

	live, err := Create[mutableList](c, l)
	require.NoError(t, err)

	snap, err := Create[listSnapshot](c, l)
	require.NoError(t, err)

	live.Title.Set("b")
	assert.Equal(t, "b", l.Title)

	live.Add("x")
	live.Add("y")
	assert.Equal(t, 2, l.Length())
	assert.Equal(t, 2, live.Length.Get())

	assert.Equal(t, "a", snap.Title)
	assert.Equal(t, 0, snap.Length)
}

func TestCreate_OutParameter(t *testing.T) {
	c := newTestCache(t)
	l := &list{items: []string{"first"}, length: 1}

	s, err := Create[mutableList](c, l)
	require.NoError(t, err)

	var got, want string
	assert.Equal(t, l.TryGet(0, &want), s.TryGet(0, &got))
	assert.Equal(t, want, got)

	got = "unchanged"
	assert.False(t, s.TryGet(5, &got))
	assert.Equal(t, "unchanged", got)
}

func TestCreate_Rename(t *testing.T) {
	c := newTestCache(t)

	s, err := Create[mutableList](c, &list{Title: "t"})
	require.NoError(t, err)

	assert.Equal(t, "label:t", s.Name())
}

func TestCreate_Ambiguous(t *testing.T) {
	c := newTestCache(t)

	_, err := Create[closer](c, &twoClosers{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousMember)

	var be *BindingError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, []string{"Close"}, be.Members())
	assert.Len(t, be.Errors[0].Suggestions, 2, spew.Sdump(be.Errors))
}

func TestCreate_FailureCachedAndLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestCache(t, WithLogger(zap.New(core)))

	for range 3 {
		_, err := Create[misspelled](c, &list{})
		assert.ErrorIs(t, err, ErrUnresolvedMember)

		_, ok := TryCreate[misspelled](c, &list{})
		assert.False(t, ok)
	}

	assert.False(t, CanCreate[misspelled](c, &list{}))
	assert.Equal(t, 1.0, resolutions(c, resultFailed))
	assert.Equal(t, 0.0, syntheses(c, resultOK))
	assert.Equal(t, 1, logs.FilterMessage("shape cannot bind target").Len())

	_, err := Create[hasLength](c, &list{})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("adapter synthesized").Len())
}

func TestCreate_LazyChaining(t *testing.T) {
	c := newTestCache(t)
	l := &list{parent: &list{length: 4}}

	s, err := Create[withParent](c, l)
	require.NoError(t, err)

	assert.Equal(t, 2.0, resolutions(c, resultOK), "the chained pair is planned with the outer one")
	assert.Equal(t, 1.0, syntheses(c, resultOK), "the chained adapter waits for first access")

	p := s.Parent()
	require.NotNil(t, p)
	assert.Equal(t, 4, p.Length.Get())
	assert.Equal(t, 2.0, syntheses(c, resultOK))

	s.Parent()
	assert.Equal(t, 2.0, syntheses(c, resultOK))
	assert.Equal(t, 2.0, resolutions(c, resultOK))

	l.parent = nil
	assert.Nil(t, s.Parent())

	_, err = Create[hasLength](c, &list{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, resolutions(c, resultOK), "stored chained plans are not resolved again")
}

func TestCreate_ChainFailure(t *testing.T) {
	c := newTestCache(t)

	_, err := Create[badParent](c, &list{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedMember)

	var be *BindingError
	require.True(t, errors.As(err, &be))
	assert.True(t, be.Has(CodeChainFailed))
}

func TestCreate_FailingCycleOrderIndependent(t *testing.T) {
	t1 := &cycT1{}
	t2 := &cycT2{back: t1}
	t1.other = t2

	direct := newTestCache(t)

	_, err := Create[cycB](direct, t2)
	assert.ErrorIs(t, err, ErrUnresolvedMember)

	viaChain := newTestCache(t)

	_, err = Create[cycA](viaChain, t1)
	assert.ErrorIs(t, err, ErrUnresolvedMember)

	_, err = Create[cycB](viaChain, t2)
	require.Error(t, err, "the chained pair must not be stored as bindable")

	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Has(CodeChainFailed))
	assert.Equal(t, 2.0, resolutions(viaChain, resultFailed))
	assert.Equal(t, 0.0, resolutions(viaChain, resultOK))
}

func TestCreate_ConcurrentChainedAndDirect(t *testing.T) {
	for range 20 {
		c := newTestCache(t)

		var g errgroup.Group

		for i := range 16 {
			g.Go(func() error {
				l := &list{length: i, parent: &list{length: i}}

				if i%2 == 0 {
					s, err := Create[withParent](c, l)
					if err != nil {
						return err
					}

					if s.Parent().Length.Get() != i {
						return errors.New("chained proxy reads another instance")
					}

					return nil
				}

				_, err := Create[hasLength](c, l)

				return err
			})
		}

		require.NoError(t, g.Wait())
		assert.Equal(t, 2.0, resolutions(c, resultOK), "each pair is resolved once")
		assert.Equal(t, 2.0, syntheses(c, resultOK))
	}
}

func TestCreate_Concurrent(t *testing.T) {
	c := newTestCache(t)

	const n = 32

	var g errgroup.Group

	for i := range n {
		g.Go(func() error {
			s, err := Create[hasLength](c, &list{length: i})
			if err != nil {
				return err
			}

			if got := s.Length.Get(); got != i {
				return errors.New("proxy reads another instance")
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, 1.0, resolutions(c, resultOK))
	assert.Equal(t, 1.0, syntheses(c, resultOK))
}

func TestCreate_PointerShape(t *testing.T) {
	c := newTestCache(t)

	s, err := Create[*hasLength](c, &list{length: 2})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Length.Get())
}

func TestCreate_NilInstance(t *testing.T) {
	c := newTestCache(t)

	_, err := Create[hasLength](c, nil)
	assert.ErrorIs(t, err, ErrNilInstance)

	_, err = Create[hasLength](c, (*list)(nil))
	assert.ErrorIs(t, err, ErrNilInstance)

	assert.False(t, CanCreate[hasLength](c, nil))
}

func TestCreate_InvalidShape(t *testing.T) {
	type noMarker struct {
		Length Property[int]
	}

	c := newTestCache(t)

	_, err := Create[noMarker](c, &list{})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestRegisterInterface(t *testing.T) {
	c := newTestCache(t)

	_, err := Create[Lengther](c, smallSized{})
	assert.ErrorIs(t, err, ErrInvalidShape, "unregistered interface")

	require.NoError(t, RegisterInterface[Lengther, lengtherAdapter](c))
	require.NoError(t, RegisterInterface[Lengther, lengtherAdapter](c), "registering twice is a no-op")

	direct := &sized{n: 7}
	got, err := Create[Lengther](c, direct)
	require.NoError(t, err)
	assert.Same(t, direct, got, "implementations are returned unchanged")

	adapted, err := Create[Lengther](c, smallSized{})
	require.NoError(t, err)
	assert.IsType(t, lengtherAdapter{}, adapted)
	assert.Equal(t, 4, adapted.Len())

	assert.True(t, CanCreate[Lengther](c, smallSized{}))

	assert.ErrorIs(t, RegisterInterface[hasLength, lengtherAdapter](c), ErrInvalidShape)
	assert.ErrorIs(t, RegisterInterface[Lengther, listSnapshot](c), ErrInvalidShape)
}

func TestExportPlans(t *testing.T) {
	c := newTestCache(t)

	_, err := Create[hasLength](c, &list{})
	require.NoError(t, err)

	_, err = Create[misspelled](c, &list{})
	require.Error(t, err)

	out, err := c.ExportPlans()
	require.NoError(t, err)

	assert.Contains(t, string(out), "shape: duck.hasLength")
	assert.Contains(t, string(out), "*duck.list")
	assert.NotContains(t, string(out), "misspelled")
}

func TestOptions(t *testing.T) {
	c := NewCache(
		WithConfig(Config{LogLevel: "debug"}),
		WithPublicOnly(true),
		WithMaxCandidates(2),
	)

	assert.Equal(t, Config{PublicOnly: true, MaxCandidates: 2, LogLevel: "debug"}, c.Config())

	type rawLength struct {
		Proxy

		Length Property[int] `duck:"length,field,readonly"`
	}

	_, err := Create[hasLength](c, &list{length: 1})
	require.NoError(t, err)

	_, err = Create[rawLength](c, &list{length: 1})
	assert.ErrorIs(t, err, ErrUnresolvedMember, "unexported fields are out of reach")
}
