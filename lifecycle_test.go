package beans

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types for lifecycle tests
type tracker struct {
	events []string
}

func (tr *tracker) record(event string) {
	tr.events = append(tr.events, event)
}

type trackedBean struct {
	tr   *tracker
	name string
}

func newTracked(tr *tracker, name string) *trackedBean {
	tr.record("create:" + name)
	return &trackedBean{tr: tr, name: name}
}

func (b *trackedBean) Close() error {
	b.tr.record("close:" + b.name)
	return nil
}

func TestPreInstantiateSingletons(t *testing.T) {
	f := New()
	defer f.Close()
	tr := &tracker{}

	require.NoError(t, f.RegisterDefinition("first", NewDefinition(func() *trackedBean { return newTracked(tr, "first") })))
	require.NoError(t, f.RegisterDefinition("lazy", NewDefinition(func() *trackedBean { return newTracked(tr, "lazy") }, Lazy())))
	require.NoError(t, f.RegisterDefinition("proto", NewDefinition(func() *trackedBean { return newTracked(tr, "proto") }, Prototype())))
	require.NoError(t, f.RegisterDefinition("template", NewDefinition(nil, Abstract())))
	require.NoError(t, f.RegisterDefinition("second", NewDefinition(func() *trackedBean { return newTracked(tr, "second") })))

	require.NoError(t, f.PreInstantiateSingletons())

	assert.Equal(t, []string{"create:first", "create:second"}, tr.events,
		"lazy, prototype and abstract definitions must not be instantiated")
	assert.True(t, f.ContainsSingleton("first"))
	assert.False(t, f.ContainsSingleton("lazy"))

	// Lazy beans still materialize on demand.
	_, err := f.GetBean("lazy")
	require.NoError(t, err)
	assert.Contains(t, tr.events, "create:lazy")
}

func TestAbstractDefinitionCannotBeInstantiated(t *testing.T) {
	f := New()
	defer f.Close()
	require.NoError(t, f.RegisterDefinition("template", NewDefinition(nil, Abstract())))

	_, err := f.GetBean("template")
	var verr *DefinitionValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "template", verr.Name)
}

type initBean struct {
	initialized bool
	fail        bool
}

func (b *initBean) Init() error {
	if b.fail {
		return errors.New("init failed")
	}
	b.initialized = true
	return nil
}

func TestInitializable(t *testing.T) {
	t.Run("InitRunsAfterConstruction", func(t *testing.T) {
		f := New()
		defer f.Close()
		require.NoError(t, f.RegisterDefinition("bean", NewDefinition(func() *initBean { return &initBean{} })))

		b, err := GetNamed[*initBean](f, "bean")
		require.NoError(t, err)
		assert.True(t, b.initialized)
	})

	t.Run("InitFailureAbortsCreation", func(t *testing.T) {
		f := New()
		defer f.Close()
		require.NoError(t, f.RegisterDefinition("bean", NewDefinition(func() *initBean { return &initBean{fail: true} })))

		_, err := f.GetBean("bean")
		var cerr *CreationError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "bean", cerr.Name)
		assert.False(t, f.ContainsSingleton("bean"), "failed beans must not be cached")
	})
}

type smartBean struct {
	f        *Factory
	otherSet bool
}

func (b *smartBean) AfterSingletonsInstantiated() error {
	// By callback time every eager singleton exists.
	b.otherSet = b.f.ContainsSingleton("other")
	return nil
}

func TestSmartInitializerRunsAfterAllSingletons(t *testing.T) {
	f := New()
	defer f.Close()

	require.NoError(t, f.RegisterDefinition("smart", NewDefinition(func(factory *Factory) *smartBean {
		return &smartBean{f: factory}
	})))
	require.NoError(t, f.RegisterDefinition("other", NewDefinition(NewDatabase)))

	require.NoError(t, f.PreInstantiateSingletons())

	smart, err := GetNamed[*smartBean](f, "smart")
	require.NoError(t, err)
	assert.True(t, smart.otherSet,
		"callback must run after every singleton is instantiated, even ones registered later")
}

func TestDependsOnControlsCreationOrder(t *testing.T) {
	f := New()
	defer f.Close()
	tr := &tracker{}

	require.NoError(t, f.RegisterDefinition("app", NewDefinition(func() *trackedBean { return newTracked(tr, "app") }, DependsOn("migrations"))))
	require.NoError(t, f.RegisterDefinition("migrations", NewDefinition(func() *trackedBean { return newTracked(tr, "migrations") })))

	_, err := f.GetBean("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"create:migrations", "create:app"}, tr.events)
}

func TestDisposalOrder(t *testing.T) {
	f := New()
	tr := &tracker{}

	require.NoError(t, f.RegisterDefinition("a", NewDefinition(func() *trackedBean { return newTracked(tr, "a") })))
	require.NoError(t, f.RegisterDefinition("b", NewDefinition(func() *trackedBean { return newTracked(tr, "b") })))
	require.NoError(t, f.PreInstantiateSingletons())

	require.NoError(t, f.Close())
	assert.Equal(t, []string{"create:a", "create:b", "close:b", "close:a"}, tr.events,
		"singletons must be disposed in reverse creation order")
}

func TestCircularSingletonReferenceFails(t *testing.T) {
	type ServiceA struct{ b any }
	type ServiceB struct{ a any }

	f := New()
	defer f.Close()
	require.NoError(t, f.RegisterDefinition("a", NewDefinition(func(b *ServiceB) *ServiceA { return &ServiceA{b: b} })))
	require.NoError(t, f.RegisterDefinition("b", NewDefinition(func(a *ServiceA) *ServiceB { return &ServiceB{a: a} })))

	_, err := f.GetBean("a")
	require.Error(t, err)
	assert.True(t, isCurrentlyInCreation(err), "expected a circular-reference failure, got %v", err)
}

func TestCircularPrototypeReferenceFails(t *testing.T) {
	type ProtoA struct{ b any }
	type ProtoB struct{ a any }

	f := New()
	defer f.Close()
	require.NoError(t, f.RegisterDefinition("a", NewDefinition(func(b *ProtoB) *ProtoA { return &ProtoA{b: b} }, Prototype())))
	require.NoError(t, f.RegisterDefinition("b", NewDefinition(func(a *ProtoA) *ProtoB { return &ProtoB{a: a} }, Prototype())))

	_, err := f.GetBean("a")
	require.Error(t, err)
	assert.True(t, isCurrentlyInCreation(err), "expected a circular-reference failure, got %v", err)
}

func TestValidateDependencies(t *testing.T) {
	type ServiceA struct{ b any }
	type ServiceB struct{ a any }

	t.Run("DetectsConstructorCycle", func(t *testing.T) {
		f := New()
		defer f.Close()
		require.NoError(t, f.RegisterDefinition("a", NewDefinition(func(b *ServiceB) *ServiceA { return &ServiceA{b: b} })))
		require.NoError(t, f.RegisterDefinition("b", NewDefinition(func(a *ServiceA) *ServiceB { return &ServiceB{a: a} })))

		err := f.ValidateDependencies()
		var cycle *CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.ElementsMatch(t, []string{"a", "b"}, cycle.Path)
	})

	t.Run("DetectsDependsOnCycle", func(t *testing.T) {
		f := New()
		defer f.Close()
		require.NoError(t, f.RegisterDefinition("x", NewDefinition(NewDatabase, DependsOn("y"))))
		require.NoError(t, f.RegisterDefinition("y", NewDefinition(func() *UserStore { return &UserStore{} }, DependsOn("x"))))

		err := f.ValidateDependencies()
		var cycle *CircularDependencyError
		assert.ErrorAs(t, err, &cycle)
	})

	t.Run("AcyclicGraphPasses", func(t *testing.T) {
		f := New()
		defer f.Close()
		require.NoError(t, f.RegisterDefinition("db", NewDefinition(NewDatabase)))
		require.NoError(t, f.RegisterDefinition("store", NewDefinition(NewUserStore)))

		assert.NoError(t, f.ValidateDependencies())
	})
}

// widget and widgetProducer exercise the producer protocol.
type widget struct {
	Serial int
}

type widgetProducer struct {
	built int
	eager bool
}

func (p *widgetProducer) Produce() (any, error) {
	p.built++
	return &widget{Serial: p.built}, nil
}

func (p *widgetProducer) ProductType() reflect.Type {
	return reflect.TypeOf(&widget{})
}

func (p *widgetProducer) EagerProduct() bool { return p.eager }

func TestProducerBeans(t *testing.T) {
	f := New()
	defer f.Close()
	require.NoError(t, f.RegisterDefinition("widget", NewDefinition(func() *widgetProducer { return &widgetProducer{} })))

	t.Run("NameYieldsProduct", func(t *testing.T) {
		v, err := f.GetBean("widget")
		require.NoError(t, err)
		w, ok := v.(*widget)
		require.True(t, ok)
		assert.Equal(t, 1, w.Serial)
	})

	t.Run("ProductIsCached", func(t *testing.T) {
		first, err := f.GetBean("widget")
		require.NoError(t, err)
		second, err := f.GetBean("widget")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("PrefixedNameYieldsProducer", func(t *testing.T) {
		v, err := f.GetBean("&widget")
		require.NoError(t, err)
		assert.IsType(t, &widgetProducer{}, v)
	})

	t.Run("TypeScanMatchesProductType", func(t *testing.T) {
		names := f.BeanNamesForType(reflect.TypeOf(&widget{}), true, true)
		assert.Equal(t, []string{"widget"}, names)
	})

	t.Run("TypeScanMatchesProducerUnderPrefix", func(t *testing.T) {
		names := f.BeanNamesForType(reflect.TypeOf(&widgetProducer{}), true, true)
		assert.Equal(t, []string{"&widget"}, names)
	})

	t.Run("ProductResolvesAsDependency", func(t *testing.T) {
		v, err := f.ResolveDependency(DepOf[*widget](), "")
		require.NoError(t, err)
		assert.IsType(t, &widget{}, v)
	})

	t.Run("PrefixOnOrdinaryBeanFails", func(t *testing.T) {
		require.NoError(t, f.RegisterSingleton("plain", &widget{}))
		_, err := f.GetBean("&plain")
		var typeErr *BeanNotOfRequiredTypeError
		assert.ErrorAs(t, err, &typeErr)
	})
}

func TestProducerEagerness(t *testing.T) {
	t.Run("LazyProductByDefault", func(t *testing.T) {
		f := New()
		defer f.Close()
		producer := &widgetProducer{}
		require.NoError(t, f.RegisterDefinition("widget", NewDefinition(func() *widgetProducer { return producer })))

		require.NoError(t, f.PreInstantiateSingletons())
		assert.Zero(t, producer.built, "product must not be created unless the producer opts in")

		_, err := f.GetBean("widget")
		require.NoError(t, err)
		assert.Equal(t, 1, producer.built)
	})

	t.Run("EagerProductOptIn", func(t *testing.T) {
		f := New()
		defer f.Close()
		producer := &widgetProducer{eager: true}
		require.NoError(t, f.RegisterDefinition("widget", NewDefinition(func() *widgetProducer { return producer })))

		require.NoError(t, f.PreInstantiateSingletons())
		assert.Equal(t, 1, producer.built)
	})
}

func TestProducerFailure(t *testing.T) {
	f := New()
	defer f.Close()
	require.NoError(t, f.RegisterSingleton("bad", &failingProducer{}))

	_, err := f.GetBean("bad")
	var cerr *CreationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "bad", cerr.Name)
}

type failingProducer struct{}

func (*failingProducer) Produce() (any, error) {
	return nil, errors.New("cannot produce")
}

func (*failingProducer) ProductType() reflect.Type {
	return reflect.TypeOf(&widget{})
}
