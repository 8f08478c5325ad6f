package beans

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/harborlight/beans/internal/graph"
	"github.com/harborlight/beans/internal/reflection"
	"github.com/harborlight/beans/internal/typeindex"
)

// Factory is the bean container: a registry of bean definitions plus the
// engine resolving dependencies between them. A Factory may delegate
// lookups it cannot satisfy to an optional parent, forming a hierarchy.
//
// All operations are safe for concurrent use.
type Factory struct {
	id     string
	parent *Factory
	logger *slog.Logger

	store      *definitionStore
	index      *typeindex.Index
	singletons *singletonCache

	// products caches the objects manufactured by singleton producers,
	// keyed by the producer's canonical bean name.
	products sync.Map

	// resolvable maps a registered type directly to an injection value,
	// short-circuiting the candidate search for that type.
	resolvable sync.Map // reflect.Type -> any

	// prototype names in creation, per goroutine
	protoMu    sync.Mutex
	prototypes map[uint64]map[string]bool

	confMu                   sync.RWMutex
	allowOverriding          bool
	allowEagerTypeResolution bool
	comparator               DependencyComparator
	selector                 CandidateSelector

	registry *FactoryRegistry
	closed   atomic.Bool
}

// Option configures a Factory at construction time.
type Option func(*Factory)

// WithParentFactory links the new factory to a parent it delegates
// unresolvable lookups to.
func WithParentFactory(parent *Factory) Option {
	return func(f *Factory) { f.parent = parent }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRegistry sets the registry the factory announces itself to. Defaults
// to the package-level registry.
func WithRegistry(r *FactoryRegistry) Option {
	return func(f *Factory) { f.registry = r }
}

// New creates an empty Factory.
func New(opts ...Option) *Factory {
	f := &Factory{
		id:                       uuid.NewString(),
		logger:                   slog.Default(),
		store:                    newDefinitionStore(),
		index:                    typeindex.New(),
		singletons:               newSingletonCache(),
		prototypes:               make(map[uint64]map[string]bool),
		allowOverriding:          true,
		allowEagerTypeResolution: true,
		comparator:               NewOrderComparator(),
		selector:                 SimpleCandidateSelector{},
		registry:                 DefaultRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	// The factory injects itself wherever a constructor asks for it.
	f.resolvable.Store(reflect.TypeOf(f), f)

	if f.registry != nil {
		f.registry.Register(f)
	}
	return f
}

// ID returns the factory's unique identifier.
func (f *Factory) ID() string { return f.id }

// Parent returns the parent factory, or nil.
func (f *Factory) Parent() *Factory { return f.parent }

// ----- configuration -----

// SetAllowDefinitionOverriding controls whether registering a definition
// under an occupied name replaces the previous definition (default) or
// fails with StoreConflictError.
func (f *Factory) SetAllowDefinitionOverriding(allow bool) {
	f.confMu.Lock()
	defer f.confMu.Unlock()
	f.allowOverriding = allow
}

// AllowDefinitionOverriding reports the current override policy.
func (f *Factory) AllowDefinitionOverriding() bool {
	f.confMu.RLock()
	defer f.confMu.RUnlock()
	return f.allowOverriding
}

// SetAllowEagerTypeResolution controls whether type scans may probe
// producers to learn their product type even when the scan itself did not
// request eager initialization. Enabled by default.
func (f *Factory) SetAllowEagerTypeResolution(allow bool) {
	f.confMu.Lock()
	defer f.confMu.Unlock()
	f.allowEagerTypeResolution = allow
}

// SetDependencyComparator replaces the comparator ordering multi-bean
// results and supplying disambiguation priorities. A nil comparator keeps
// candidate order and skips the priority tier.
func (f *Factory) SetDependencyComparator(cmp DependencyComparator) {
	f.confMu.Lock()
	defer f.confMu.Unlock()
	f.comparator = cmp
}

// SetCandidateSelector replaces the autowire-candidate strategy. A nil
// selector restores the default.
func (f *Factory) SetCandidateSelector(sel CandidateSelector) {
	f.confMu.Lock()
	defer f.confMu.Unlock()
	if sel == nil {
		sel = SimpleCandidateSelector{}
	}
	f.selector = sel
}

func (f *Factory) candidateSelector() CandidateSelector {
	f.confMu.RLock()
	defer f.confMu.RUnlock()
	return f.selector
}

func (f *Factory) dependencyComparator() DependencyComparator {
	f.confMu.RLock()
	defer f.confMu.RUnlock()
	return f.comparator
}

func (f *Factory) eagerTypeResolutionAllowed() bool {
	f.confMu.RLock()
	defer f.confMu.RUnlock()
	return f.allowEagerTypeResolution
}

// FreezeConfiguration declares the set of definitions final. Freezing
// enables metadata caching; it does not reject later registrations, which
// simply invalidate the caches again.
func (f *Factory) FreezeConfiguration() {
	f.store.freeze()
}

// IsConfigurationFrozen reports whether the configuration was frozen.
func (f *Factory) IsConfigurationFrozen() bool {
	return f.store.isFrozen()
}

// ----- definition registration -----

// RegisterDefinition validates the definition and binds it under the given
// name. Replacing an existing definition is governed by the override
// policy; a replacement (or a registration shadowing an already cached
// singleton) resets the affected bean and every definition derived from it.
func (f *Factory) RegisterDefinition(name string, def *Definition) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	if name == "" {
		return ErrBeanNameEmpty
	}
	if def == nil {
		return &DefinitionValidationError{Name: name, Cause: ErrDefinitionNil}
	}
	if err := def.Validate(); err != nil {
		if verr, ok := err.(*DefinitionValidationError); ok {
			verr.Name = name
			return verr
		}
		return &DefinitionValidationError{Name: name, Cause: err}
	}

	existing, hasExisting := f.store.get(name)
	if hasExisting {
		if !f.AllowDefinitionOverriding() {
			return &StoreConflictError{Name: name, Existing: existing}
		}
		switch {
		case def.Role > existing.Role:
			f.logger.Warn("overriding user-defined bean definition with framework-generated definition",
				"name", name, "role", def.Role.String())
		case !existing.equivalent(def):
			f.logger.Info("overriding bean definition with a different definition", "name", name)
		default:
			f.logger.Debug("overriding bean definition with an equivalent definition", "name", name)
		}
	}

	f.store.register(name, def)
	if hasExisting || f.singletons.contains(name) {
		f.resetDefinition(name)
	}
	f.index.Clear()
	return nil
}

// RemoveDefinition unbinds the named definition, resetting its singleton
// and every definition derived from it. Removal of an unknown name fails
// regardless of the override policy.
func (f *Factory) RemoveDefinition(name string) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	if name == "" {
		return ErrBeanNameEmpty
	}
	if _, ok := f.store.remove(name); !ok {
		return &NoSuchDefinitionError{Name: name}
	}
	f.resetDefinition(name)
	f.index.Clear()
	return nil
}

// resetDefinition destroys the bean's cached instances and cascades to
// definitions naming it as their parent.
func (f *Factory) resetDefinition(name string) {
	f.destroyCachedInstances(name)
	for _, n := range f.store.definitionNames() {
		if n == name {
			continue
		}
		if d, ok := f.store.get(n); ok && d.Parent == name {
			f.resetDefinition(n)
		}
	}
}

// GetDefinition returns the definition bound under the name.
func (f *Factory) GetDefinition(name string) (*Definition, error) {
	if def, ok := f.store.get(f.canonicalName(name)); ok {
		return def, nil
	}
	return nil, &NoSuchDefinitionError{Name: name}
}

// ContainsDefinition reports whether a definition is bound under the name,
// locally only.
func (f *Factory) ContainsDefinition(name string) bool {
	return f.store.contains(f.canonicalName(name))
}

// DefinitionNames returns the registered definition names in registration
// order.
func (f *Factory) DefinitionNames() []string {
	return f.store.definitionNames()
}

// DefinitionCount returns the number of registered definitions.
func (f *Factory) DefinitionCount() int {
	return f.store.count()
}

func (f *Factory) definitionIncludingAncestors(name string) (*Definition, bool) {
	if def, ok := f.store.get(name); ok {
		return def, true
	}
	if f.parent != nil {
		return f.parent.definitionIncludingAncestors(name)
	}
	return nil, false
}

// ----- aliases -----

// RegisterAlias binds an additional name for an existing bean name. An
// alias equal to the name itself is dropped silently; rebinding an alias to
// a different name is governed by the override policy.
func (f *Factory) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return ErrBeanNameEmpty
	}
	return f.store.registerAlias(name, alias, f.AllowDefinitionOverriding())
}

// RemoveAlias unbinds the alias.
func (f *Factory) RemoveAlias(alias string) {
	f.store.removeAlias(alias)
}

// IsAlias reports whether the name is an alias rather than a bean name.
func (f *Factory) IsAlias(name string) bool {
	return f.store.isAlias(name)
}

// Aliases returns the aliases bound for the given bean name.
func (f *Factory) Aliases(name string) []string {
	return f.store.aliasesOf(f.canonicalName(name))
}

// canonicalName strips the producer prefix and follows alias links to the
// underlying bean name.
func (f *Factory) canonicalName(name string) string {
	return f.store.canonical(stripProducerPrefix(name))
}

func stripProducerPrefix(name string) string {
	for strings.HasPrefix(name, ProducerPrefix) {
		name = name[len(ProducerPrefix):]
	}
	return name
}

// ----- manual singletons -----

// RegisterSingleton caches an externally constructed instance under the
// given name, outside of any definition. The name participates in type
// scans and named lookups like a definition-backed singleton.
func (f *Factory) RegisterSingleton(name string, instance any) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	if name == "" {
		return ErrBeanNameEmpty
	}
	if instance == nil {
		return fmt.Errorf("singleton instance for %q cannot be nil", name)
	}
	if f.singletons.contains(name) {
		return fmt.Errorf("cannot register singleton %q: an instance is already cached under that name", name)
	}
	f.singletons.put(name, instance)
	f.store.addManualName(name)
	f.index.Clear()
	return nil
}

// ContainsSingleton reports whether a fully created singleton instance is
// cached under the name, locally only.
func (f *Factory) ContainsSingleton(name string) bool {
	return f.singletons.contains(f.canonicalName(name))
}

// SingletonNames returns the names of all cached singletons in creation
// order.
func (f *Factory) SingletonNames() []string {
	return f.singletons.names()
}

// DestroySingleton evicts and disposes the named singleton instance along
// with its cached product, if any.
func (f *Factory) DestroySingleton(name string) {
	canonical := f.canonicalName(name)
	f.destroyCachedInstances(canonical)
	f.store.removeManualName(canonical)
	f.index.Clear()
}

func (f *Factory) destroyCachedInstances(name string) {
	if product, ok := f.products.LoadAndDelete(name); ok {
		f.dispose(name, product)
	}
	if instance, ok := f.singletons.remove(name); ok {
		f.dispose(name, instance)
	}
}

// DestroySingletons evicts every cached singleton, disposing products
// first and then the singletons in reverse creation order.
func (f *Factory) DestroySingletons() {
	f.products.Range(func(k, v any) bool {
		f.products.Delete(k)
		f.dispose(k.(string), v)
		return true
	})
	for _, instance := range f.singletons.removeAll() {
		f.dispose("", instance)
	}
	for _, name := range f.store.manualNames() {
		f.store.removeManualName(name)
	}
	f.index.Clear()
}

func (f *Factory) dispose(name string, instance any) {
	d, ok := instance.(Disposable)
	if !ok {
		return
	}
	if err := d.Close(); err != nil {
		f.logger.Warn("error disposing bean", "name", name, "error", err)
	}
}

// ----- resolvable dependencies -----

// RegisterResolvableDependency maps a type directly to an injection value.
// Any dependency assignable to the type resolves to the value without a
// candidate search. The value may be a func() (any, error) invoked lazily
// at each injection.
func (f *Factory) RegisterResolvableDependency(t reflect.Type, value any) error {
	if t == nil {
		return fmt.Errorf("resolvable dependency type cannot be nil")
	}
	if value == nil {
		return fmt.Errorf("resolvable dependency value for %s cannot be nil", formatType(t))
	}
	if _, deferred := value.(func() (any, error)); !deferred {
		if !reflect.TypeOf(value).AssignableTo(t) {
			return fmt.Errorf("resolvable dependency value of type %s is not assignable to %s",
				formatType(reflect.TypeOf(value)), formatType(t))
		}
	}
	f.resolvable.Store(t, value)
	return nil
}

// ----- bean lookup -----

// GetBean returns the bean bound under the name, creating it first when
// necessary. A name carrying the producer prefix addresses the producer
// itself rather than its product.
func (f *Factory) GetBean(name string) (any, error) {
	return f.getBean(name, nil)
}

func (f *Factory) getBean(name string, requiredType reflect.Type) (any, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	return f.getBeanInternal(name, requiredType, newResolutionState())
}

// ContainsBean reports whether the name resolves to a bean here or in an
// ancestor. A producer-prefixed name requires the underlying bean to
// actually be a producer.
func (f *Factory) ContainsBean(name string) bool {
	canonical := f.canonicalName(name)
	if f.singletons.contains(canonical) || f.store.contains(canonical) {
		if strings.HasPrefix(name, ProducerPrefix) {
			return f.isProducerBean(canonical)
		}
		return true
	}
	if f.parent != nil {
		return f.parent.ContainsBean(name)
	}
	return false
}

func (f *Factory) isProducerBean(canonical string) bool {
	if v, ok := f.singletons.get(canonical); ok {
		_, isProducer := v.(Producer)
		return isProducer
	}
	if def, ok := f.store.get(canonical); ok {
		return def.isProducer()
	}
	return false
}

// IsSingleton reports whether lookups for the name always return the same
// instance.
func (f *Factory) IsSingleton(name string) (bool, error) {
	canonical := f.canonicalName(name)
	if f.singletons.contains(canonical) && !f.store.contains(canonical) {
		return true, nil
	}
	if def, ok := f.store.get(canonical); ok {
		return def.Scope == ScopeSingleton, nil
	}
	if f.parent != nil {
		return f.parent.IsSingleton(name)
	}
	return false, &NoSuchBeanError{Name: canonical}
}

// getBeanInternal is the internal lookup shared by the public entry points
// and the resolution engine.
func (f *Factory) getBeanInternal(name string, requiredType reflect.Type, st *resolutionState) (any, error) {
	if name == "" {
		return nil, ErrBeanNameEmpty
	}
	producerRequest := strings.HasPrefix(name, ProducerPrefix)
	canonical := f.canonicalName(name)

	if instance, ok := f.singletons.get(canonical); ok {
		return f.exposedObject(canonical, instance, producerRequest, requiredType, true)
	}

	def, ok := f.store.get(canonical)
	if !ok {
		if f.parent != nil {
			return f.parent.getBeanInternal(name, requiredType, st)
		}
		return nil, &NoSuchBeanError{Name: canonical, Type: requiredType}
	}
	if def.Abstract {
		return nil, &DefinitionValidationError{
			Name:  canonical,
			Cause: fmt.Errorf("abstract definitions are templates and cannot be instantiated"),
		}
	}

	for _, dep := range def.DependsOn {
		if _, err := f.getBeanInternal(dep, nil, st); err != nil {
			return nil, err
		}
	}

	var instance any
	var err error
	switch def.Scope {
	case ScopePrototype:
		if err = f.beforePrototypeCreation(canonical); err != nil {
			return nil, err
		}
		instance, err = f.createBean(canonical, def, st)
		f.afterPrototypeCreation(canonical)
	default:
		instance, err = f.singletons.getOrCreate(canonical, func() (any, error) {
			return f.createBean(canonical, def, st)
		})
	}
	if err != nil {
		return nil, err
	}
	return f.exposedObject(canonical, instance, producerRequest, requiredType, def.Scope == ScopeSingleton)
}

// exposedObject turns a raw cached instance into the object the caller
// asked for: the producer itself for prefixed requests, its product
// otherwise, and the instance as-is for ordinary beans. The required type,
// when given, is enforced on the outcome.
func (f *Factory) exposedObject(name string, instance any, producerRequest bool, requiredType reflect.Type, cacheable bool) (any, error) {
	p, isProducer := instance.(Producer)
	if producerRequest {
		if !isProducer {
			return nil, &BeanNotOfRequiredTypeError{
				Name:     ProducerPrefix + name,
				Required: producerType,
				Actual:   reflect.TypeOf(instance),
			}
		}
		return checkRequiredType(ProducerPrefix+name, instance, requiredType)
	}
	if isProducer {
		product, err := f.productFor(name, p, cacheable)
		if err != nil {
			return nil, err
		}
		return checkRequiredType(name, product, requiredType)
	}
	return checkRequiredType(name, instance, requiredType)
}

func checkRequiredType(name string, instance any, requiredType reflect.Type) (any, error) {
	if requiredType == nil || instance == nil {
		return instance, nil
	}
	if actual := reflect.TypeOf(instance); !actual.AssignableTo(requiredType) {
		return nil, &BeanNotOfRequiredTypeError{Name: name, Required: requiredType, Actual: actual}
	}
	return instance, nil
}

// productFor returns the producer's product, from the product cache when
// the producer is a singleton.
func (f *Factory) productFor(name string, p Producer, cacheable bool) (any, error) {
	if cacheable {
		if v, ok := f.products.Load(name); ok {
			return v, nil
		}
	}

	product, err := p.Produce()
	if err != nil {
		return nil, &CreationError{Name: name, Cause: err}
	}
	if product == nil {
		return nil, &CreationError{Name: name, Cause: fmt.Errorf("producer returned a nil product")}
	}
	if init, ok := product.(Initializable); ok {
		if err := init.Init(); err != nil {
			return nil, &CreationError{Name: name, Cause: err}
		}
	}

	if cacheable {
		actual, _ := f.products.LoadOrStore(name, product)
		return actual, nil
	}
	return product, nil
}

// ----- bean creation -----

func (f *Factory) createBean(name string, def *Definition, st *resolutionState) (any, error) {
	f.store.markCreationStarted()

	if def.Instance != nil {
		return def.Instance, nil
	}

	var instance any
	switch {
	case def.Constructor != nil:
		ctor := def.ctor
		if ctor == nil {
			analyzed, err := reflection.Analyze(def.Constructor)
			if err != nil {
				return nil, &CreationError{Name: name, Cause: err}
			}
			ctor = analyzed
		}
		args, err := f.resolveConstructorArgs(name, ctor, st)
		if err != nil {
			return nil, err
		}
		instance, err = ctor.Invoke(args)
		if err != nil {
			return nil, &CreationError{Name: name, Cause: err}
		}

	case def.Type != nil:
		instance = zeroConstruct(def.Type)

	default:
		return nil, &CreationError{Name: name, Cause: ErrConstructorNil}
	}

	if init, ok := instance.(Initializable); ok {
		if err := init.Init(); err != nil {
			return nil, &CreationError{Name: name, Cause: err}
		}
	}
	return instance, nil
}

// resolveConstructorArgs resolves each constructor parameter as a
// dependency of the bean under creation. An InjectionPoint parameter
// receives the injection site that requested the bean; a variadic tail is
// resolved leniently so that zero matches yields an empty call.
func (f *Factory) resolveConstructorArgs(name string, ctor *reflection.Constructor, st *resolutionState) ([]any, error) {
	args := make([]any, len(ctor.Params))
	for i, pt := range ctor.Params {
		if pt == injectionPointType {
			ip, _ := st.current()
			args[i] = ip
			continue
		}
		d := Dep(pt)
		if ctor.Variadic && i == len(ctor.Params)-1 {
			d.Required = false
		}
		v, err := f.resolveDependency(d, name, st)
		if err != nil {
			return nil, &CreationError{Name: name, Cause: err}
		}
		args[i] = v
	}
	return args, nil
}

func zeroConstruct(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Elem().Interface()
}

// ----- prototype creation tracking -----

func (f *Factory) beforePrototypeCreation(name string) error {
	id := gid()
	f.protoMu.Lock()
	defer f.protoMu.Unlock()
	set := f.prototypes[id]
	if set[name] {
		return &CurrentlyInCreationError{Name: name}
	}
	if set == nil {
		set = make(map[string]bool)
		f.prototypes[id] = set
	}
	set[name] = true
	return nil
}

func (f *Factory) afterPrototypeCreation(name string) {
	id := gid()
	f.protoMu.Lock()
	defer f.protoMu.Unlock()
	if set := f.prototypes[id]; set != nil {
		delete(set, name)
		if len(set) == 0 {
			delete(f.prototypes, id)
		}
	}
}

// ----- type-based lookup -----

// BeanNamesForType returns the names of beans matching the required type,
// in registration order, manual singletons last. The scan result is served
// from the type index once the configuration is frozen and eager
// initialization is permitted.
func (f *Factory) BeanNamesForType(t reflect.Type, includeNonSingletons, allowEagerInit bool) []string {
	if t == nil {
		return nil
	}
	if !f.store.isFrozen() || !allowEagerInit {
		return f.doGetBeanNamesForType(t, includeNonSingletons, allowEagerInit)
	}
	if names, ok := f.index.Get(t, includeNonSingletons); ok {
		return names
	}
	names := f.doGetBeanNamesForType(t, includeNonSingletons, true)
	f.index.Put(t, includeNonSingletons, names)
	return names
}

func (f *Factory) doGetBeanNamesForType(t reflect.Type, includeNonSingletons, allowEagerInit bool) []string {
	var result []string

	for _, name := range f.store.definitionNames() {
		def, ok := f.store.get(name)
		if !ok || def.Abstract {
			continue
		}
		if !includeNonSingletons && def.Scope != ScopeSingleton {
			continue
		}

		if def.isProducer() {
			matched := false
			if pt := f.producerProductType(name, def, allowEagerInit); pt != nil && pt.AssignableTo(t) {
				result = append(result, name)
				matched = true
			}
			// The producer itself still matches under its prefixed name.
			if !matched && def.Type.AssignableTo(t) {
				result = append(result, ProducerPrefix+name)
			}
			continue
		}

		if bt := f.declaredBeanType(name, def); bt != nil && bt.AssignableTo(t) {
			result = append(result, name)
		}
	}

	for _, name := range f.store.manualNames() {
		instance, ok := f.singletons.get(name)
		if !ok {
			continue
		}
		if p, isProducer := instance.(Producer); isProducer {
			if pt := p.ProductType(); pt != nil && pt.AssignableTo(t) {
				result = append(result, name)
				continue
			}
			if reflect.TypeOf(instance).AssignableTo(t) {
				result = append(result, ProducerPrefix+name)
			}
			continue
		}
		if reflect.TypeOf(instance).AssignableTo(t) {
			result = append(result, name)
		}
	}

	return result
}

// producerProductType determines the product type of a definition-backed
// producer: from the live producer when one exists, by instantiating it
// when eager initialization is permitted, and otherwise by probing a zero
// value of the producer type if eager type resolution is enabled.
func (f *Factory) producerProductType(name string, def *Definition, allowEagerInit bool) reflect.Type {
	if instance, ok := f.singletons.get(name); ok {
		if p, isProducer := instance.(Producer); isProducer {
			return safeProductType(p)
		}
		return nil
	}

	if allowEagerInit {
		instance, err := f.getBeanInternal(ProducerPrefix+name, nil, newResolutionState())
		if err != nil {
			f.logger.Debug("ignoring producer while determining product type", "name", name, "error", err)
			return nil
		}
		if p, isProducer := instance.(Producer); isProducer {
			return safeProductType(p)
		}
		return nil
	}

	if f.eagerTypeResolutionAllowed() && def.Constructor == nil {
		if probe, ok := zeroConstruct(def.Type).(Producer); ok {
			return safeProductType(probe)
		}
	}
	return nil
}

// safeProductType shields the scan from producers whose ProductType
// implementation cannot handle an incompletely initialized receiver.
func safeProductType(p Producer) (t reflect.Type) {
	defer func() {
		if recover() != nil {
			t = nil
		}
	}()
	return p.ProductType()
}

// declaredBeanType resolves a definition's declared type, following the
// parent chain when the definition itself carries none.
func (f *Factory) declaredBeanType(name string, def *Definition) reflect.Type {
	seen := map[string]bool{name: true}
	for def != nil {
		if def.Type != nil {
			return def.Type
		}
		if def.Parent == "" || seen[def.Parent] {
			return nil
		}
		seen[def.Parent] = true
		parent, ok := f.definitionIncludingAncestors(f.canonicalName(def.Parent))
		if !ok {
			return nil
		}
		def = parent
	}
	return nil
}

// predictBeanType predicts the type a lookup for the name would expose,
// without creating the bean unless eager initialization is permitted for
// producer probing.
func (f *Factory) predictBeanType(name string, allowEagerInit bool) reflect.Type {
	canonical := f.canonicalName(name)
	producerRequest := strings.HasPrefix(name, ProducerPrefix)

	if instance, ok := f.singletons.get(canonical); ok {
		if p, isProducer := instance.(Producer); isProducer && !producerRequest {
			return safeProductType(p)
		}
		return reflect.TypeOf(instance)
	}

	if def, ok := f.store.get(canonical); ok {
		if def.isProducer() && !producerRequest {
			return f.producerProductType(canonical, def, allowEagerInit)
		}
		return f.declaredBeanType(canonical, def)
	}

	if f.parent != nil {
		return f.parent.predictBeanType(name, allowEagerInit)
	}
	return nil
}

// beanNamesForTypeIncludingAncestors merges the local scan with the
// ancestors' scans. Locally defined names shadow inherited ones.
func (f *Factory) beanNamesForTypeIncludingAncestors(t reflect.Type, includeNonSingletons, allowEagerInit bool) []string {
	names := f.BeanNamesForType(t, includeNonSingletons, allowEagerInit)
	if f.parent == nil {
		return names
	}

	merged := append([]string(nil), names...)
	seen := make(map[string]bool, len(merged))
	for _, n := range merged {
		seen[n] = true
	}
	for _, n := range f.parent.beanNamesForTypeIncludingAncestors(t, includeNonSingletons, allowEagerInit) {
		if seen[n] || f.containsLocal(n) {
			continue
		}
		seen[n] = true
		merged = append(merged, n)
	}
	return merged
}

func (f *Factory) containsLocal(name string) bool {
	canonical := f.canonicalName(name)
	return f.store.contains(canonical) || f.store.isManualName(canonical)
}

// GetBeansOfType returns every bean matching the required type, keyed by
// name, instantiating them as needed. Beans that fail because they are
// currently mid-creation are skipped rather than failing the whole scan, so
// a constructor may enumerate its own type's siblings.
func (f *Factory) GetBeansOfType(t reflect.Type) (map[string]any, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if t == nil {
		return nil, fmt.Errorf("required type cannot be nil")
	}

	names := f.beanNamesForTypeIncludingAncestors(t, true, true)
	result := make(map[string]any, len(names))
	for _, name := range names {
		instance, err := f.getBeanInternal(name, nil, newResolutionState())
		if err != nil {
			if isCurrentlyInCreation(err) {
				f.logger.Debug("ignoring bean currently in creation during type scan",
					"name", name, "type", formatType(t))
				continue
			}
			return nil, err
		}
		result[name] = instance
	}
	return result, nil
}

// GetBeanOfType returns the single bean matching the required type,
// applying primary and priority disambiguation when several candidates
// match.
func (f *Factory) GetBeanOfType(t reflect.Type) (any, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if t == nil {
		return nil, fmt.Errorf("required type cannot be nil")
	}

	d := Dep(t)
	st := newResolutionState()
	names := f.beanNamesForTypeIncludingAncestors(t, true, true)

	if len(names) > 1 {
		var eligible []string
		for _, n := range names {
			if f.isAutowireCandidate(n, d) {
				eligible = append(eligible, n)
			}
		}
		if len(eligible) > 0 {
			names = eligible
		}
	}

	switch len(names) {
	case 0:
		return nil, &NoSuchBeanError{Type: t}
	case 1:
		return f.getBeanInternal(names[0], t, st)
	}

	candidates := newCandidateMap()
	for _, n := range names {
		if err := f.addCandidateEntry(candidates, n, d, st); err != nil {
			return nil, err
		}
	}
	winner, err := f.determineCandidate(candidates, d)
	if err != nil {
		return nil, err
	}
	if winner == "" {
		return nil, &NotUniqueError{Type: t, Candidates: names}
	}
	if _, deferred := candidates.values[winner].(reflect.Type); deferred {
		return f.getBeanInternal(winner, t, st)
	}
	return candidates.values[winner], nil
}

// ----- validation -----

// ValidateDependencies builds the dependency graph over the registered
// definitions and reports the first cycle found. Only statically decidable
// edges participate: explicit DependsOn entries, single-candidate
// constructor parameters, and the full candidate set of collection
// parameters.
func (f *Factory) ValidateDependencies() error {
	g := graph.New()

	for _, name := range f.store.definitionNames() {
		def, ok := f.store.get(name)
		if !ok || def.Abstract {
			continue
		}
		g.AddEdges(name, def.DependsOn...)

		if def.ctor == nil {
			continue
		}
		for _, pt := range def.ctor.Params {
			if pt == injectionPointType {
				continue
			}
			if indicatesMultipleBeans(pt) {
				elem := pt.Elem()
				for _, candidate := range f.BeanNamesForType(elem, true, false) {
					dep := f.canonicalName(candidate)
					if dep != name {
						g.AddEdges(name, dep)
					}
				}
				continue
			}
			if _, resolvable := f.resolvable.Load(pt); resolvable {
				continue
			}
			matches := f.BeanNamesForType(pt, true, false)
			if len(matches) == 1 {
				if dep := f.canonicalName(matches[0]); dep != name {
					g.AddEdges(name, dep)
				}
			}
		}
	}

	return g.DetectCycles()
}

// ----- shutdown -----

// Close destroys all cached singletons and marks the factory unusable.
// Close is idempotent.
func (f *Factory) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if f.registry != nil {
		f.registry.Deregister(f.id)
	}
	f.DestroySingletons()
	return nil
}
