package beans

// Initializable is implemented by beans that run setup logic after their
// constructor returns. A failing Init aborts the bean's creation.
type Initializable interface {
	Init() error
}

// SmartInitializer is implemented by singletons that need a callback once
// eager pre-instantiation has finished, when every non-lazy singleton is
// guaranteed to exist.
type SmartInitializer interface {
	AfterSingletonsInstantiated() error
}

// PreInstantiateSingletons eagerly creates every non-lazy singleton in
// registration order. Producers are instantiated as producers; their
// products are only created here when the producer opts into eager
// production. After the instantiation pass, SmartInitializer callbacks run
// in the same registration order.
//
// The name snapshot is taken once up front. Definitions registered by
// beans during their own instantiation are not picked up by the running
// pass; calling PreInstantiateSingletons again covers them.
func (f *Factory) PreInstantiateSingletons() error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}

	names := f.store.definitionNames()
	for _, name := range names {
		def, ok := f.store.get(name)
		if !ok || def.Abstract || def.Scope != ScopeSingleton || def.Lazy {
			continue
		}

		if def.isProducer() {
			producer, err := f.getBeanInternal(ProducerPrefix+name, nil, newResolutionState())
			if err != nil {
				return err
			}
			if ep, ok := producer.(EagerProducer); ok && ep.EagerProduct() {
				if _, err := f.getBeanInternal(name, nil, newResolutionState()); err != nil {
					return err
				}
			}
			continue
		}

		if _, err := f.getBeanInternal(name, nil, newResolutionState()); err != nil {
			return err
		}
	}

	for _, name := range names {
		instance, ok := f.singletons.get(f.canonicalName(name))
		if !ok {
			continue
		}
		if si, ok := instance.(SmartInitializer); ok {
			if err := si.AfterSingletonsInstantiated(); err != nil {
				return &CreationError{Name: name, Cause: err}
			}
		}
	}
	return nil
}
