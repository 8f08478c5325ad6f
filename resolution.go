package beans

import (
	"fmt"
	"reflect"
)

// resolutionState carries per-call resolution context: the stack of
// injection points currently being resolved. It threads explicitly
// through the engine and is restored on every exit path, so nested
// resolution can introspect the enclosing injection site.
type resolutionState struct {
	points []InjectionPoint
}

func newResolutionState() *resolutionState {
	return &resolutionState{}
}

func (st *resolutionState) push(p InjectionPoint) {
	st.points = append(st.points, p)
}

func (st *resolutionState) pop() {
	if len(st.points) > 0 {
		st.points = st.points[:len(st.points)-1]
	}
}

// current returns the innermost injection point being resolved.
func (st *resolutionState) current() (InjectionPoint, bool) {
	if len(st.points) == 0 {
		return InjectionPoint{}, false
	}
	return st.points[len(st.points)-1], true
}

// enclosing returns the injection point surrounding the current one, if
// resolution is nested.
func (st *resolutionState) enclosing() (InjectionPoint, bool) {
	if len(st.points) < 2 {
		return InjectionPoint{}, false
	}
	return st.points[len(st.points)-2], true
}

// ResolveDependency resolves a single dependency described by the
// descriptor, on behalf of the named requesting bean (empty for external
// callers). This is the primary entry point injection collaborators call
// into.
//
// Resolution proceeds through a fixed sequence: shortcut, optional
// wrapper, deferred provider handle, suggested value, multi-bean
// assembly, then single-candidate search with disambiguation, and finally
// materialization of the winning candidate. A required dependency with no
// match raises; an optional one resolves to nil.
func (f *Factory) ResolveDependency(d Descriptor, requesting string) (any, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	return f.resolveDependency(d, requesting, newResolutionState())
}

func (f *Factory) resolveDependency(d Descriptor, requesting string, st *resolutionState) (_ any, err error) {
	st.push(InjectionPoint{Descriptor: d, Requesting: requesting})
	defer st.pop()

	if d.Shortcut != nil {
		return d.Shortcut, nil
	}

	switch d.Kind {
	case KindOptional:
		inner := d
		inner.Kind = KindPlain
		inner.Required = false
		v, err := f.doResolve(inner, requesting, st)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return Optional{}, nil
		}
		return OptionalOf(v), nil

	case KindProvider:
		return ObjectProvider{factory: f, descriptor: d, requesting: requesting}, nil

	default:
		return f.doResolve(d, requesting, st)
	}
}

func (f *Factory) doResolve(d Descriptor, requesting string, st *resolutionState) (any, error) {
	if d.Type == nil {
		return nil, &NoSuchBeanError{Name: d.Name}
	}

	// A value bound to the injection point short-circuits the search.
	if v, ok := f.candidateSelector().SuggestedValue(d); ok {
		return convertValue(v, d.Type)
	}

	if multi, handled, err := f.resolveMultipleBeans(d, requesting, st); err != nil {
		return nil, err
	} else if handled {
		return multi, nil
	}

	candidates, err := f.findCandidates(requesting, d.Type, d, st)
	if err != nil {
		return nil, err
	}
	if candidates.len() == 0 {
		if d.Required {
			return nil, f.raiseNoMatchingBean(d)
		}
		return nil, nil
	}

	var winner string
	if candidates.len() > 1 {
		winner, err = f.determineCandidate(candidates, d)
		if err != nil {
			return nil, err
		}
		if winner == "" {
			if d.Required || !indicatesMultipleBeans(d.Type) {
				return nil, &NotUniqueError{Type: d.Type, Candidates: candidates.names}
			}
			// An optional collection-like dependency quietly resolves to
			// no match instead of raising on ambiguity.
			return nil, nil
		}
	} else {
		winner = candidates.names[0]
	}

	instance := candidates.values[winner]
	if _, deferred := instance.(reflect.Type); deferred {
		return f.getBeanInternal(winner, d.Type, st)
	}
	return instance, nil
}

// resolveMultipleBeans detects slice, array, and string-keyed map
// requests, gathers every matching candidate eagerly, and assembles the
// result, applying the dependency comparator's ordering to slices and
// arrays.
func (f *Factory) resolveMultipleBeans(d Descriptor, requesting string, st *resolutionState) (any, bool, error) {
	t := d.Type

	switch {
	case t.Kind() == reflect.Array:
		elem := t.Elem()
		candidates, err := f.findCandidates(requesting, elem, d.forElement(elem), st)
		if err != nil {
			return nil, false, err
		}
		if candidates.len() == 0 {
			return nil, false, nil
		}
		if candidates.len() > t.Len() {
			return nil, false, &ValueConversionError{
				Value:  candidates.names,
				Target: t,
				Cause:  fmt.Errorf("%d matching beans exceed the array length %d", candidates.len(), t.Len()),
			}
		}

		values := make([]any, 0, candidates.len())
		for _, name := range candidates.names {
			values = append(values, candidates.values[name])
		}
		sortWithComparator(values, f.adaptDependencyComparator(candidates))

		// Fewer matches than elements leave the tail at its zero value.
		out := reflect.New(t).Elem()
		for i, v := range values {
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), true, nil

	case t.Kind() == reflect.Slice:
		elem := t.Elem()
		candidates, err := f.findCandidates(requesting, elem, d.forElement(elem), st)
		if err != nil {
			return nil, false, err
		}
		if candidates.len() == 0 {
			return nil, false, nil
		}

		values := make([]any, 0, candidates.len())
		for _, name := range candidates.names {
			values = append(values, candidates.values[name])
		}
		sortWithComparator(values, f.adaptDependencyComparator(candidates))

		out := reflect.MakeSlice(t, 0, len(values))
		for _, v := range values {
			out = reflect.Append(out, reflect.ValueOf(v))
		}
		return out.Interface(), true, nil

	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		elem := t.Elem()
		candidates, err := f.findCandidates(requesting, elem, d.forElement(elem), st)
		if err != nil {
			return nil, false, err
		}
		if candidates.len() == 0 {
			return nil, false, nil
		}

		out := reflect.MakeMapWithSize(t, candidates.len())
		for _, name := range candidates.names {
			key := reflect.ValueOf(name).Convert(t.Key())
			out.SetMapIndex(key, reflect.ValueOf(candidates.values[name]))
		}
		return out.Interface(), true, nil

	default:
		return nil, false, nil
	}
}

// adaptDependencyComparator attaches an order source to the configured
// comparator so definition-level Order values participate in sorting.
func (f *Factory) adaptDependencyComparator(candidates *candidateMap) DependencyComparator {
	cmp := f.dependencyComparator()
	oc, ok := cmp.(*OrderComparator)
	if !ok {
		return cmp
	}

	byInstance := make(map[any]*Definition, candidates.len())
	for _, name := range candidates.names {
		instance := candidates.values[name]
		if !comparableKey(instance) {
			continue
		}
		if def, ok := f.definitionIncludingAncestors(f.canonicalName(name)); ok {
			byInstance[instance] = def
		}
	}
	return oc.WithSource(orderSourceFor(byInstance))
}

// raiseNoMatchingBean reports an empty result for a required dependency.
// When a bean's declared type would have matched but its runtime-exposed
// instance does not, the more specific type mismatch is raised instead.
func (f *Factory) raiseNoMatchingBean(d Descriptor) error {
	if err := f.checkBeanNotOfRequiredType(d); err != nil {
		return err
	}
	return &NoSuchBeanError{Type: d.Type}
}

// checkBeanNotOfRequiredType scans for a bean whose declared target type
// matches the request while its exposed instance type does not - the
// live singleton's type when one exists, otherwise the predicted type.
// The check order is deliberately conservative; the declared-type match
// and the candidate check both have to pass before the exposed type is
// even consulted.
func (f *Factory) checkBeanNotOfRequiredType(d Descriptor) error {
	for _, name := range f.store.definitionNames() {
		def, ok := f.store.get(name)
		if !ok {
			continue
		}
		declared := f.declaredBeanType(name, def)
		if declared == nil || !declared.AssignableTo(d.Type) {
			continue
		}
		if !f.isAutowireCandidate(name, d) {
			continue
		}
		exposed := declared
		if instance, live := f.singletons.get(name); live {
			if p, isProducer := instance.(Producer); isProducer && def.isProducer() {
				exposed = p.ProductType()
			} else {
				exposed = reflect.TypeOf(instance)
			}
		} else if predicted := f.predictBeanType(name, false); predicted != nil {
			exposed = predicted
		}
		if exposed != nil && !exposed.AssignableTo(d.Type) {
			return &BeanNotOfRequiredTypeError{Name: name, Required: d.Type, Actual: exposed}
		}
	}
	if f.parent != nil {
		return f.parent.checkBeanNotOfRequiredType(d)
	}
	return nil
}
