package beans

import (
	"fmt"
	"reflect"
)

// candidateMap is the ephemeral, insertion-ordered mapping from candidate
// bean name to either a live instance or, when instantiation is deferred
// until a winner is chosen, the bean's resolved type.
type candidateMap struct {
	names  []string
	values map[string]any
}

func newCandidateMap() *candidateMap {
	return &candidateMap{values: make(map[string]any)}
}

func (m *candidateMap) add(name string, value any) {
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

func (m *candidateMap) len() int {
	return len(m.names)
}

// findCandidates produces the set of beans able to satisfy the required
// type, as seen from the requesting bean.
//
// The strict pass excludes self references and beans that opted out of
// autowiring. If it comes up empty and the required type is not itself a
// multi-bean type, a fallback pass retries with relaxed matching, and as a
// final pass self references become acceptable - except that a bean
// gathering the elements of its own collection dependency still never
// receives itself.
func (f *Factory) findCandidates(requesting string, requiredType reflect.Type, d Descriptor, st *resolutionState) (*candidateMap, error) {
	names := f.beanNamesForTypeIncludingAncestors(requiredType, true, d.Eager)
	result := newCandidateMap()

	// Explicitly registered resolvable dependencies win outright.
	var resolvableErr error
	f.resolvable.Range(func(k, v any) bool {
		registered := k.(reflect.Type)
		if !requiredType.AssignableTo(registered) {
			return true
		}
		value, err := resolveAutowiringValue(v)
		if err != nil {
			resolvableErr = err
			return false
		}
		if value != nil && reflect.TypeOf(value).AssignableTo(requiredType) {
			result.add(resolvableDependencyName(registered), value)
			return false
		}
		return true
	})
	if resolvableErr != nil {
		return nil, resolvableErr
	}

	for _, candidate := range names {
		if f.isSelfReference(requesting, candidate) || !f.isAutowireCandidate(candidate, d) {
			continue
		}
		if err := f.addCandidateEntry(result, candidate, d, st); err != nil {
			return nil, err
		}
	}

	if result.len() == 0 && !indicatesMultipleBeans(requiredType) {
		// Fallback matches if the first pass found nothing.
		fallback := d.forFallback()
		for _, candidate := range names {
			if f.isSelfReference(requesting, candidate) || !f.isAutowireCandidate(candidate, fallback) {
				continue
			}
			if err := f.addCandidateEntry(result, candidate, d, st); err != nil {
				return nil, err
			}
		}
		if result.len() == 0 {
			// Self references as a final pass - but never the very same
			// bean when gathering its own collection elements.
			for _, candidate := range names {
				if !f.isSelfReference(requesting, candidate) {
					continue
				}
				if d.isMultiElement() && f.canonicalName(candidate) == f.canonicalName(requesting) {
					continue
				}
				if !f.isAutowireCandidate(candidate, fallback) {
					continue
				}
				if err := f.addCandidateEntry(result, candidate, d, st); err != nil {
					return nil, err
				}
			}
		}
	}
	return result, nil
}

// addCandidateEntry adds a live instance when one is already available (or
// when gathering collection elements, which forces eager creation), and
// otherwise just the bean's type, preventing early initialization ahead of
// primary candidate selection.
func (f *Factory) addCandidateEntry(result *candidateMap, candidate string, d Descriptor, st *resolutionState) error {
	if d.isMultiElement() || f.containsLiveSingleton(candidate) {
		instance, err := f.getBeanInternal(candidate, nil, st)
		if err != nil {
			return err
		}
		result.add(candidate, instance)
		return nil
	}

	t := f.predictBeanType(candidate, d.Eager)
	if t == nil {
		t = anyType
	}
	result.add(candidate, t)
	return nil
}

// isSelfReference reports whether the candidate points back at the
// requesting bean itself or at its producer.
func (f *Factory) isSelfReference(requesting, candidate string) bool {
	if requesting == "" || candidate == "" {
		return false
	}
	return f.canonicalName(requesting) == f.canonicalName(candidate)
}

// isAutowireCandidate checks the definition-level opt-out through the
// configured candidate selector, consulting ancestors for inherited beans.
func (f *Factory) isAutowireCandidate(candidate string, d Descriptor) bool {
	name := f.canonicalName(candidate)
	if def, ok := f.store.get(name); ok {
		return f.candidateSelector().IsAutowireCandidate(name, def, d)
	}
	if f.singletons.contains(name) {
		return f.candidateSelector().IsAutowireCandidate(name, nil, d)
	}
	if f.parent != nil {
		return f.parent.isAutowireCandidate(candidate, d)
	}
	return true
}

// containsLiveSingleton reports whether a fully created singleton instance
// exists for the name, here or in an ancestor.
func (f *Factory) containsLiveSingleton(name string) bool {
	canonical := f.canonicalName(stripProducerPrefix(name))
	if f.singletons.contains(canonical) {
		return true
	}
	if !f.store.contains(canonical) && f.parent != nil {
		return f.parent.containsLiveSingleton(name)
	}
	return false
}

// resolveAutowiringValue unwraps deferred resolvable-dependency values:
// a func() (any, error) registered as the autowire value is invoked at
// injection time.
func resolveAutowiringValue(v any) (any, error) {
	if fn, ok := v.(func() (any, error)); ok {
		return fn()
	}
	return v, nil
}

func resolvableDependencyName(t reflect.Type) string {
	return fmt.Sprintf("resolvableDependency[%s]", formatType(t))
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()
