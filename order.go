package beans

import (
	"math"
	"reflect"
	"sort"
)

// Ordered is implemented by beans that declare their position within a
// multi-bean result. Lower values sort first.
type Ordered interface {
	Order() int
}

// Prioritized is implemented by beans that carry a priority value used to
// disambiguate between multiple candidates. Lower values take precedence.
type Prioritized interface {
	Priority() int
}

// DependencyComparator orders the elements of multi-bean results and
// supplies the priority values consulted by the disambiguation engine.
// When a factory has no comparator, multi-bean results keep candidate
// order and the priority disambiguation tier is skipped.
type DependencyComparator interface {
	// Less reports whether a sorts before b.
	Less(a, b any) bool

	// Priority returns the priority value for the candidate, if it has
	// one. Lower values take precedence.
	Priority(candidate any) (int, bool)
}

// OrderSource maps an instance back to an auxiliary order-bearing object,
// typically its bean definition. A comparator consults the source before
// inspecting the instance itself.
type OrderSource func(instance any) any

// OrderComparator is the standard DependencyComparator. Order is taken
// from the order source when present, then from the Ordered interface;
// unordered values sort last, ties keep their existing order (sorts are
// stable).
type OrderComparator struct {
	source OrderSource
}

// NewOrderComparator creates a comparator without an order source.
func NewOrderComparator() *OrderComparator {
	return &OrderComparator{}
}

// WithSource returns a copy of the comparator consulting the given order
// source before the instances themselves.
func (c *OrderComparator) WithSource(source OrderSource) *OrderComparator {
	return &OrderComparator{source: source}
}

// Less reports whether a sorts before b.
func (c *OrderComparator) Less(a, b any) bool {
	return c.orderOf(a) < c.orderOf(b)
}

// Priority returns the value from the Prioritized interface, if
// implemented.
func (c *OrderComparator) Priority(candidate any) (int, bool) {
	if p, ok := candidate.(Prioritized); ok {
		return p.Priority(), true
	}
	if c.source != nil {
		if p, ok := c.source(candidate).(Prioritized); ok {
			return p.Priority(), true
		}
	}
	return 0, false
}

func (c *OrderComparator) orderOf(v any) int {
	if c.source != nil {
		if src := c.source(v); src != nil {
			if o, ok := orderValue(src); ok {
				return o
			}
		}
	}
	if o, ok := orderValue(v); ok {
		return o
	}
	return math.MaxInt
}

func orderValue(v any) (int, bool) {
	switch o := v.(type) {
	case Ordered:
		return o.Order(), true
	case Prioritized:
		return o.Priority(), true
	default:
		return 0, false
	}
}

// definitionOrderSource adapts a candidate-to-definition mapping into an
// OrderSource, letting definition-level Order values drive sorting of
// instances that do not implement Ordered themselves.
type definitionOrder struct {
	order int
}

func (d definitionOrder) Order() int { return d.order }

// orderSourceFor builds the order source for a resolved multi-bean result:
// each instance maps back to its definition's Order value, if set.
func orderSourceFor(byInstance map[any]*Definition) OrderSource {
	return func(instance any) any {
		if !comparableKey(instance) {
			return nil
		}
		def, ok := byInstance[instance]
		if !ok || def == nil || def.Order == nil {
			return nil
		}
		return definitionOrder{order: *def.Order}
	}
}

// sortWithComparator stably sorts vals using the comparator, if any.
func sortWithComparator(vals []any, cmp DependencyComparator) {
	if cmp == nil {
		return
	}
	sort.SliceStable(vals, func(i, j int) bool {
		return cmp.Less(vals[i], vals[j])
	})
}

// comparableKey reports whether an instance can be used as a map key for
// the order source. Non-comparable instances (slices, maps, funcs) simply
// fall back to interface-based ordering.
func comparableKey(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Comparable()
}
