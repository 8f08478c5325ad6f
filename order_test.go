package beans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type orderedVal struct{ n int }

func (o orderedVal) Order() int { return o.n }

type prioritizedVal struct{ p int }

func (p prioritizedVal) Priority() int { return p.p }

func TestOrderComparator(t *testing.T) {
	cmp := NewOrderComparator()

	t.Run("OrderedValues", func(t *testing.T) {
		assert.True(t, cmp.Less(orderedVal{1}, orderedVal{2}))
		assert.False(t, cmp.Less(orderedVal{2}, orderedVal{1}))
	})

	t.Run("UnorderedSortsLast", func(t *testing.T) {
		assert.True(t, cmp.Less(orderedVal{100}, "plain"))
		assert.False(t, cmp.Less("plain", orderedVal{100}))
	})

	t.Run("PrioritizedCountsAsOrdered", func(t *testing.T) {
		assert.True(t, cmp.Less(prioritizedVal{1}, orderedVal{5}))
	})

	t.Run("Priority", func(t *testing.T) {
		p, ok := cmp.Priority(prioritizedVal{3})
		assert.True(t, ok)
		assert.Equal(t, 3, p)

		_, ok = cmp.Priority(orderedVal{3})
		assert.False(t, ok, "plain order values carry no priority")
	})
}

func TestOrderComparatorWithSource(t *testing.T) {
	a, b := &Database{DSN: "a"}, &Database{DSN: "b"}
	three, one := 3, 1
	source := orderSourceFor(map[any]*Definition{
		a: {Order: &three},
		b: {Order: &one},
	})
	cmp := NewOrderComparator().WithSource(source)

	assert.True(t, cmp.Less(b, a))
	assert.False(t, cmp.Less(a, b))

	t.Run("NonComparableInstanceYieldsNoSource", func(t *testing.T) {
		src := orderSourceFor(map[any]*Definition{})
		assert.Nil(t, src([]int{1}))
		assert.Nil(t, src(func() {}))
		assert.Nil(t, src(map[string]int{}))
	})

	t.Run("SourceBeatsInstance", func(t *testing.T) {
		ten := 10
		src := orderSourceFor(map[any]*Definition{orderedVal{1}: {Order: &ten}})
		c := NewOrderComparator().WithSource(src)
		// definition order 10 overrides the instance's own order 1
		assert.False(t, c.Less(orderedVal{1}, orderedVal{5}))
	})
}

func TestSortWithComparator(t *testing.T) {
	vals := []any{orderedVal{3}, orderedVal{1}, "unordered", orderedVal{2}}
	sortWithComparator(vals, NewOrderComparator())
	assert.Equal(t, []any{orderedVal{1}, orderedVal{2}, orderedVal{3}, "unordered"}, vals)

	t.Run("NilComparatorKeepsOrder", func(t *testing.T) {
		vals := []any{2, 1}
		sortWithComparator(vals, nil)
		assert.Equal(t, []any{2, 1}, vals)
	})
}

func TestComparableKey(t *testing.T) {
	assert.True(t, comparableKey("s"))
	assert.True(t, comparableKey(&Database{}))
	assert.False(t, comparableKey(nil))
	assert.False(t, comparableKey([]int{1}))
	assert.False(t, comparableKey(map[string]int{}))
}
