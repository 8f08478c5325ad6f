// Package typeindex memoizes the mapping from a requested type to the bean
// names matching it.
//
// The index trades precision for correctness: any registry mutation clears
// both caches wholesale. Mutation is rare after startup, so recomputing a
// handful of scans is cheaper than tracking fine-grained dependencies
// between types and names.
package typeindex

import (
	"reflect"
	"sync"
)

// Index holds two memoized type-to-names mappings: one including
// non-singleton beans and one restricted to singletons. Reads are
// lock-free; population is racy-but-idempotent, matching the scan it
// memoizes.
type Index struct {
	all        sync.Map // reflect.Type -> []string
	singletons sync.Map // reflect.Type -> []string
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Get returns the cached name list for the type, if present.
func (ix *Index) Get(t reflect.Type, includeNonSingletons bool) ([]string, bool) {
	m := ix.bucket(includeNonSingletons)
	v, ok := m.Load(t)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

// Put caches the name list for the type. The caller must pass a slice it
// will not mutate afterwards.
func (ix *Index) Put(t reflect.Type, includeNonSingletons bool, names []string) {
	ix.bucket(includeNonSingletons).Store(t, names)
}

// Clear drops every cached mapping. Called on any registry mutation.
func (ix *Index) Clear() {
	ix.all.Clear()
	ix.singletons.Clear()
}

func (ix *Index) bucket(includeNonSingletons bool) *sync.Map {
	if includeNonSingletons {
		return &ix.all
	}
	return &ix.singletons
}
