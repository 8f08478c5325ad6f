// Package props loads configuration properties from YAML documents,
// process environment variables, and dotenv files, and resolves
// ${key:default} placeholder expressions against them.
//
// A props.Selector plugs the resolver into a bean factory so that
// injection points carrying a value expression receive the resolved
// property instead of a bean.
package props

import (
	"fmt"
	"strings"
	"sync"
)

// Source supplies property values by key.
type Source interface {
	// Get returns the value for the key and whether it exists.
	Get(key string) (string, bool)
}

// MapSource is an in-memory property source.
type MapSource map[string]string

// Get returns the value for the key.
func (m MapSource) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Resolver layers property sources and resolves placeholder expressions.
// Sources added later take precedence. Safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	sources []Source
}

// NewResolver creates a resolver over the given sources, lowest precedence
// first.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Add appends a source with the highest precedence.
func (r *Resolver) Add(src Source) {
	if src == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

// Get returns the raw value for the key from the highest-precedence source
// holding it.
func (r *Resolver) Get(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.sources) - 1; i >= 0; i-- {
		if v, ok := r.sources[i].Get(key); ok {
			return v, true
		}
	}
	return "", false
}

const (
	placeholderPrefix = "${"
	placeholderSuffix = "}"
	defaultSeparator  = ":"
	maxResolveDepth   = 16
)

// Resolve expands every ${key} and ${key:default} expression in the input.
// Resolved values are themselves expanded, up to a fixed nesting depth. A
// key with neither a value nor a default is an error.
func (r *Resolver) Resolve(s string) (string, error) {
	return r.resolve(s, 0)
}

func (r *Resolver) resolve(s string, depth int) (string, error) {
	if depth > maxResolveDepth {
		return "", fmt.Errorf("placeholder nesting exceeds %d levels in %q", maxResolveDepth, s)
	}

	var out strings.Builder
	for {
		start := strings.Index(s, placeholderPrefix)
		if start < 0 {
			out.WriteString(s)
			return out.String(), nil
		}
		out.WriteString(s[:start])

		end := matchingSuffix(s[start:])
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", s)
		}
		end += start

		expr := s[start+len(placeholderPrefix) : end]
		value, err := r.resolveExpr(expr, depth)
		if err != nil {
			return "", err
		}
		out.WriteString(value)
		s = s[end+len(placeholderSuffix):]
	}
}

func (r *Resolver) resolveExpr(expr string, depth int) (string, error) {
	key := expr
	def := ""
	hasDefault := false
	if i := strings.Index(expr, defaultSeparator); i >= 0 {
		key, def = expr[:i], expr[i+len(defaultSeparator):]
		hasDefault = true
	}

	if v, ok := r.Get(key); ok {
		return r.resolve(v, depth+1)
	}
	if hasDefault {
		return r.resolve(def, depth+1)
	}
	return "", fmt.Errorf("could not resolve placeholder %q", key)
}

// matchingSuffix finds the closing brace for the placeholder opening at
// index 0, honoring nested placeholders. Returns -1 if unbalanced.
func matchingSuffix(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], placeholderPrefix):
			depth++
			i++
		case s[i] == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
