package beans

import (
	"sync"
	"sync/atomic"
)

// definitionStore is the mutable registry of bean definitions and the
// bookkeeping around it: registration-ordered name list, manually
// registered singleton names, aliases, and the frozen-configuration
// snapshot.
//
// The definition map permits lock-free reads. The name list is appended in
// place during the startup registration phase and switches to
// copy-on-write once bean creation has started, so an in-flight
// enumeration (such as the pre-instantiation snapshot) never observes a
// partially mutated list.
type definitionStore struct {
	defs sync.Map // string -> *Definition

	namesMu sync.Mutex
	names   atomic.Pointer[[]string]

	// manually registered singleton names, kept separate from
	// definition-backed names but unioned into name iteration
	manualMu sync.Mutex
	manual   atomic.Pointer[[]string]

	aliases sync.Map // alias -> canonical name

	frozenNames     atomic.Pointer[[]string]
	frozen          atomic.Bool
	creationStarted atomic.Bool
}

func newDefinitionStore() *definitionStore {
	s := &definitionStore{}
	empty := []string{}
	s.names.Store(&empty)
	s.manual.Store(&empty)
	return s
}

func (s *definitionStore) get(name string) (*Definition, bool) {
	v, ok := s.defs.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Definition), true
}

func (s *definitionStore) contains(name string) bool {
	_, ok := s.defs.Load(name)
	return ok
}

func (s *definitionStore) count() int {
	return len(*s.names.Load())
}

// register stores the definition and returns the one it replaced, if any.
// Name-list maintenance only happens for genuinely new names; replacing an
// existing name keeps its registration position.
func (s *definitionStore) register(name string, def *Definition) (old *Definition) {
	if v, loaded := s.defs.Load(name); loaded {
		old = v.(*Definition)
		s.defs.Store(name, def)
		return old
	}

	s.defs.Store(name, def)
	s.namesMu.Lock()
	if s.creationStarted.Load() {
		current := *s.names.Load()
		updated := make([]string, 0, len(current)+1)
		updated = append(updated, current...)
		updated = append(updated, name)
		s.names.Store(&updated)
	} else {
		updated := append(*s.names.Load(), name)
		s.names.Store(&updated)
	}
	s.namesMu.Unlock()

	// a definition shadows any manual singleton of the same name
	s.removeManualName(name)
	s.frozenNames.Store(nil)
	return nil
}

func (s *definitionStore) remove(name string) (*Definition, bool) {
	v, loaded := s.defs.LoadAndDelete(name)
	if !loaded {
		return nil, false
	}

	s.namesMu.Lock()
	current := *s.names.Load()
	updated := make([]string, 0, len(current))
	for _, n := range current {
		if n != name {
			updated = append(updated, n)
		}
	}
	s.names.Store(&updated)
	s.namesMu.Unlock()

	s.frozenNames.Store(nil)
	return v.(*Definition), true
}

// definitionNames returns the registration-ordered name list. After
// freezing, the same immutable snapshot is handed out on every call.
func (s *definitionStore) definitionNames() []string {
	if s.frozen.Load() {
		if snap := s.frozenNames.Load(); snap != nil {
			return *snap
		}
	}
	current := *s.names.Load()
	out := make([]string, len(current))
	copy(out, current)
	if s.frozen.Load() {
		s.frozenNames.Store(&out)
	}
	return out
}

func (s *definitionStore) addManualName(name string) {
	if s.contains(name) {
		return
	}
	s.manualMu.Lock()
	defer s.manualMu.Unlock()
	current := *s.manual.Load()
	for _, n := range current {
		if n == name {
			return
		}
	}
	updated := make([]string, 0, len(current)+1)
	updated = append(updated, current...)
	updated = append(updated, name)
	s.manual.Store(&updated)
}

func (s *definitionStore) removeManualName(name string) {
	s.manualMu.Lock()
	defer s.manualMu.Unlock()
	current := *s.manual.Load()
	updated := make([]string, 0, len(current))
	found := false
	for _, n := range current {
		if n == name {
			found = true
			continue
		}
		updated = append(updated, n)
	}
	if found {
		s.manual.Store(&updated)
	}
}

func (s *definitionStore) manualNames() []string {
	return *s.manual.Load()
}

func (s *definitionStore) isManualName(name string) bool {
	for _, n := range s.manualNames() {
		if n == name {
			return true
		}
	}
	return false
}

func (s *definitionStore) freeze() {
	s.frozen.Store(true)
}

func (s *definitionStore) isFrozen() bool {
	return s.frozen.Load()
}

func (s *definitionStore) markCreationStarted() {
	s.creationStarted.Store(true)
}

func (s *definitionStore) hasCreationStarted() bool {
	return s.creationStarted.Load()
}

// ----- alias registry -----

func (s *definitionStore) registerAlias(name, alias string, allowOverride bool) error {
	if alias == name {
		s.aliases.Delete(alias)
		return nil
	}
	if existing, ok := s.aliases.Load(alias); ok && existing.(string) != name && !allowOverride {
		return &StoreConflictError{Name: alias}
	}
	s.aliases.Store(alias, name)
	return nil
}

func (s *definitionStore) removeAlias(alias string) {
	s.aliases.Delete(alias)
}

func (s *definitionStore) isAlias(name string) bool {
	_, ok := s.aliases.Load(name)
	return ok
}

// canonical follows alias links to the underlying bean name.
func (s *definitionStore) canonical(name string) string {
	seen := map[string]bool{}
	for {
		v, ok := s.aliases.Load(name)
		if !ok || seen[name] {
			return name
		}
		seen[name] = true
		name = v.(string)
	}
}

// aliasesOf returns all aliases pointing (directly or transitively) at the
// given canonical name.
func (s *definitionStore) aliasesOf(name string) []string {
	var out []string
	s.aliases.Range(func(k, _ any) bool {
		alias := k.(string)
		if s.canonical(alias) == name {
			out = append(out, alias)
		}
		return true
	})
	return out
}
