package beans

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Disposable is implemented by beans holding resources that need cleanup.
// Cached singletons are closed in reverse registration order when the
// factory shuts down or when a singleton is destroyed individually.
type Disposable interface {
	Close() error
}

// creationTicket marks a singleton as currently being created. The owner
// is the goroutine that started the creation, so a re-entrant request from
// the same goroutine is recognized as a circular reference while an
// unrelated goroutine simply waits for completion.
type creationTicket struct {
	owner uint64
	done  chan struct{}
}

// gid returns the current goroutine's id, parsed from the stack header.
// Creation tracking keys off it the same way a thread-local would.
func gid() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseUint(string(buf), 10, 64)
	return id
}

// singletonCache caches fully created singleton instances by name and
// tracks names currently in creation.
type singletonCache struct {
	instances sync.Map // string -> any

	mu         sync.Mutex
	order      []string
	inCreation map[string]*creationTicket
}

func newSingletonCache() *singletonCache {
	return &singletonCache{inCreation: make(map[string]*creationTicket)}
}

func (c *singletonCache) get(name string) (any, bool) {
	return c.instances.Load(name)
}

func (c *singletonCache) contains(name string) bool {
	_, ok := c.instances.Load(name)
	return ok
}

// put registers an externally constructed instance directly.
func (c *singletonCache) put(name string, instance any) {
	c.instances.Store(name, instance)
	c.mu.Lock()
	c.appendOrderLocked(name)
	c.mu.Unlock()
}

func (c *singletonCache) appendOrderLocked(name string) {
	for _, n := range c.order {
		if n == name {
			return
		}
	}
	c.order = append(c.order, name)
}

// getOrCreate returns the cached instance for name, creating it with
// create if absent. A re-entrant request from the goroutine already
// creating the name fails with CurrentlyInCreationError; a concurrent
// request from a different goroutine blocks until the creation settles.
func (c *singletonCache) getOrCreate(name string, create func() (any, error)) (any, error) {
	self := gid()
	for {
		if v, ok := c.instances.Load(name); ok {
			return v, nil
		}

		c.mu.Lock()
		if v, ok := c.instances.Load(name); ok {
			c.mu.Unlock()
			return v, nil
		}
		if t, busy := c.inCreation[name]; busy {
			if t.owner == self {
				c.mu.Unlock()
				return nil, &CurrentlyInCreationError{Name: name}
			}
			done := t.done
			c.mu.Unlock()
			<-done
			continue
		}
		t := &creationTicket{owner: self, done: make(chan struct{})}
		c.inCreation[name] = t
		c.mu.Unlock()

		v, err := create()

		c.mu.Lock()
		delete(c.inCreation, name)
		if err == nil {
			c.instances.Store(name, v)
			c.appendOrderLocked(name)
		}
		close(t.done)
		c.mu.Unlock()

		return v, err
	}
}

// names returns the cached singleton names in creation order.
func (c *singletonCache) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *singletonCache) isInCreation(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inCreation[name]
	return busy
}

// remove evicts the cached instance and returns it for disposal.
func (c *singletonCache) remove(name string) (any, bool) {
	v, loaded := c.instances.LoadAndDelete(name)
	if !loaded {
		return nil, false
	}
	c.mu.Lock()
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return v, true
}

// removeAll evicts every cached instance, returned in reverse registration
// order for disposal.
func (c *singletonCache) removeAll() []any {
	c.mu.Lock()
	order := c.order
	c.order = nil
	c.mu.Unlock()

	out := make([]any, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		if v, loaded := c.instances.LoadAndDelete(order[i]); loaded {
			out = append(out, v)
		}
	}
	return out
}
