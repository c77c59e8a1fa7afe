package cache

import (
	"sync"
)

// Clock reports the current simulation tick.
type Clock interface {
	Tick() int
}

// Ticked memoizes a computed value for a bounded number of ticks. It is
// owned by a single component and not safe for concurrent use.
type Ticked[T any] struct {
	ttl     int
	clock   Clock
	value   T
	builtAt int
	valid   bool
}

// NewTicked returns a cache that rebuilds its value once more than ttl
// ticks have passed since the last build. A ttl <= 0 disables caching.
func NewTicked[T any](clock Clock, ttl int) *Ticked[T] {
	return &Ticked[T]{ttl: ttl, clock: clock}
}

// Get returns the cached value, calling build when the entry is missing,
// invalidated or older than the ttl.
func (c *Ticked[T]) Get(build func() T) T {
	now := 0
	if c.clock != nil {
		now = c.clock.Tick()
	}
	if !c.valid || c.ttl <= 0 || now-c.builtAt > c.ttl || now < c.builtAt {
		c.value = build()
		c.builtAt = now
		c.valid = true
	}
	return c.value
}

// Invalidate forces the next Get to rebuild.
func (c *Ticked[T]) Invalidate() {
	c.valid = false
}

// Registry is a thread-safe keyed lookup. The tick loop writes to it while
// monitors and event sinks read.
type Registry[K comparable, V any] struct {
	m     sync.RWMutex
	items map[K]V
	order []K
}

func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{items: make(map[K]V)}
}

// Add inserts or replaces v under k. Insertion order is remembered for
// Values.
func (r *Registry[K, V]) Add(k K, v V) {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.items[k]; !ok {
		r.order = append(r.order, k)
	}
	r.items[k] = v
}

func (r *Registry[K, V]) Get(k K) (V, bool) {
	r.m.RLock()
	defer r.m.RUnlock()
	v, ok := r.items[k]
	return v, ok
}

func (r *Registry[K, V]) Remove(k K) {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.items[k]; !ok {
		return
	}
	delete(r.items, k)
	for i, key := range r.order {
		if key == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry[K, V]) Len() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return len(r.items)
}

// Values returns the entries in insertion order.
func (r *Registry[K, V]) Values() []V {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]V, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.items[k])
	}
	return out
}

// Reset removes everything.
func (r *Registry[K, V]) Reset() {
	r.m.Lock()
	defer r.m.Unlock()
	r.items = make(map[K]V)
	r.order = nil
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Add(n int) {
	c.mu.Lock()
	c.v += n
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() { c.Add(1) }
