package resource

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// Container holds typed stacks for exactly one owner (an ability or a
// loader). Per-type counts never exceed the declared capacity.
type Container struct {
	Name       string
	capacities []core.ResourceCount
	stackLimit int
	stacks     []core.Stack
	targetFill map[core.ResourceType]int
}

// Option configures a Container.
type Option func(*Container)

// WithStackLimit caps the size of each stored stack. Zero means unlimited.
func WithStackLimit(n int) Option {
	return func(c *Container) { c.stackLimit = n }
}

// WithContents preloads the container, clamped to capacity.
func WithContents(contents ...core.ResourceCount) Option {
	return func(c *Container) {
		for _, rc := range contents {
			if !c.Accepts(rc.Type) {
				continue
			}
			n := min(rc.Count, c.LocalAvailableSpace(rc.Type))
			c.add(rc.Type, n)
		}
	}
}

// NewContainer creates a container accepting the given types. The order of
// capacities is the container's type order.
func NewContainer(name string, capacities []core.ResourceCount, opts ...Option) *Container {
	c := &Container{
		Name:       name,
		capacities: append([]core.ResourceCount(nil), capacities...),
		targetFill: make(map[core.ResourceType]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Types returns the accepted types in declaration order.
func (c *Container) Types() []core.ResourceType {
	out := make([]core.ResourceType, 0, len(c.capacities))
	for _, rc := range c.capacities {
		out = append(out, rc.Type)
	}
	return out
}

func (c *Container) Accepts(t core.ResourceType) bool {
	for _, rc := range c.capacities {
		if rc.Type == t {
			return true
		}
	}
	return false
}

// Capacity returns the maximum count for t, zero when t is not accepted.
func (c *Container) Capacity(t core.ResourceType) int {
	for _, rc := range c.capacities {
		if rc.Type == t {
			return rc.Count
		}
	}
	return 0
}

// Count returns the amount of t currently held.
func (c *Container) Count(t core.ResourceType) int {
	total := 0
	for _, s := range c.stacks {
		if s.Type == t {
			total += s.Count
		}
	}
	return total
}

// LocalAvailableSpace is max(0, capacity - count) for this container only.
func (c *Container) LocalAvailableSpace(t core.ResourceType) int {
	return max(0, c.Capacity(t)-c.Count(t))
}

func (c *Container) HasAnyAvailableSpace() bool {
	for _, rc := range c.capacities {
		if c.LocalAvailableSpace(rc.Type) > 0 {
			return true
		}
	}
	return false
}

// IsLow reports whether the held amount of t is below threshold.
func (c *Container) IsLow(t core.ResourceType, threshold int) bool {
	return c.Count(t) < threshold
}

// Stacks returns a copy of the held stacks.
func (c *Container) Stacks() []core.Stack {
	return append([]core.Stack(nil), c.stacks...)
}

// Consume removes n units of t only if the container alone holds enough.
func (c *Container) Consume(t core.ResourceType, n int) bool {
	if n <= 0 {
		return true
	}
	if c.Count(t) < n {
		return false
	}
	c.remove(t, n)
	return true
}

// Unload takes the first held stack out of the container whole.
func (c *Container) Unload() (core.Stack, bool) {
	if len(c.stacks) == 0 {
		return core.Stack{}, false
	}
	s := c.stacks[0]
	c.stacks = c.stacks[1:]
	if len(c.stacks) == 0 {
		c.stacks = nil
	}
	return s, true
}

// TargetFill returns the desired stock level of t for this container.
func (c *Container) TargetFill(t core.ResourceType) int {
	return c.targetFill[t]
}

func (c *Container) setTargetFill(t core.ResourceType, n int) {
	if c.targetFill == nil {
		c.targetFill = make(map[core.ResourceType]int)
	}
	c.targetFill[t] = max(0, n)
}

// add stores n units of t, topping up partial stacks before opening new
// ones. Callers check space first.
func (c *Container) add(t core.ResourceType, n int) {
	if n <= 0 {
		return
	}
	if c.stackLimit > 0 {
		for i := range c.stacks {
			if n == 0 {
				return
			}
			s := &c.stacks[i]
			if s.Type != t || s.Count >= c.stackLimit {
				continue
			}
			moved := min(n, c.stackLimit-s.Count)
			s.Count += moved
			n -= moved
		}
		for n > 0 {
			size := min(n, c.stackLimit)
			c.stacks = append(c.stacks, core.Stack{Type: t, Count: size})
			n -= size
		}
		return
	}
	for i := range c.stacks {
		if c.stacks[i].Type == t {
			c.stacks[i].Count += n
			return
		}
	}
	c.stacks = append(c.stacks, core.Stack{Type: t, Count: n})
}

// remove takes up to n units of t in stack order, splitting the last stack
// touched, and returns how many were taken.
func (c *Container) remove(t core.ResourceType, n int) int {
	taken := 0
	kept := c.stacks[:0]
	for i := range c.stacks {
		s := c.stacks[i]
		if s.Type == t && taken < n {
			part := s.Split(n - taken)
			taken += part.Count
		}
		if !s.Spent() {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	c.stacks = kept
	return taken
}
