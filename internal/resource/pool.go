package resource

import (
	"math"

	"github.com/eagleglass/airsim/internal/cache"
	"github.com/eagleglass/airsim/pkg/core"
)

// DefaultCacheTicks is how long the sibling list stays cached.
const DefaultCacheTicks = 60

// DefaultLowThreshold is the count under which a type is reported low.
const DefaultLowThreshold = 50

// Holder exposes every container owned by one carrier, in a fixed order.
// That order is the order loads spill and consumption walks.
type Holder interface {
	Containers() []*Container
}

// Pool treats all sibling containers of a carrier as one logical store.
// It is driven from the simulation goroutine and does no locking.
type Pool struct {
	holder   Holder
	siblings *cache.Ticked[[]*Container]
}

// NewPool wraps holder. The sibling list is rebuilt every ttl ticks of
// clock or after Invalidate.
func NewPool(holder Holder, clock cache.Clock, ttl int) *Pool {
	return &Pool{
		holder:   holder,
		siblings: cache.NewTicked[[]*Container](clock, ttl),
	}
}

// Invalidate drops the cached sibling list. Call it whenever a container is
// added to or removed from the holder.
func (p *Pool) Invalidate() {
	p.siblings.Invalidate()
}

// Containers returns the (possibly cached) sibling list.
func (p *Pool) Containers() []*Container {
	return p.siblings.Get(func() []*Container {
		var out []*Container
		for _, c := range p.holder.Containers() {
			if c != nil {
				out = append(out, c)
			}
		}
		return out
	})
}

// ResourceCount sums the held amount of t across siblings.
func (p *Pool) ResourceCount(t core.ResourceType) int {
	total := 0
	for _, c := range p.Containers() {
		total += c.Count(t)
	}
	return total
}

// TotalCapacity sums the declared capacity of t across siblings.
func (p *Pool) TotalCapacity(t core.ResourceType) int {
	total := 0
	for _, c := range p.Containers() {
		total += c.Capacity(t)
	}
	return total
}

// AvailableSpace is max(0, Σcapacity - Σcurrent) for t.
func (p *Pool) AvailableSpace(t core.ResourceType) int {
	return max(0, p.TotalCapacity(t)-p.ResourceCount(t))
}

// LocalAvailableSpace is AvailableSpace restricted to one container.
func (p *Pool) LocalAvailableSpace(c *Container, t core.ResourceType) int {
	return c.LocalAvailableSpace(t)
}

func (p *Pool) CanAcceptAmount(t core.ResourceType, n int) bool {
	return p.AvailableSpace(t) >= n
}

// WouldExceedTypeLimit reports whether adding n more of t overflows the pool.
func (p *Pool) WouldExceedTypeLimit(t core.ResourceType, n int) bool {
	return !p.CanAcceptAmount(t, n)
}

func (p *Pool) HasAnyAvailableSpace() bool {
	for _, c := range p.Containers() {
		if c.HasAnyAvailableSpace() {
			return true
		}
	}
	return false
}

func (p *Pool) IsLow(t core.ResourceType, threshold int) bool {
	return p.ResourceCount(t) < threshold
}

// Types returns every accepted type in first-seen sibling order.
func (p *Pool) Types() []core.ResourceType {
	seen := make(map[core.ResourceType]bool)
	var out []core.ResourceType
	for _, c := range p.Containers() {
		for _, t := range c.Types() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// LoadResult describes where a loaded stack went. Loaded went into the
// requested container, Spilled into siblings, Discarded was destroyed.
type LoadResult struct {
	Loaded    int
	Spilled   int
	Discarded int
}

// Placed is the amount that ended up in the pool.
func (r LoadResult) Placed() int { return r.Loaded + r.Spilled }

// TryLoad moves min(count, local space, stack.Count) units of the stack
// into c. A count <= 0 means the whole stack. Whatever remains on the stack
// afterwards is offered to the other siblings in pool order and anything
// still unplaced is discarded, leaving the stack spent.
//
// Nothing is touched when c does not accept the type or has no room.
func (p *Pool) TryLoad(c *Container, stack *core.Stack, count int) (LoadResult, error) {
	var res LoadResult
	if stack.Spent() {
		return res, nil
	}
	if !c.Accepts(stack.Type) {
		return res, ErrNotAccepted
	}
	space := c.LocalAvailableSpace(stack.Type)
	if space <= 0 {
		return res, ErrNoSpace
	}
	if count <= 0 {
		count = stack.Count
	}

	n := min(count, space, stack.Count)
	c.add(stack.Type, stack.Split(n).Count)
	res.Loaded = n

	for _, sib := range p.Containers() {
		if stack.Spent() {
			break
		}
		if sib == c || !sib.Accepts(stack.Type) {
			continue
		}
		room := sib.LocalAvailableSpace(stack.Type)
		if room <= 0 {
			continue
		}
		moved := stack.Split(room).Count
		sib.add(stack.Type, moved)
		res.Spilled += moved
	}

	res.Discarded = stack.Split(stack.Count).Count
	return res, nil
}

// Consume removes n units of t from the siblings in pool order. The total
// is checked first: when the pool holds less than n nothing is removed and
// false is returned.
func (p *Pool) Consume(t core.ResourceType, n int) bool {
	if n <= 0 {
		return true
	}
	if p.ResourceCount(t) < n {
		return false
	}
	left := n
	for _, c := range p.Containers() {
		if left == 0 {
			break
		}
		left -= c.remove(t, left)
	}
	return left == 0
}

// CheckCosts returns an *InsufficientError for the first cost the pool
// cannot cover.
func (p *Pool) CheckCosts(costs []core.ResourceCount) error {
	need := make(map[core.ResourceType]int)
	var order []core.ResourceType
	for _, rc := range costs {
		if rc.Count <= 0 {
			continue
		}
		if _, ok := need[rc.Type]; !ok {
			order = append(order, rc.Type)
		}
		need[rc.Type] += rc.Count
	}
	for _, t := range order {
		if have := p.ResourceCount(t); have < need[t] {
			return &InsufficientError{Type: t, Need: need[t], Have: have}
		}
	}
	return nil
}

// ApplyCosts consumes every cost, or none of them if any is short.
func (p *Pool) ApplyCosts(costs []core.ResourceCount) error {
	if err := p.CheckCosts(costs); err != nil {
		return err
	}
	for _, rc := range costs {
		p.Consume(rc.Type, rc.Count)
	}
	return nil
}

// TargetFill sums the per-container desired stock of t.
func (p *Pool) TargetFill(t core.ResourceType) int {
	total := 0
	for _, c := range p.Containers() {
		total += c.TargetFill(t)
	}
	return total
}

// SetTargetFill spreads amount evenly over the siblings accepting t using
// integer division. The remainder is dropped, so TargetFill may read back
// lower than amount.
func (p *Pool) SetTargetFill(t core.ResourceType, amount int) {
	if amount == p.TargetFill(t) {
		return
	}
	var accepting []*Container
	for _, c := range p.Containers() {
		if c.Accepts(t) {
			accepting = append(accepting, c)
		}
	}
	if len(accepting) == 0 {
		return
	}
	share := max(0, amount) / len(accepting)
	for _, c := range accepting {
		c.setTargetFill(t, share)
	}
}

// SetTargetFillFraction sets the target to round(f × TotalCapacity(t)),
// with f clamped to [0, 1].
func (p *Pool) SetTargetFillFraction(t core.ResourceType, f float64) {
	f = math.Max(0, math.Min(1, f))
	p.SetTargetFill(t, int(math.Round(f*float64(p.TotalCapacity(t)))))
}

// HaulDemand is how many units of t are missing to reach the target fill.
func (p *Pool) HaulDemand(t core.ResourceType) int {
	return max(0, p.TargetFill(t)-p.ResourceCount(t))
}
