package resource

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// Source is a stack lying somewhere that a hauler could bring to the pool.
type Source struct {
	ID       core.EntityID
	Type     core.ResourceType
	Count    int
	Distance float64
}

// Haul is a planned delivery.
type Haul struct {
	Source Source
	Count  int
}

// PlanHaul picks the first pool type with unmet target fill and the
// nearest source of it. Count is min(source count, demand).
func (p *Pool) PlanHaul(sources []Source) (Haul, bool) {
	for _, t := range p.Types() {
		demand := p.HaulDemand(t)
		if demand <= 0 || p.AvailableSpace(t) <= 0 {
			continue
		}
		best := -1
		for i, src := range sources {
			if src.Type != t || src.Count <= 0 {
				continue
			}
			if best < 0 || src.Distance < sources[best].Distance {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		return Haul{Source: sources[best], Count: min(sources[best].Count, demand)}, true
	}
	return Haul{}, false
}

// Deliver loads a hauled stack into the first sibling with room for it.
func (p *Pool) Deliver(stack *core.Stack) (LoadResult, error) {
	for _, c := range p.Containers() {
		if c.Accepts(stack.Type) && c.LocalAvailableSpace(stack.Type) > 0 {
			return p.TryLoad(c, stack, 0)
		}
	}
	return LoadResult{}, ErrNoSpace
}
