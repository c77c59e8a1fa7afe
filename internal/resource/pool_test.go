package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/pkg/core"
)

type holder struct{ containers []*Container }

func (h *holder) Containers() []*Container { return h.containers }

type clock struct{ tick int }

func (c *clock) Tick() int { return c.tick }

func newPool(cs ...*Container) (*Pool, *holder, *clock) {
	h := &holder{containers: cs}
	clk := &clock{}
	return NewPool(h, clk, DefaultCacheTicks), h, clk
}

func TestPool_Aggregates(t *testing.T) {
	a := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 30}))
	b := NewContainer("b", caps(steel, 50, fuel, 10), WithContents(core.ResourceCount{Type: steel, Count: 50}))
	p, _, _ := newPool(a, b)

	assert.Equal(t, 80, p.ResourceCount(steel))
	assert.Equal(t, 150, p.TotalCapacity(steel))
	assert.Equal(t, 70, p.AvailableSpace(steel))
	assert.Equal(t, 0, p.LocalAvailableSpace(b, steel))
	assert.True(t, p.CanAcceptAmount(steel, 70))
	assert.True(t, p.WouldExceedTypeLimit(steel, 71))
	assert.True(t, p.HasAnyAvailableSpace())
	assert.Equal(t, []core.ResourceType{steel, fuel}, p.Types())
}

func TestPool_TryLoadSpillsInOrderThenDiscards(t *testing.T) {
	a := NewContainer("a", caps(steel, 10))
	b := NewContainer("b", caps(fuel, 100))
	c := NewContainer("c", caps(steel, 5))
	d := NewContainer("d", caps(steel, 8), WithContents(core.ResourceCount{Type: steel, Count: 6}))
	p, _, _ := newPool(a, b, c, d)

	stack := &core.Stack{Type: steel, Count: 30}
	res, err := p.TryLoad(a, stack, 0)
	require.NoError(t, err)

	assert.Equal(t, LoadResult{Loaded: 10, Spilled: 7, Discarded: 13}, res)
	assert.True(t, stack.Spent())
	assert.Equal(t, 10, a.Count(steel))
	assert.Equal(t, 5, c.Count(steel))
	assert.Equal(t, 8, d.Count(steel))
	assert.Equal(t, 23, p.ResourceCount(steel))
}

func TestPool_TryLoadRequestedCountLessThanStack(t *testing.T) {
	a := NewContainer("a", caps(steel, 100))
	b := NewContainer("b", caps(steel, 100))
	p, _, _ := newPool(a, b)

	stack := &core.Stack{Type: steel, Count: 50}
	res, err := p.TryLoad(a, stack, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Loaded)
	assert.Equal(t, 40, res.Spilled)
	assert.Equal(t, 0, res.Discarded)
	assert.Equal(t, 50, res.Placed())
}

func TestPool_TryLoadRejections(t *testing.T) {
	a := NewContainer("a", caps(steel, 10), WithContents(core.ResourceCount{Type: steel, Count: 10}))
	b := NewContainer("b", caps(steel, 10))
	p, _, _ := newPool(a, b)

	stack := &core.Stack{Type: food, Count: 5}
	_, err := p.TryLoad(a, stack, 0)
	assert.ErrorIs(t, err, ErrNotAccepted)
	assert.Equal(t, 5, stack.Count)

	stack = &core.Stack{Type: steel, Count: 5}
	_, err = p.TryLoad(a, stack, 0)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, 5, stack.Count, "rejected stack must be untouched")
	assert.Equal(t, 0, b.Count(steel))
}

func TestPool_ConsumeWalksSiblingsInOrder(t *testing.T) {
	a := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 5}))
	b := NewContainer("b", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 20}))
	p, _, _ := newPool(a, b)

	require.True(t, p.Consume(steel, 12))
	assert.Equal(t, 0, a.Count(steel))
	assert.Equal(t, 13, b.Count(steel))
}

func TestPool_ConsumeFailureLeavesPoolUntouched(t *testing.T) {
	a := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 5}))
	b := NewContainer("b", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 5}))
	p, _, _ := newPool(a, b)

	assert.False(t, p.Consume(steel, 11))
	assert.Equal(t, 5, a.Count(steel))
	assert.Equal(t, 5, b.Count(steel))
}

func TestPool_CostsAreAllOrNothing(t *testing.T) {
	a := NewContainer("a", caps(steel, 100, fuel, 100), WithContents(
		core.ResourceCount{Type: steel, Count: 50},
		core.ResourceCount{Type: fuel, Count: 3},
	))
	p, _, _ := newPool(a)

	costs := []core.ResourceCount{{Type: steel, Count: 20}, {Type: fuel, Count: 5}}
	err := p.ApplyCosts(costs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficient))

	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, fuel, insufficient.Type)
	assert.Equal(t, "not enough fuel: need 5, have 3", err.Error())
	assert.Equal(t, 50, p.ResourceCount(steel), "no partial consumption")

	require.NoError(t, p.ApplyCosts([]core.ResourceCount{{Type: steel, Count: 20}, {Type: fuel, Count: 3}}))
	assert.Equal(t, 30, p.ResourceCount(steel))
	assert.Equal(t, 0, p.ResourceCount(fuel))
}

func TestPool_CheckCostsSumsRepeatedTypes(t *testing.T) {
	a := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 15}))
	p, _, _ := newPool(a)

	err := p.CheckCosts([]core.ResourceCount{{Type: steel, Count: 10}, {Type: steel, Count: 10}})
	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 20, insufficient.Need)
}

func TestPool_SiblingCacheExpiresAndInvalidates(t *testing.T) {
	a := NewContainer("a", caps(steel, 10))
	p, h, clk := newPool(a)
	assert.Equal(t, 10, p.TotalCapacity(steel))

	h.containers = append(h.containers, NewContainer("b", caps(steel, 10)))
	clk.tick = 30
	assert.Equal(t, 10, p.TotalCapacity(steel), "cached list still in use")

	clk.tick = 60
	assert.Equal(t, 10, p.TotalCapacity(steel), "cached through the whole interval")

	clk.tick = 61
	assert.Equal(t, 20, p.TotalCapacity(steel), "rebuilt after interval")

	h.containers = h.containers[:1]
	p.Invalidate()
	assert.Equal(t, 10, p.TotalCapacity(steel), "rebuilt on structural change")
}

func TestPool_SetTargetFillTruncates(t *testing.T) {
	a := NewContainer("a", caps(steel, 100))
	b := NewContainer("b", caps(fuel, 100))
	c := NewContainer("c", caps(steel, 100))
	d := NewContainer("d", caps(steel, 100))
	p, _, _ := newPool(a, b, c, d)

	p.SetTargetFill(steel, 100)

	assert.Equal(t, 33, a.TargetFill(steel))
	assert.Equal(t, 0, b.TargetFill(steel))
	assert.Equal(t, 99, p.TargetFill(steel), "remainder is dropped")
}

func TestPool_SetTargetFillFraction(t *testing.T) {
	a := NewContainer("a", caps(steel, 75))
	b := NewContainer("b", caps(steel, 75))
	p, _, _ := newPool(a, b)

	p.SetTargetFillFraction(steel, 0.5)
	assert.Equal(t, 74, p.TargetFill(steel))

	p.SetTargetFillFraction(steel, 3)
	assert.Equal(t, 150, p.TargetFill(steel))
}

func TestPool_HaulPlanning(t *testing.T) {
	a := NewContainer("a", caps(steel, 100, fuel, 100), WithContents(core.ResourceCount{Type: steel, Count: 20}))
	p, _, _ := newPool(a)
	p.SetTargetFill(fuel, 40)
	p.SetTargetFill(steel, 30)

	assert.Equal(t, 10, p.HaulDemand(steel))
	assert.Equal(t, 40, p.HaulDemand(fuel))

	near := core.NewEntityID()
	sources := []Source{
		{ID: core.NewEntityID(), Type: steel, Count: 50, Distance: 9},
		{ID: near, Type: steel, Count: 4, Distance: 2},
		{ID: core.NewEntityID(), Type: food, Count: 99, Distance: 1},
	}
	haul, ok := p.PlanHaul(sources)
	require.True(t, ok)
	assert.Equal(t, near, haul.Source.ID)
	assert.Equal(t, 4, haul.Count)

	stack := &core.Stack{Type: steel, Count: haul.Count}
	res, err := p.Deliver(stack)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Loaded)
	assert.Equal(t, 6, p.HaulDemand(steel))
}

func TestPool_PlanHaulNothingToDo(t *testing.T) {
	a := NewContainer("a", caps(steel, 100))
	p, _, _ := newPool(a)

	_, ok := p.PlanHaul([]Source{{Type: steel, Count: 10}})
	assert.False(t, ok)
}
