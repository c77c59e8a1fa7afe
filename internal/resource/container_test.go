package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/pkg/core"
)

const (
	steel core.ResourceType = "steel"
	fuel  core.ResourceType = "fuel"
	food  core.ResourceType = "food"
)

func caps(pairs ...any) []core.ResourceCount {
	var out []core.ResourceCount
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, core.ResourceCount{Type: pairs[i].(core.ResourceType), Count: pairs[i+1].(int)})
	}
	return out
}

func TestContainer_AcceptsAndCapacity(t *testing.T) {
	c := NewContainer("a", caps(steel, 100, fuel, 20))

	assert.True(t, c.Accepts(steel))
	assert.False(t, c.Accepts(food))
	assert.Equal(t, 100, c.Capacity(steel))
	assert.Equal(t, 0, c.Capacity(food))
	assert.Equal(t, []core.ResourceType{steel, fuel}, c.Types())
	assert.Equal(t, 20, c.LocalAvailableSpace(fuel))
	assert.True(t, c.HasAnyAvailableSpace())
}

func TestContainer_WithContentsClampsToCapacity(t *testing.T) {
	c := NewContainer("a", caps(steel, 30), WithContents(
		core.ResourceCount{Type: steel, Count: 50},
		core.ResourceCount{Type: food, Count: 10},
	))

	assert.Equal(t, 30, c.Count(steel))
	assert.Equal(t, 0, c.Count(food))
	assert.False(t, c.HasAnyAvailableSpace())
}

func TestContainer_StackLimitSplitsStacks(t *testing.T) {
	c := NewContainer("a", caps(steel, 200), WithStackLimit(75), WithContents(core.ResourceCount{Type: steel, Count: 160}))

	assert.Equal(t, []core.Stack{
		{Type: steel, Count: 75},
		{Type: steel, Count: 75},
		{Type: steel, Count: 10},
	}, c.Stacks())

	require.True(t, c.Consume(steel, 80))
	assert.Equal(t, []core.Stack{
		{Type: steel, Count: 70},
		{Type: steel, Count: 10},
	}, c.Stacks())
}

func TestContainer_ConsumeIsAtomic(t *testing.T) {
	c := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 10}))

	assert.False(t, c.Consume(steel, 11))
	assert.Equal(t, 10, c.Count(steel))
	assert.True(t, c.Consume(steel, 0))
	assert.True(t, c.Consume(steel, 10))
	assert.Nil(t, c.Stacks())
}

func TestContainer_Unload(t *testing.T) {
	c := NewContainer("a", caps(steel, 100, fuel, 100), WithContents(
		core.ResourceCount{Type: fuel, Count: 5},
		core.ResourceCount{Type: steel, Count: 7},
	))

	s, ok := c.Unload()
	require.True(t, ok)
	assert.Equal(t, core.Stack{Type: fuel, Count: 5}, s)

	s, ok = c.Unload()
	require.True(t, ok)
	assert.Equal(t, steel, s.Type)

	_, ok = c.Unload()
	assert.False(t, ok)
}

func TestContainer_IsLow(t *testing.T) {
	c := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 49}))
	assert.True(t, c.IsLow(steel, DefaultLowThreshold))
	c.add(steel, 1)
	assert.False(t, c.IsLow(steel, DefaultLowThreshold))
}

func TestContainer_SaveLoadRoundTrip(t *testing.T) {
	orig := NewContainer("a", caps(steel, 200, fuel, 50), WithStackLimit(75), WithContents(
		core.ResourceCount{Type: steel, Count: 120},
		core.ResourceCount{Type: fuel, Count: 12},
	))
	orig.setTargetFill(steel, 90)

	snap := core.Snapshot{}
	orig.Save(snap, "ability.0")

	restored := NewContainer("a", caps(steel, 200, fuel, 50), WithStackLimit(75))
	restored.Load(snap, "ability.0")

	assert.Equal(t, orig, restored)
}

func TestContainer_LoadMissingDefaultsToEmpty(t *testing.T) {
	c := NewContainer("a", caps(steel, 100), WithContents(core.ResourceCount{Type: steel, Count: 40}))
	c.setTargetFill(steel, 60)

	c.Load(core.Snapshot{}, "nothing")

	assert.Equal(t, 0, c.Count(steel))
	assert.Nil(t, c.Stacks())
	assert.NotNil(t, c.targetFill)
	assert.Equal(t, 0, c.TargetFill(steel))
}

func TestContainer_LoadDropsInvalidStacks(t *testing.T) {
	snap := core.Snapshot{
		"c.stacks":         "3",
		"c.stacks.0.type":  "steel",
		"c.stacks.0.count": "500",
		"c.stacks.1.type":  "food",
		"c.stacks.1.count": "5",
		"c.stacks.2.type":  "steel",
		"c.stacks.2.count": "bogus",
	}
	c := NewContainer("c", caps(steel, 100))
	c.Load(snap, "c")

	assert.Equal(t, []core.Stack{{Type: steel, Count: 100}}, c.Stacks())
}
