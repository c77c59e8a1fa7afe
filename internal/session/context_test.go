package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/pkg/core"
)

type fixedClock int

func (c fixedClock) Tick() int { return int(c) }

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	assert.Equal(t, "No scenario loaded", ctx.GetSession().Scenario)
	assert.Equal(t, 0, ctx.Tick())

	attrs := ctx.LogAttrs(context.Background())
	require.Len(t, attrs, 1)
	assert.Equal(t, "scenario", attrs[0].Key)
}

func TestContext_SetSession(t *testing.T) {
	ctx := NewContext()
	s := &core.Session{ID: core.NewEntityID(), Scenario: "ridge", TicksPerSecond: 60}
	ctx.SetSession(s, fixedClock(120))

	assert.Same(t, s, ctx.GetSession())
	assert.Equal(t, 120, ctx.Tick())

	attrs := ctx.LogAttrs(context.Background())
	require.Len(t, attrs, 3)
	assert.Equal(t, "ridge", attrs[0].Value.String())
	assert.Equal(t, s.ID.String(), attrs[1].Value.String())
	assert.Equal(t, int64(120), attrs[2].Value.Int64())
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.SetSession(&core.Session{Scenario: "run"}, fixedClock(i))
		}()
		go func() {
			defer wg.Done()
			_ = ctx.LogAttrs(context.Background())
			_ = ctx.Tick()
		}()
	}
	wg.Wait()
	assert.Equal(t, "run", ctx.GetSession().Scenario)
}
