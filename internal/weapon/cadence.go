package weapon

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// Cadence paces untargeted fire on a fly-over: each weapon fires, then
// waits its TicksBetweenShots, for as long as the caller keeps ticking.
type Cadence struct {
	Defs []Def
	Left []int
}

func NewCadence(defs ...Def) *Cadence {
	return &Cadence{Defs: defs, Left: make([]int, len(defs))}
}

// Tick counts every weapon down and calls each for all of them in order.
// due is true for a weapon whose countdown ran out; its countdown restarts.
func (c *Cadence) Tick(each func(i int, def Def, due bool)) {
	for i, def := range c.Defs {
		if c.Left[i] > 0 {
			c.Left[i]--
		}
		due := c.Left[i] <= 0
		if due {
			c.Left[i] = def.TicksBetweenShots
		}
		each(i, def, due)
	}
}

func (c *Cadence) Save(s core.Snapshot, prefix string) {
	s.PutInt(core.Key(prefix, "n"), len(c.Left))
	for i, left := range c.Left {
		s.PutInt(core.IndexKey(prefix, i, "left"), left)
	}
}

// Load restores countdowns; missing entries default to zero (fire on the
// next tick).
func (c *Cadence) Load(s core.Snapshot, prefix string) {
	c.Left = make([]int, len(c.Defs))
	for i := range c.Left {
		c.Left[i] = max(0, s.Int(core.IndexKey(prefix, i, "left"), 0))
	}
}
