package resource

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// Save writes held stacks and the target-fill map under prefix.
func (c *Container) Save(s core.Snapshot, prefix string) {
	s.PutInt(core.Key(prefix, "stacks"), len(c.stacks))
	for i, st := range c.stacks {
		s.PutString(core.IndexKey(prefix+".stacks", i, "type"), string(st.Type))
		s.PutInt(core.IndexKey(prefix+".stacks", i, "count"), st.Count)
	}

	fills := 0
	for _, t := range c.Types() {
		if n, ok := c.targetFill[t]; ok {
			s.PutString(core.IndexKey(prefix+".fill", fills, "type"), string(t))
			s.PutInt(core.IndexKey(prefix+".fill", fills, "amount"), n)
			fills++
		}
	}
	s.PutInt(core.Key(prefix, "fill"), fills)
}

// Load replaces the container state from a snapshot. Missing sections
// restore as empty. Stacks of undeclared types are dropped and counts are
// clamped to capacity so a damaged record cannot break the capacity bound.
func (c *Container) Load(s core.Snapshot, prefix string) {
	c.stacks = nil
	n := s.Int(core.Key(prefix, "stacks"), 0)
	for i := 0; i < n; i++ {
		t := core.ResourceType(s.String(core.IndexKey(prefix+".stacks", i, "type"), ""))
		count := s.Int(core.IndexKey(prefix+".stacks", i, "count"), 0)
		if t == "" || count <= 0 || !c.Accepts(t) {
			continue
		}
		count = min(count, c.LocalAvailableSpace(t))
		if count > 0 {
			c.stacks = append(c.stacks, core.Stack{Type: t, Count: count})
		}
	}

	c.targetFill = make(map[core.ResourceType]int)
	fills := s.Int(core.Key(prefix, "fill"), 0)
	for i := 0; i < fills; i++ {
		t := core.ResourceType(s.String(core.IndexKey(prefix+".fill", i, "type"), ""))
		if t == "" {
			continue
		}
		c.targetFill[t] = max(0, s.Int(core.IndexKey(prefix+".fill", i, "amount"), 0))
	}
}
