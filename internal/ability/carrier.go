// Package ability implements the resource-gated calls a carrier can make:
// calling in a helicopter and ordering fly-over runs.
package ability

import (
	"errors"

	"github.com/eagleglass/airsim/internal/cache"
	"github.com/eagleglass/airsim/internal/resource"
	"github.com/eagleglass/airsim/pkg/core"
)

var (
	ErrUnknownAbility = errors.New("unknown ability")
	ErrDuplicate      = errors.New("ability already added")
)

// Carrier hosts abilities. The containers of its abilities form one pool.
type Carrier struct {
	ID       core.EntityID
	Name     string
	Faction  core.Faction
	Position core.Cell

	abilities []*Ability
	pool      *resource.Pool
}

// NewCarrier creates a carrier whose pool caches its sibling list for ttl
// ticks of clock.
func NewCarrier(name string, faction core.Faction, clock cache.Clock, ttl int) *Carrier {
	c := &Carrier{ID: core.NewEntityID(), Name: name, Faction: faction}
	c.pool = resource.NewPool(c, clock, ttl)
	return c
}

func (c *Carrier) Pool() *resource.Pool { return c.pool }

// Containers implements resource.Holder, in ability order.
func (c *Carrier) Containers() []*resource.Container {
	var out []*resource.Container
	for _, a := range c.abilities {
		if a.Container != nil {
			out = append(out, a.Container)
		}
	}
	return out
}

// Add attaches a new ability built from def.
func (c *Carrier) Add(def Def) (*Ability, error) {
	if c.Ability(def.Name) != nil {
		return nil, ErrDuplicate
	}
	a := newAbility(def, c)
	c.abilities = append(c.abilities, a)
	c.pool.Invalidate()
	return a, nil
}

// Remove detaches the named ability and its container.
func (c *Carrier) Remove(name string) error {
	for i, a := range c.abilities {
		if a.Def.Name == name {
			c.abilities = append(c.abilities[:i], c.abilities[i+1:]...)
			c.pool.Invalidate()
			return nil
		}
	}
	return ErrUnknownAbility
}

// Ability returns the named ability or nil.
func (c *Carrier) Ability(name string) *Ability {
	for _, a := range c.abilities {
		if a.Def.Name == name {
			return a
		}
	}
	return nil
}

func (c *Carrier) Abilities() []*Ability {
	out := make([]*Ability, len(c.abilities))
	copy(out, c.abilities)
	return out
}

// Save writes every ability's container under prefix.
func (c *Carrier) Save(s core.Snapshot, prefix string) {
	s.PutEntity(core.Key(prefix, "id"), c.ID)
	for _, a := range c.abilities {
		if a.Container != nil {
			a.Container.Save(s, core.Key(prefix, "abilities", a.Def.Name))
		}
	}
}

// Load restores containers of abilities already added. Abilities missing
// from the snapshot keep their configured contents.
func (c *Carrier) Load(s core.Snapshot, prefix string) {
	if id := s.Entity(core.Key(prefix, "id")); !id.IsNil() {
		c.ID = id
	}
	for _, a := range c.abilities {
		key := core.Key(prefix, "abilities", a.Def.Name)
		if a.Container != nil && s.Has(key) {
			a.Container.Load(s, key)
		}
	}
	c.pool.Invalidate()
}
