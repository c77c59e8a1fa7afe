package sim

import (
	"github.com/eagleglass/airsim/internal/ability"
	"github.com/eagleglass/airsim/internal/aerial"
	"github.com/eagleglass/airsim/pkg/core"
)

// Save captures the clock, carrier pools, live units, depots and pending
// orders. The world itself is not part of the snapshot.
func (s *Simulation) Save() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := core.Snapshot{}
	snap.PutInt("tick", s.Tick())
	for _, c := range s.carriers {
		c.Save(snap, core.Key("carriers", c.Name))
	}

	units := s.units.Values()
	snap.PutInt("units", len(units))
	for i, u := range units {
		prefix := core.IndexKey("units", i, "")
		u.Save(snap, prefix)
		o := s.owners[u.ID]
		snap.PutString(core.Key(prefix, "carrier"), o.carrier)
		snap.PutString(core.Key(prefix, "ability"), o.ability)
	}

	snap.PutInt("depots", len(s.depots))
	for i, d := range s.depots {
		snap.PutEntity(core.IndexKey("depots", i, "id"), d.ID)
		snap.PutString(core.IndexKey("depots", i, "type"), string(d.Type))
		snap.PutInt(core.IndexKey("depots", i, "count"), d.Count)
		snap.PutCell(core.IndexKey("depots", i, "pos"), d.Position)
	}

	snap.PutInt("orders", len(s.orders))
	for i, o := range s.orders {
		snap.PutInt(core.IndexKey("orders", i, "tick"), o.Tick)
		snap.PutString(core.IndexKey("orders", i, "carrier"), o.Carrier)
		snap.PutString(core.IndexKey("orders", i, "ability"), o.Ability)
		snap.PutCell(core.IndexKey("orders", i, "start"), o.Request.Start)
		snap.PutCell(core.IndexKey("orders", i, "end"), o.Request.End)
		snap.PutBool(core.IndexKey("orders", i, "recall"), o.Recall)
	}
	return snap
}

// Load replaces the running state with snap. Carriers and their abilities
// must already be registered; units whose carrier is gone are dropped.
func (s *Simulation) Load(snap core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick.Store(int64(snap.Int("tick", 0)))
	for _, c := range s.carriers {
		c.Load(snap, core.Key("carriers", c.Name))
	}

	s.units.Reset()
	clear(s.owners)
	for i := range snap.Int("units", 0) {
		prefix := core.IndexKey("units", i, "")
		o := owner{
			carrier: snap.String(core.Key(prefix, "carrier"), ""),
			ability: snap.String(core.Key(prefix, "ability"), ""),
		}
		a, err := s.lookup(o.carrier, o.ability)
		if err != nil {
			s.log.Warn("dropping saved unit", "index", i, "error", err)
			continue
		}
		u := aerial.Restore(snap, prefix, s.env)
		if !u.Alive() {
			continue
		}
		a.Attach(u)
		s.units.Add(u.ID, u)
		s.owners[u.ID] = o
	}

	s.depots = s.depots[:0]
	for i := range snap.Int("depots", 0) {
		s.depots = append(s.depots, &Depot{
			ID:       snap.Entity(core.IndexKey("depots", i, "id")),
			Type:     core.ResourceType(snap.String(core.IndexKey("depots", i, "type"), "")),
			Count:    snap.Int(core.IndexKey("depots", i, "count"), 0),
			Position: snap.Cell(core.IndexKey("depots", i, "pos")),
		})
	}

	s.orders = s.orders[:0]
	for i := range snap.Int("orders", 0) {
		s.orders = append(s.orders, Order{
			Tick:    snap.Int(core.IndexKey("orders", i, "tick"), 0),
			Carrier: snap.String(core.IndexKey("orders", i, "carrier"), ""),
			Ability: snap.String(core.IndexKey("orders", i, "ability"), ""),
			Request: ability.Request{
				Start: snap.Cell(core.IndexKey("orders", i, "start")),
				End:   snap.Cell(core.IndexKey("orders", i, "end")),
			},
			Recall:  snap.Bool(core.IndexKey("orders", i, "recall"), false),
		})
	}
}
