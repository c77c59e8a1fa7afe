package sim

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// CarrierStatus is a carrier's pool at a glance.
type CarrierStatus struct {
	Name      string                    `json:"name"`
	Faction   core.Faction              `json:"faction"`
	Resources map[core.ResourceType]int `json:"resources"`
	Low       []core.ResourceType       `json:"low,omitempty"`
}

// Status is a point-in-time summary for reporters.
type Status struct {
	Tick       int                  `json:"tick"`
	Units      int                  `json:"units"`
	Spawned    int                  `json:"spawned"`
	Departed   int                  `json:"departed"`
	Destroyed  int                  `json:"destroyed"`
	Pending    int                  `json:"pendingOrders"`
	Casualties map[core.Faction]int `json:"casualties"`
	Carriers   []CarrierStatus      `json:"carriers"`
}

// Status takes the write lock: pool caches rebuild on read.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Tick:       s.Tick(),
		Units:      s.units.Len(),
		Spawned:    s.spawned.Value(),
		Departed:   s.departed.Value(),
		Destroyed:  s.lost.Value(),
		Pending:    len(s.orders),
		Casualties: s.world.Casualties(),
	}
	for _, c := range s.carriers {
		pool := c.Pool()
		cs := CarrierStatus{Name: c.Name, Faction: c.Faction, Resources: map[core.ResourceType]int{}}
		for _, t := range pool.Types() {
			cs.Resources[t] = pool.ResourceCount(t)
			if pool.IsLow(t, s.cfg.LowThreshold) {
				cs.Low = append(cs.Low, t)
			}
		}
		st.Carriers = append(st.Carriers, cs)
	}
	return st
}
