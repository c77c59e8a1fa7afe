// Package sim drives the tick loop: it owns the clock, the live units and
// the carriers, runs scheduled orders and hauls supplies.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/eagleglass/airsim/internal/ability"
	"github.com/eagleglass/airsim/internal/aerial"
	"github.com/eagleglass/airsim/internal/cache"
	"github.com/eagleglass/airsim/internal/resource"
	"github.com/eagleglass/airsim/internal/weapon"
	"github.com/eagleglass/airsim/internal/world"
	"github.com/eagleglass/airsim/pkg/core"
)

// Config tunes the simulation.
type Config struct {
	TicksPerSecond int
	ScanInterval   int
	PoolCacheTicks int
	// HaulInterval is how often carriers restock from depots; 0 disables
	// hauling.
	HaulInterval int
	LowThreshold int
	Seed         uint64
}

func DefaultConfig() Config {
	return Config{
		TicksPerSecond: weapon.DefaultTicksPerSecond,
		ScanInterval:   weapon.DefaultScanInterval,
		PoolCacheTicks: resource.DefaultCacheTicks,
		HaulInterval:   weapon.DefaultTicksPerSecond,
		LowThreshold:   resource.DefaultLowThreshold,
	}
}

// Order is a scheduled cast or recall.
type Order struct {
	Tick    int
	Carrier string
	Ability string
	Request ability.Request
	Recall  bool
}

// Depot is a supply stack carriers haul from.
type Depot struct {
	ID       core.EntityID
	Type     core.ResourceType
	Count    int
	Position core.Cell
}

type owner struct {
	carrier string
	ability string
}

// Simulation is stepped from one goroutine. Status and Tick may be called
// concurrently.
type Simulation struct {
	cfg   Config
	world *world.Map
	sink  aerial.EventSink
	log   *slog.Logger
	env   aerial.Env

	tick atomic.Int64

	mu       sync.RWMutex
	units    *cache.Registry[core.EntityID, *aerial.Unit]
	owners   map[core.EntityID]owner
	carriers []*ability.Carrier
	depots   []*Depot
	orders   []Order

	spawned  cache.SafeCounter
	departed cache.SafeCounter
	lost     cache.SafeCounter
}

// New creates a simulation over w. Events go to sink, which may be nil.
func New(cfg Config, w *world.Map, sink aerial.EventSink, logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulation{
		cfg:    cfg,
		world:  w,
		sink:   sink,
		log:    logger,
		units:  cache.NewRegistry[core.EntityID, *aerial.Unit](),
		owners: make(map[core.EntityID]owner),
	}
	s.env = aerial.Env{
		World:          w,
		Damage:         w,
		Events:         s,
		Rand:           rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		TicksPerSecond: cfg.TicksPerSecond,
		ScanInterval:   cfg.ScanInterval,
	}
	return s
}

// Tick is the number of completed steps. It is the pool cache clock.
func (s *Simulation) Tick() int { return int(s.tick.Load()) }

func (s *Simulation) World() *world.Map { return s.world }

// Publish stamps ev with the current tick and forwards it.
func (s *Simulation) Publish(ev core.Event) {
	ev.Tick = s.Tick()
	switch ev.Kind {
	case core.EventUnitSpawned:
		s.spawned.Inc()
	case core.EventUnitDeparted:
		s.departed.Inc()
	case core.EventUnitDestroyed:
		s.lost.Inc()
	}
	if s.sink != nil {
		s.sink.Publish(ev)
	}
}

// AddCarrier registers a carrier whose pool is clocked by the simulation.
func (s *Simulation) AddCarrier(name string, faction core.Faction, pos core.Cell) *ability.Carrier {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := ability.NewCarrier(name, faction, s, s.cfg.PoolCacheTicks)
	c.Position = pos
	s.carriers = append(s.carriers, c)
	return c
}

func (s *Simulation) Carrier(name string) *ability.Carrier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carrier(name)
}

func (s *Simulation) carrier(name string) *ability.Carrier {
	for _, c := range s.carriers {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Simulation) Carriers() []*ability.Carrier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ability.Carrier, len(s.carriers))
	copy(out, s.carriers)
	return out
}

func (s *Simulation) AddDepot(d Depot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID.IsNil() {
		d.ID = core.NewEntityID()
	}
	s.depots = append(s.depots, &d)
}

// Schedule queues an order for its tick. Orders for past ticks run on the
// next step.
func (s *Simulation) Schedule(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	sort.SliceStable(s.orders, func(i, j int) bool { return s.orders[i].Tick < s.orders[j].Tick })
}

// Units returns the live units in spawn order.
func (s *Simulation) Units() []*aerial.Unit {
	return s.units.Values()
}

// Cast casts an ability now.
func (s *Simulation) Cast(carrier, name string, req ability.Request) ([]*aerial.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cast(carrier, name, req)
}

func (s *Simulation) lookup(carrier, name string) (*ability.Ability, error) {
	c := s.carrier(carrier)
	if c == nil {
		return nil, fmt.Errorf("unknown carrier %q", carrier)
	}
	a := c.Ability(name)
	if a == nil {
		return nil, fmt.Errorf("carrier %q: %w: %s", carrier, ability.ErrUnknownAbility, name)
	}
	return a, nil
}

func (s *Simulation) cast(carrier, name string, req ability.Request) ([]*aerial.Unit, error) {
	a, err := s.lookup(carrier, name)
	if err != nil {
		return nil, err
	}
	units, err := a.Cast(req, ability.Env{Unit: s.env, Actors: s.world, Tick: s.Tick()})
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		s.units.Add(u.ID, u)
		s.owners[u.ID] = owner{carrier: carrier, ability: name}
	}
	s.log.Info("ability cast", "carrier", carrier, "ability", name, "units", len(units))
	return units, nil
}

// Recall sends the units of an ability home.
func (s *Simulation) Recall(carrier, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(carrier, name)
	if err != nil {
		return err
	}
	return a.Recall()
}

// Step advances the simulation by one tick: due orders, then every live
// unit in spawn order, then hauling.
func (s *Simulation) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tick := int(s.tick.Add(1))
	s.runOrders(tick)

	for _, u := range s.units.Values() {
		u.Tick(tick)
		if !u.Alive() {
			s.units.Remove(u.ID)
			delete(s.owners, u.ID)
		}
	}

	if s.cfg.HaulInterval > 0 && tick%s.cfg.HaulInterval == 0 {
		s.haul()
	}
	return nil
}

func (s *Simulation) runOrders(tick int) {
	n := 0
	for _, o := range s.orders {
		if o.Tick > tick {
			break
		}
		n++
		var err error
		if o.Recall {
			var a *ability.Ability
			if a, err = s.lookup(o.Carrier, o.Ability); err == nil {
				err = a.Recall()
			}
		} else {
			_, err = s.cast(o.Carrier, o.Ability, o.Request)
		}
		if err != nil {
			s.log.Info("order not carried out", "tick", tick, "carrier", o.Carrier, "ability", o.Ability, "recall", o.Recall, "error", err)
		}
	}
	s.orders = s.orders[n:]
}

// Run steps n times, or until ctx is done when n <= 0.
func (s *Simulation) Run(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) haul() {
	for _, c := range s.carriers {
		pool := c.Pool()
		sources := make([]resource.Source, 0, len(s.depots))
		for _, d := range s.depots {
			if d.Count <= 0 {
				continue
			}
			sources = append(sources, resource.Source{
				ID:       d.ID,
				Type:     d.Type,
				Count:    d.Count,
				Distance: c.Position.Vec().DistanceTo(d.Position.Vec()),
			})
		}
		plan, ok := pool.PlanHaul(sources)
		if !ok {
			continue
		}
		for _, d := range s.depots {
			if d.ID == plan.Source.ID {
				d.Count -= plan.Count
				break
			}
		}
		stack := core.Stack{Type: plan.Source.Type, Count: plan.Count}
		res, err := pool.Deliver(&stack)
		if err != nil {
			s.log.Warn("haul not delivered", "carrier", c.Name, "type", stack.Type, "error", err)
			continue
		}
		s.Publish(core.Event{
			Kind:     core.EventResourceLoaded,
			Source:   c.ID,
			Position: c.Position.Vec(),
			Message:  string(plan.Source.Type),
			Data: map[string]string{
				"count":     strconv.Itoa(res.Placed()),
				"discarded": strconv.Itoa(res.Discarded),
			},
		})
		if pool.IsLow(plan.Source.Type, s.cfg.LowThreshold) {
			s.log.Debug("carrier still low", "carrier", c.Name, "type", plan.Source.Type, "count", pool.ResourceCount(plan.Source.Type))
		}
	}
}
