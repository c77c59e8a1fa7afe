package weapon

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// DefaultAmmo is the starting count and capacity of a new stock.
const DefaultAmmo = 500

// Ammo is an ammunition stock. Count never drops below zero.
type Ammo struct {
	Count    int
	Capacity int
	PerShot  int
}

// NewAmmo returns a full stock of the given capacity using one round per
// shot.
func NewAmmo(capacity int) *Ammo {
	return &Ammo{Count: capacity, Capacity: capacity, PerShot: 1}
}

// Has reports whether one more burst can be paid for.
func (a *Ammo) Has() bool {
	return a.Count >= a.PerShot
}

// Consume takes one burst's worth of rounds. It reports false, and takes
// nothing, when the stock is short.
func (a *Ammo) Consume() bool {
	if !a.Has() {
		return false
	}
	a.Count -= a.PerShot
	return true
}

// Reload adds up to n rounds without exceeding capacity and returns how
// many were added. n <= 0 refills completely.
func (a *Ammo) Reload(n int) int {
	room := max(0, a.Capacity-a.Count)
	if n <= 0 || n > room {
		n = room
	}
	a.Count += n
	return n
}

func (a *Ammo) Save(s core.Snapshot, prefix string) {
	s.PutInt(core.Key(prefix, "count"), a.Count)
	s.PutInt(core.Key(prefix, "capacity"), a.Capacity)
	s.PutInt(core.Key(prefix, "perShot"), a.PerShot)
}

func (a *Ammo) Load(s core.Snapshot, prefix string) {
	a.Capacity = max(0, s.Int(core.Key(prefix, "capacity"), DefaultAmmo))
	a.Count = min(max(0, s.Int(core.Key(prefix, "count"), DefaultAmmo)), a.Capacity)
	a.PerShot = max(1, s.Int(core.Key(prefix, "perShot"), 1))
}
