// Package flight moves a unit in a straight line across the operating area.
package flight

import (
	"github.com/eagleglass/airsim/pkg/core"
)

const (
	// DefaultPreEntry is how far before the run start firing may begin.
	DefaultPreEntry = 10.0
	// DefaultAltitude is the cruise height above ground.
	DefaultAltitude = 15.0

	// maxEntrySteps bounds the walk back to the edge on unbounded maps.
	maxEntrySteps = 1 << 16
)

// Bounds answers whether a position lies inside the operating area.
type Bounds interface {
	IsInBounds(pos core.Vec3) bool
}

// Controller flies a unit from Start towards End and beyond, until it
// leaves the bounds.
type Controller struct {
	Start     core.Cell
	End       core.Cell
	Position  core.Vec3
	Direction core.Vec3
	Speed     float64
	PreEntry  float64
	Altitude  float64
	Exited    bool
}

// New creates a controller for the run start→end. Call Launch before the
// first Tick.
func New(start, end core.Cell, speed float64) *Controller {
	return &Controller{
		Start:     start,
		End:       end,
		Direction: end.Vec().Sub(start.Vec()).Normalized(),
		Speed:     speed,
		PreEntry:  DefaultPreEntry,
		Altitude:  DefaultAltitude,
	}
}

// Launch places the unit on the bounds edge behind Start: it walks back
// along the run until it leaves the bounds, then steps forward once.
func (c *Controller) Launch(b Bounds) {
	pos := c.Start.Vec()
	for i := 0; i < maxEntrySteps && b.IsInBounds(pos); i++ {
		pos = pos.Sub(c.Direction)
	}
	pos = pos.Add(c.Direction)
	pos.Y = c.Altitude
	c.Position = pos
	c.Exited = false
}

// Tick advances one step. It returns false once the unit has left the
// bounds; the caller must then destroy it.
func (c *Controller) Tick(b Bounds) bool {
	if c.Exited {
		return false
	}
	c.Position = c.Position.Add(c.Direction.Scale(c.Speed))
	if !b.IsInBounds(c.Position) {
		c.Exited = true
		return false
	}
	return true
}

// Cell is the ground cell under the unit.
func (c *Controller) Cell() core.Cell {
	return c.Position.Cell()
}

// RunLength is |End − Start|.
func (c *Controller) RunLength() float64 {
	return c.End.Vec().Sub(c.Start.Vec()).Len()
}

// AlongTrack is the signed distance of the unit past Start measured along
// the run.
func (c *Controller) AlongTrack() float64 {
	run := c.End.Vec().Sub(c.Start.Vec()).Normalized()
	return c.Position.Flat().Sub(c.Start.Vec()).Dot(run)
}

// Within reports whether AlongTrack lies in [from, RunLength].
func (c *Controller) Within(from float64) bool {
	d := c.AlongTrack()
	return d >= from && d <= c.RunLength()
}

// InFiringRange is the window [-PreEntry, RunLength].
func (c *Controller) InFiringRange() bool {
	return c.Within(-c.PreEntry)
}

// InDropRange is the window [0, RunLength].
func (c *Controller) InDropRange() bool {
	return c.Within(0)
}

// Rotation is the unit's facing.
func (c *Controller) Rotation() core.Rotation {
	return core.RotationOf(c.Direction)
}

func (c *Controller) Save(s core.Snapshot, prefix string) {
	s.PutCell(core.Key(prefix, "start"), c.Start)
	s.PutCell(core.Key(prefix, "end"), c.End)
	s.PutVec(core.Key(prefix, "pos"), c.Position)
	s.PutVec(core.Key(prefix, "dir"), c.Direction)
	s.PutFloat(core.Key(prefix, "speed"), c.Speed)
	s.PutFloat(core.Key(prefix, "preEntry"), c.PreEntry)
	s.PutFloat(core.Key(prefix, "altitude"), c.Altitude)
	s.PutBool(core.Key(prefix, "exited"), c.Exited)
}

func (c *Controller) Load(s core.Snapshot, prefix string) {
	c.Start = s.Cell(core.Key(prefix, "start"))
	c.End = s.Cell(core.Key(prefix, "end"))
	c.Position = s.Vec(core.Key(prefix, "pos"))
	c.Direction = s.Vec(core.Key(prefix, "dir"))
	if c.Direction == (core.Vec3{}) {
		c.Direction = c.End.Vec().Sub(c.Start.Vec()).Normalized()
	}
	c.Speed = s.Float(core.Key(prefix, "speed"), c.Speed)
	c.PreEntry = s.Float(core.Key(prefix, "preEntry"), DefaultPreEntry)
	c.Altitude = s.Float(core.Key(prefix, "altitude"), DefaultAltitude)
	c.Exited = s.Bool(core.Key(prefix, "exited"), false)
}
