// pkg/core/geometry.go
package core

import (
	"fmt"
	"math"
)

// Vec3 is a continuous position or direction. X and Z span the ground
// plane, Y is altitude.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Len returns the euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length, or the zero vector when v has
// no length.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat drops the altitude component.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Perpendicular returns the ground-plane vector rotated 90 degrees.
func (v Vec3) Perpendicular() Vec3 { return Vec3{X: -v.Z, Z: v.X} }

// Cell projects v onto the discrete ground grid.
func (v Vec3) Cell() Cell {
	return Cell{X: int(math.Floor(v.X)), Z: int(math.Floor(v.Z))}
}

// DistanceTo returns the ground-plane distance between v and o.
func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Flat().Sub(o.Flat()).Len()
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Cell is a discrete ground-grid coordinate.
type Cell struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
}

// Vec returns the centre-less vector of the cell at ground altitude.
func (c Cell) Vec() Vec3 { return Vec3{X: float64(c.X), Z: float64(c.Z)} }

func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Z: c.Z + o.Z} }

func (c Cell) String() string { return fmt.Sprintf("%d,%d", c.X, c.Z) }

// Rotation is a facing expressed in degrees clockwise from +Z.
type Rotation float64

// RotationOf returns the facing of a ground-plane direction.
func RotationOf(dir Vec3) Rotation {
	if dir.X == 0 && dir.Z == 0 {
		return 0
	}
	deg := math.Atan2(dir.X, dir.Z) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return Rotation(deg)
}
