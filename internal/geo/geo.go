package geo

import (
	"errors"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/eagleglass/airsim/pkg/core"
)

// Simulation coordinates are metres east (X) and north (Z) of a map origin.
// Exports place that origin on the globe and store everything in EPSG:3857
// so that the offsets stay metric.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Origin anchors the map on the globe.
type Origin struct {
	Longitude float64
	Latitude  float64
}

// CellFromString parses "x,z" into a cell.
func CellFromString(coords string) (core.Cell, error) {
	parts := strings.Split(strings.TrimSpace(coords), ",")
	if len(parts) != 2 {
		return core.Cell{}, ErrInvalidCoordinates
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.Cell{}, ErrInvalidCoordinates
	}
	z, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.Cell{}, ErrInvalidCoordinates
	}
	return core.Cell{X: x, Z: z}, nil
}

// Coords3857From4326 projects a longitude/latitude pair to web mercator.
func Coords3857From4326(longitude, latitude float64) geom.XY {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return geom.XY{X: x, Y: y}
}

// WebMercator places a simulation position relative to origin. Altitude is
// carried as Z.
func WebMercator(origin Origin, pos core.Vec3) geom.Point {
	base := Coords3857From4326(origin.Longitude, origin.Latitude)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: base.X + pos.X, Y: base.Y + pos.Z},
		Z:    pos.Y,
		Type: geom.DimXYZ,
	})
}

// Bounds is the rectangular operating area, inclusive on every edge.
type Bounds struct {
	env                    geom.Envelope
	MinX, MinZ, MaxX, MaxZ float64
}

func NewBounds(minX, minZ, maxX, maxZ float64) Bounds {
	env := geom.Envelope{}.
		ExpandToIncludeXY(geom.XY{X: minX, Y: minZ}).
		ExpandToIncludeXY(geom.XY{X: maxX, Y: maxZ})
	return Bounds{env: env, MinX: minX, MinZ: minZ, MaxX: maxX, MaxZ: maxZ}
}

// Contains tests the ground projection of pos.
func (b Bounds) Contains(pos core.Vec3) bool {
	return b.env.Contains(geom.XY{X: pos.X, Y: pos.Z})
}

// ContainsCell tests the cell's corner point.
func (b Bounds) ContainsCell(c core.Cell) bool {
	return b.Contains(c.Vec())
}

// Blocked reports whether the ground segment from→to crosses any blocker
// cell. Cells holding either endpoint never block.
func Blocked(from, to core.Vec3, blockers []core.Cell) bool {
	if len(blockers) == 0 {
		return false
	}
	seg := geom.NewLineString(geom.NewSequence(
		[]float64{from.X, from.Z, to.X, to.Z}, geom.DimXY,
	)).AsGeometry()
	fromCell, toCell := from.Cell(), to.Cell()
	for _, c := range blockers {
		if c == fromCell || c == toCell {
			continue
		}
		cell := geom.Envelope{}.
			ExpandToIncludeXY(geom.XY{X: float64(c.X), Y: float64(c.Z)}).
			ExpandToIncludeXY(geom.XY{X: float64(c.X + 1), Y: float64(c.Z + 1)})
		if geom.Intersects(seg, cell.AsGeometry()) {
			return true
		}
	}
	return false
}
