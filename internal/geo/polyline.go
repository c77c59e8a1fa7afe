package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/eagleglass/airsim/pkg/core"
)

// TrackLineString converts a flown track into a web mercator line string.
func TrackLineString(origin Origin, track []core.Vec3) (geom.LineString, error) {
	if len(track) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(track))
	}
	flat := make([]float64, 0, len(track)*3)
	for _, p := range track {
		pt, ok := WebMercator(origin, p).XY()
		if !ok {
			return geom.LineString{}, ErrInvalidCoordinates
		}
		flat = append(flat, pt.X, pt.Y, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ)), nil
}
