package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleglass/airsim/pkg/core"
)

func TestTrackLineString(t *testing.T) {
	origin := Origin{Longitude: 0, Latitude: 0}
	ls, err := TrackLineString(origin, []core.Vec3{{X: 0, Y: 15, Z: 0}, {X: 30, Y: 15, Z: 40}})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, ls.Length(), 1e-6)
	assert.Equal(t, 2, ls.Coordinates().Length())

	_, err = TrackLineString(origin, []core.Vec3{{X: 1}})
	assert.Error(t, err)
}
