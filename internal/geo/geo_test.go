package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/eagleglass/airsim/pkg/core"
)

func TestCellFromString(t *testing.T) {
	c, err := CellFromString(" 12, -4 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (core.Cell{X: 12, Z: -4}) {
		t.Errorf("got %v", c)
	}

	for _, bad := range []string{"", "1", "1,2,3", "a,2", "1,b"} {
		if _, err := CellFromString(bad); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%q: expected ErrInvalidCoordinates, got %v", bad, err)
		}
	}
}

func TestCoords3857From4326_Origin(t *testing.T) {
	xy := Coords3857From4326(0, 0)
	if math.Abs(xy.X) > 1e-6 || math.Abs(xy.Y) > 1e-6 {
		t.Errorf("expected null island at 0,0, got %v", xy)
	}
}

func TestWebMercator_OffsetsAreMetric(t *testing.T) {
	origin := Origin{Longitude: 10, Latitude: 50}
	base := Coords3857From4326(origin.Longitude, origin.Latitude)

	pt := WebMercator(origin, core.Vec3{X: 100, Y: 15, Z: -20})
	c, ok := pt.Coordinates()
	if !ok {
		t.Fatal("expected non-empty point")
	}
	if math.Abs(c.X-(base.X+100)) > 1e-6 || math.Abs(c.Y-(base.Y-20)) > 1e-6 {
		t.Errorf("unexpected coordinates %v", c.XY)
	}
	if c.Z != 15 {
		t.Errorf("expected altitude 15 as Z, got %v", c.Z)
	}
}

func TestBounds_Contains(t *testing.T) {
	b := NewBounds(0, 0, 10, 10)
	cases := []struct {
		pos  core.Vec3
		want bool
	}{
		{core.Vec3{X: 0, Z: 0}, true},
		{core.Vec3{X: 10, Y: 99, Z: 10}, true},
		{core.Vec3{X: 5, Z: 5}, true},
		{core.Vec3{X: -0.1, Z: 5}, false},
		{core.Vec3{X: 5, Z: 10.01}, false},
	}
	for _, tc := range cases {
		if got := b.Contains(tc.pos); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
	if !b.ContainsCell(core.Cell{X: 3, Z: 3}) {
		t.Error("expected cell inside")
	}
}

func TestBlocked(t *testing.T) {
	from := core.Vec3{X: 0.5, Z: 0.5}
	to := core.Vec3{X: 8.5, Z: 0.5}

	if Blocked(from, to, nil) {
		t.Error("no blockers must not block")
	}
	if !Blocked(from, to, []core.Cell{{X: 4, Z: 0}}) {
		t.Error("wall on the line must block")
	}
	if Blocked(from, to, []core.Cell{{X: 4, Z: 3}}) {
		t.Error("wall off the line must not block")
	}
	if Blocked(from, to, []core.Cell{{X: 8, Z: 0}}) {
		t.Error("target's own cell must not block")
	}
}
