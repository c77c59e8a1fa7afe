package flight

import (
	"github.com/eagleglass/airsim/pkg/core"
)

// Lane is one aircraft's run inside a formation.
type Lane struct {
	Start core.Cell
	End   core.Cell
}

// Formation spreads count parallel runs perpendicular to start→end, centred
// on the requested run and spacing apart. Count below one yields one lane.
func Formation(start, end core.Cell, count int, spacing float64) []Lane {
	if count < 1 {
		count = 1
	}
	perp := end.Vec().Sub(start.Vec()).Normalized().Perpendicular()
	lanes := make([]Lane, 0, count)
	for i := 0; i < count; i++ {
		shift := (float64(i) - float64(count-1)/2) * spacing
		offset := perp.Scale(shift)
		lanes = append(lanes, Lane{
			Start: start.Vec().Add(offset).Cell(),
			End:   end.Vec().Add(offset).Cell(),
		})
	}
	return lanes
}
