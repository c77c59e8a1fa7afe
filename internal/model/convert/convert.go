// Package convert provides functions to convert between GORM models and core types
package convert

import (
	"database/sql"
	"time"

	"github.com/eagleglass/airsim/internal/model"
	"github.com/eagleglass/airsim/pkg/core"
	"gorm.io/datatypes"
)

// SessionToModel converts a core.Session to its GORM row.
func SessionToModel(s *core.Session) model.Session {
	return model.Session{
		ID:             s.ID.String(),
		Scenario:       s.Scenario,
		StartTime:      s.StartTime,
		TicksPerSecond: s.TicksPerSecond,
	}
}

// SessionToCore converts a GORM Session to a core.Session. A malformed id
// reads as the nil handle.
func SessionToCore(s model.Session) core.Session {
	id, _ := core.ParseEntityID(s.ID)
	return core.Session{
		ID:             id,
		Scenario:       s.Scenario,
		StartTime:      s.StartTime,
		TicksPerSecond: s.TicksPerSecond,
	}
}

// EndedAt returns the value stored in Session.EndTime.
func EndedAt(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// EventToModel converts a core.Event recorded in sessionID.
func EventToModel(sessionID string, e *core.Event) model.Event {
	var data datatypes.JSONMap
	if len(e.Data) > 0 {
		data = make(datatypes.JSONMap, len(e.Data))
		for k, v := range e.Data {
			data[k] = v
		}
	}
	return model.Event{
		SessionID: sessionID,
		Tick:      e.Tick,
		Time:      e.Time,
		Kind:      string(e.Kind),
		SourceID:  e.Source.String(),
		TargetID:  e.Target.String(),
		PosX:      e.Position.X,
		PosY:      e.Position.Y,
		PosZ:      e.Position.Z,
		Message:   e.Message,
		Data:      data,
	}
}

// EventToCore converts a GORM Event to a core.Event. Non-string payload
// values are dropped.
func EventToCore(e model.Event) core.Event {
	out := core.Event{
		Tick:     e.Tick,
		Time:     e.Time,
		Kind:     core.EventKind(e.Kind),
		Position: core.Vec3{X: e.PosX, Y: e.PosY, Z: e.PosZ},
		Message:  e.Message,
	}
	out.Source, _ = core.ParseEntityID(e.SourceID)
	out.Target, _ = core.ParseEntityID(e.TargetID)
	if len(e.Data) > 0 {
		out.Data = make(map[string]string, len(e.Data))
		for k, v := range e.Data {
			if s, ok := v.(string); ok {
				out.Data[k] = s
			}
		}
	}
	return out
}

// SnapshotToModel converts a snapshot taken at tick.
func SnapshotToModel(sessionID string, tick int, at time.Time, snap core.Snapshot) model.Snapshot {
	return model.Snapshot{
		SessionID: sessionID,
		Tick:      tick,
		Time:      at,
		Data:      datatypes.JSONMap(snap.ToMap()),
	}
}

// SnapshotToCore returns the snapshot data and its tick.
func SnapshotToCore(s model.Snapshot) (core.Snapshot, int) {
	return core.SnapshotFromMap(s.Data), s.Tick
}
