package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Session{},
	&Snapshot{},
	&Event{},
}

// Session is one simulation run
type Session struct {
	ID             string       `json:"id" gorm:"primaryKey;size:36"`
	Scenario       string       `json:"scenario" gorm:"size:200"`
	StartTime      time.Time    `json:"startTime" gorm:"index:idx_session_start"`
	EndTime        sql.NullTime `json:"endTime"`
	TicksPerSecond int          `json:"ticksPerSecond"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Snapshot is the flat simulation state at a tick
type Snapshot struct {
	ID        uint              `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID string            `json:"sessionId" gorm:"size:36;index:idx_snapshot_session_id"`
	Tick      int               `json:"tick" gorm:"index:idx_snapshot_tick"`
	Time      time.Time         `json:"time"`
	Data      datatypes.JSONMap `json:"data"`
}

func (*Snapshot) TableName() string {
	return "snapshots"
}

// Event is something that happened during a tick
type Event struct {
	ID        uint              `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID string            `json:"sessionId" gorm:"size:36;index:idx_event_session_id"`
	Tick      int               `json:"tick" gorm:"index:idx_event_tick"`
	Time      time.Time         `json:"time"`
	Kind      string            `json:"kind" gorm:"size:64;index:idx_event_kind"`
	SourceID  string            `json:"sourceId" gorm:"size:36"`
	TargetID  string            `json:"targetId" gorm:"size:36"`
	PosX      float64           `json:"posX"`
	PosY      float64           `json:"posY"`
	PosZ      float64           `json:"posZ"`
	Message   string            `json:"message"`
	Data      datatypes.JSONMap `json:"data"`
}

func (*Event) TableName() string {
	return "events"
}
