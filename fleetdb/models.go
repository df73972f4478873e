package fleetdb

import (
	"database/sql"
	"time"
)

type Line struct {
	ID   string
	Name string
}

type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// StopOnLine is a stop joined with its per-line sequence order. Within one
// line, sequence order values are unique and define the route traversal
// order.
type StopOnLine struct {
	StopID        string
	Name          string
	Lat           float64
	Lon           float64
	SequenceOrder int64
}

type DriverCode struct {
	ID        string
	CodeHash  string
	IsActive  bool
	CreatedAt time.Time
}

type Session struct {
	ID        string
	Token     string
	CodeID    string
	LineID    sql.NullString
	IsActive  bool
	CreatedAt time.Time
	ExpiresAt time.Time
	EndedAt   sql.NullTime
}

type Location struct {
	ID         int64
	SessionID  string
	LineID     string
	Lat        float64
	Lon        float64
	Accuracy   sql.NullFloat64
	Speed      sql.NullFloat64
	Heading    sql.NullFloat64
	RecordedAt time.Time
}

// LineLocationCount is a per-line row count used by the cleanup job's
// pre-purge statistics.
type LineLocationCount struct {
	LineID string
	Count  int64
}
