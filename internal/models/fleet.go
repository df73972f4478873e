package models

import "time"

// Line is a bus route: an ordered sequence of stops identified by
// per-line sequence order.
type Line struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stop is a fixed geographic point served by one or more lines.
type Stop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// StopOnLine is a stop together with its sequence order on a specific line.
type StopOnLine struct {
	Stop
	SequenceOrder int `json:"sequenceOrder"`
}

// LineDetail is a line with its ordered stops and the encoded polyline of
// the stop-to-stop path, for map rendering.
type LineDetail struct {
	Line
	Stops    []StopOnLine `json:"stops"`
	Polyline string       `json:"polyline"`
}

// StopWithDistance is a stop annotated with its distance from a query point.
type StopWithDistance struct {
	Stop
	DistanceMeters float64 `json:"distanceMeters"`
}

// VehiclePosition is the latest known position of an active session.
type VehiclePosition struct {
	SessionID string    `json:"sessionId"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BusETA is one vehicle's estimated arrival at a target stop. It is
// computed fresh per request and never persisted.
type BusETA struct {
	SessionID        string `json:"sessionId"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	DistanceMeters   int    `json:"distanceMeters"`
	IsApproaching    bool   `json:"isApproaching"`
	CurrentStopOrder int    `json:"currentStopOrder"`
	// NextStopOrder is nil when the vehicle's nearest stop is the last in
	// list order; the display field does not wrap around.
	NextStopOrder *int `json:"nextStopOrder"`
}
