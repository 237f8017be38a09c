package models

import "time"

// TimestampLayout is the storage format for ledger timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// UpsertResult reports whether an observation created a fresh ledger row or
// stamped an existing one.
type UpsertResult string

const (
	ResultCreated UpsertResult = "created"
	ResultUpdated UpsertResult = "updated"
)

// Observation is one (item, station) sighting from a workshop ledger.
type Observation struct {
	QRData     string
	ObserverID int64 // telegram id of the scanning operator, 0 when unknown
	CreatedAt  time.Time
	ModifiedAt *time.Time
}

// StationMatch is an observation tagged with the station it was found at.
type StationMatch struct {
	Station     string
	Observation Observation
}

// StationHistory groups an order's observations under one station.
type StationHistory struct {
	Station      string
	Observations []Observation
}
