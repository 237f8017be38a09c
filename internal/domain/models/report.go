package models

import "time"

// StationActivity is one station's slice of a daily summary.
type StationActivity struct {
	Station string `bson:"station" json:"station"`
	Created int    `bson:"created" json:"created"`
	Updated int    `bson:"updated" json:"updated"`
}

// DailySummary is the aggregated day of shop-floor activity archived to MongoDB.
type DailySummary struct {
	Date                time.Time         `bson:"date" json:"date"`
	Stations            []StationActivity `bson:"stations" json:"stations"`
	OutsourcingSent     int               `bson:"outsourcing_sent" json:"outsourcing_sent"`
	OutsourcingReceived int               `bson:"outsourcing_received" json:"outsourcing_received"`
	CreatedAt           time.Time         `bson:"created_at" json:"created_at"`
}
