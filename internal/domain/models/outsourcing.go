package models

import "time"

// OutsourcingStatus is derived from the record's two nullable dates; it is
// never stored.
type OutsourcingStatus string

const (
	// OutsourcingNotSent means the item has not entered the outsourcing
	// flow. Such records appear in no query result.
	OutsourcingNotSent OutsourcingStatus = "not_sent"
	// OutsourcingInTransit means the item is at the vendor.
	OutsourcingInTransit OutsourcingStatus = "in_transit"
	// OutsourcingReceived means the item has come back.
	OutsourcingReceived OutsourcingStatus = "received"
)

// OutsourcingRecord tracks one item sent to an external vendor.
type OutsourcingRecord struct {
	QRData      string
	Outsourcer  string
	RequestDate *time.Time
	ReceiveDate *time.Time
}

// Status collapses the two dates into the current state. ReceiveDate is only
// meaningful when RequestDate is set.
func (r OutsourcingRecord) Status() OutsourcingStatus {
	switch {
	case r.RequestDate == nil:
		return OutsourcingNotSent
	case r.ReceiveDate == nil:
		return OutsourcingInTransit
	default:
		return OutsourcingReceived
	}
}
