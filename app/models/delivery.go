package models

import "time"

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusMissed    = "missed"
)

// Delivery is a per-day attestation of a delivery outcome. Rows are
// append-only: after creation only the status may change, and only through an
// explicit admin correction. The composite unique index backstops the
// one-row-per-subscriber-per-day rule that the ledger also pre-checks.
type Delivery struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SubscriberID    uint      `gorm:"not null;index:ux_deliveries_subscriber_date,unique,priority:1" json:"subscriber_id"`
	SubscriberPhone string    `gorm:"type:varchar(20);not null" json:"subscriber_phone"`
	Date            time.Time `gorm:"not null;index:ux_deliveries_subscriber_date,unique,priority:2" json:"date"`
	Status          string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DeliveryDay normalizes a timestamp to its calendar day in UTC. All ledger
// writes go through this so the uniqueness rule compares equal values.
func DeliveryDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
