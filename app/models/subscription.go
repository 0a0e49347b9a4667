package models

import "time"

const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// Subscription is a time-bounded delivery entitlement tied to a plan.
//
// The Status column exists purely so admin queries can filter without date
// arithmetic. It is a cache of the derived value: every display and every
// business decision goes through lifecycle.DeriveStatus, and when the two
// disagree the derived value wins.
type Subscription struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	SubscriberID      uint       `gorm:"not null;index" json:"subscriber_id"`
	SubscriberPhone   string     `gorm:"type:varchar(20);not null" json:"subscriber_phone"`
	PlanID            string     `gorm:"type:varchar(50);not null" json:"plan_id"`
	PlanName          string     `gorm:"type:varchar(100);not null" json:"plan_name"`
	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	EndDate           time.Time  `gorm:"not null" json:"end_date"`
	Status            string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	LastPaymentAt     *time.Time `gorm:"default:null" json:"last_payment_at,omitempty"`
	LastPaymentAmount int        `gorm:"default:0" json:"last_payment_amount"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
