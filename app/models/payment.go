package models

import "time"

// PaymentStatusCompleted is the only status this system writes. Failed or
// abandoned captures never reach the store.
const PaymentStatusCompleted = "completed"

const (
	PaymentMethodGateway = "RazorPay"
	PaymentMethodCash    = "Cash"
)

// Payment records one successful capture. Immutable after creation except for
// NeedsReconciliation, which an admin clears after fixing the subscription
// link by hand.
type Payment struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	SubscriberID        uint      `gorm:"not null;index" json:"subscriber_id"`
	SubscriberPhone     string    `gorm:"type:varchar(20);not null" json:"subscriber_phone"`
	Amount              int       `gorm:"not null" json:"amount" validate:"gt=0"`
	Currency            string    `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	CaptureRef          string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"capture_ref"`
	PaidAt              time.Time `gorm:"not null" json:"paid_at"`
	Method              string    `gorm:"type:varchar(50);not null" json:"method"`
	Status              string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	SubscriptionID      *uint     `gorm:"default:null;index" json:"subscription_id,omitempty"`
	Description         string    `gorm:"type:varchar(255)" json:"description"`
	NeedsReconciliation bool      `gorm:"default:false;index" json:"needs_reconciliation"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}
