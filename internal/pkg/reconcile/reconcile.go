// Package reconcile records completed payment captures and links them to the
// subscriptions they pay for.
//
// Capture and subscription bookkeeping are deliberately two steps: the capture
// boundary is outside our control, so the design must tolerate the capture
// succeeding while the subsequent link update fails. That case is surfaced as
// ErrReconciliationPending, never dropped — money must stay visible.
package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
	"gorm.io/gorm"
)

// ErrSubscriptionNotFound is returned when a linked subscription id does not
// resolve in the store.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrReconciliationPending marks a payment that was captured and recorded but
// whose subscription link could not be updated. Terminal until an admin fixes
// the link by hand; there is no automatic retry.
var ErrReconciliationPending = errors.New("payment recorded, subscription link pending manual reconciliation")

// Service provides payment reconciliation on top of the payment and
// subscription repositories.
type Service struct {
	payments      repository.PaymentRepository
	subscriptions repository.SubscriptionRepository
}

// NewService creates a reconciliation service from injected repositories.
func NewService(payments repository.PaymentRepository, subscriptions repository.SubscriptionRepository) *Service {
	return &Service{payments: payments, subscriptions: subscriptions}
}

// CaptureInput carries the confirmed capture into the store. The gateway has
// already collected the money; this input never represents an attempt.
type CaptureInput struct {
	CaptureRef      string
	SubscriberID    uint
	SubscriberPhone string
	Amount          int
	Currency        string
	Method          string
	Description     string
	SubscriptionID  *uint
	PaidAt          time.Time
}

// CaptureConfirmed writes the payment record for a successful capture and,
// when a subscription is referenced, updates that subscription's last-payment
// fields. It never extends the end date — renewal is a separate explicit
// action.
//
// When the referenced subscription does not resolve, the payment is still
// written (flagged for manual reconciliation) and the returned error wraps
// ErrReconciliationPending. Callers must treat that as "recorded, needs
// attention", not as a failed capture.
func (s *Service) CaptureConfirmed(in CaptureInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("invalid capture amount %d for ref %s", in.Amount, in.CaptureRef)
	}
	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}
	method := in.Method
	if method == "" {
		method = models.PaymentMethodGateway
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := &models.Payment{
		SubscriberID:    in.SubscriberID,
		SubscriberPhone: in.SubscriberPhone,
		Amount:          in.Amount,
		Currency:        currency,
		CaptureRef:      in.CaptureRef,
		PaidAt:          paidAt,
		Method:          method,
		Status:          models.PaymentStatusCompleted,
		SubscriptionID:  in.SubscriptionID,
		Description:     in.Description,
	}

	var sub *models.Subscription
	if in.SubscriptionID != nil {
		var err error
		sub, err = s.subscriptions.GetByID(*in.SubscriptionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Money was captured: record the payment anyway and flag it.
			payment.NeedsReconciliation = true
			if createErr := s.payments.Create(payment); createErr != nil {
				return nil, createErr
			}
			return payment, fmt.Errorf("subscription %d: %w: %w", *in.SubscriptionID, ErrSubscriptionNotFound, ErrReconciliationPending)
		}
		if err != nil {
			return nil, fmt.Errorf("subscription %d lookup: %w", *in.SubscriptionID, err)
		}
	}

	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}

	if sub != nil {
		sub.LastPaymentAt = &paidAt
		sub.LastPaymentAmount = in.Amount
		if err := s.subscriptions.Update(sub); err != nil {
			return payment, fmt.Errorf("subscription %d last-payment update failed: %w: %w", sub.ID, err, ErrReconciliationPending)
		}
	}

	return payment, nil
}

// HistoryForSubscriber returns the subscriber's payments, newest first. A
// needs-reconciliation payment appears here like any other.
func (s *Service) HistoryForSubscriber(subscriberID uint, limit int) ([]models.Payment, error) {
	return s.payments.RecentBySubscriberID(subscriberID, limit)
}
