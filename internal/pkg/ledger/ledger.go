// Package ledger is the append-only record of daily delivery outcomes.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
)

// ErrDuplicateDeliveryDate is returned when a record already exists for the
// subscriber and calendar day. Corrections go through CorrectDelivery, never
// through a second RecordDelivery.
var ErrDuplicateDeliveryDate = errors.New("delivery already recorded for this date")

// ErrInvalidDeliveryStatus is returned for statuses other than delivered/missed.
var ErrInvalidDeliveryStatus = errors.New("invalid delivery status")

// Service provides delivery ledger operations on top of the delivery repository.
type Service struct {
	deliveries repository.DeliveryRepository
}

// NewService creates a delivery ledger service from an injected repository.
func NewService(deliveries repository.DeliveryRepository) *Service {
	return &Service{deliveries: deliveries}
}

// MarkResult is the per-subscriber outcome of a bulk mark. Exactly one of
// Delivery and Err is set.
type MarkResult struct {
	SubscriberID uint
	Delivery     *models.Delivery
	Err          error
}

func validStatus(status string) bool {
	return status == models.DeliveryStatusDelivered || status == models.DeliveryStatusMissed
}

// RecordDelivery appends one day's outcome for a subscriber. The existence
// pre-check yields the typed duplicate error; the unique index on
// (subscriber, date) backstops the race between two concurrent writers.
func (s *Service) RecordDelivery(subscriberID uint, phone string, date time.Time, status string) (*models.Delivery, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeliveryStatus, status)
	}

	day := models.DeliveryDay(date)
	exists, err := s.deliveries.ExistsForDay(subscriberID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("subscriber %d, %s: %w", subscriberID, day.Format("2006-01-02"), ErrDuplicateDeliveryDate)
	}

	delivery := &models.Delivery{
		SubscriberID:    subscriberID,
		SubscriberPhone: phone,
		Date:            day,
		Status:          status,
	}
	if err := s.deliveries.Create(delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}

// CorrectDelivery overwrites the status of an existing record. Date and
// identity never change.
func (s *Service) CorrectDelivery(deliveryID uint, newStatus string) (*models.Delivery, error) {
	if !validStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeliveryStatus, newStatus)
	}
	return s.deliveries.UpdateStatus(deliveryID, newStatus)
}

// RecentForSubscriber returns the subscriber's latest records, newest first.
// Stateless between calls.
func (s *Service) RecentForSubscriber(subscriberID uint, limit int) ([]models.Delivery, error) {
	return s.deliveries.RecentBySubscriberID(subscriberID, limit)
}

// BulkMark records one day's outcome for each subscriber independently. A
// duplicate for one subscriber does not roll back the others; the caller gets
// a result per subscriber. phones must be parallel to subscriberIDs.
func (s *Service) BulkMark(subscriberIDs []uint, phones []string, date time.Time, status string) []MarkResult {
	results := make([]MarkResult, 0, len(subscriberIDs))
	for i, id := range subscriberIDs {
		phone := ""
		if i < len(phones) {
			phone = phones[i]
		}
		delivery, err := s.RecordDelivery(id, phone, date, status)
		results = append(results, MarkResult{SubscriberID: id, Delivery: delivery, Err: err})
	}
	return results
}
