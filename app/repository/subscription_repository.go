package repository

import (
	"strings"
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentBySubscriberID retrieves the subscriber's most recent subscription.
// The stored status is only an index; callers decide through the lifecycle
// package whether the returned record is actually active.
func (r *subscriptionRepository) GetCurrentBySubscriberID(subscriberID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("subscriber_id = ?", subscriberID).Order("end_date DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetBySubscriberID retrieves all subscriptions for a subscriber, newest first
func (r *subscriptionRepository) GetBySubscriberID(subscriberID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("subscriber_id = ?", subscriberID).Order("end_date DESC").Find(&subs).Error
	return subs, err
}

// Update updates an existing subscription in the database
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// List retrieves a paginated list of subscriptions, newest first
func (r *subscriptionRepository) List(offset, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, err
}

// Count returns the total number of subscriptions
func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Count(&count).Error
	return count, err
}

// CountByStatus counts subscriptions by their stored status
func (r *subscriptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Search searches for subscriptions by subscriber phone substring
func (r *subscriptionRepository) Search(phoneQuery string) ([]models.Subscription, error) {
	var subs []models.Subscription
	pattern := "%" + strings.TrimSpace(phoneQuery) + "%"
	err := r.db.Where("subscriber_phone LIKE ?", pattern).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// ExpireDue rewrites the stored status for rows whose end date has passed.
// Readers never trust the column, so this is only an index refresh for admin
// filters.
func (r *subscriptionRepository) ExpireDue(now time.Time) (int64, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("status = ? AND end_date <= ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return tx.RowsAffected, tx.Error
}
