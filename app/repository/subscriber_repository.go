package repository

import (
	"strings"

	"github.com/rsinghal/paperroute/app/models"
	"gorm.io/gorm"
)

// subscriberRepository implements the SubscriberRepository interface
type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber repository instance
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

// Create creates a new subscriber in the database
func (r *subscriberRepository) Create(subscriber *models.Subscriber) error {
	return r.db.Create(subscriber).Error
}

// GetByID retrieves a subscriber by their ID
func (r *subscriberRepository) GetByID(id uint) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.db.First(&subscriber, id).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// GetByPhone retrieves a subscriber by their phone number
func (r *subscriberRepository) GetByPhone(phone string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.db.Where("phone_number = ?", phone).First(&subscriber).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// Update updates an existing subscriber in the database
func (r *subscriberRepository) Update(subscriber *models.Subscriber) error {
	return r.db.Save(subscriber).Error
}

// List retrieves a paginated list of subscribers, newest first
func (r *subscriberRepository) List(offset, limit int) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&subscribers).Error
	return subscribers, err
}

// Count returns the total number of subscribers
func (r *subscriberRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscriber{}).Count(&count).Error
	return count, err
}

// Search searches for subscribers by phone number substring
func (r *subscriberRepository) Search(phoneQuery string) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	pattern := "%" + strings.TrimSpace(phoneQuery) + "%"
	err := r.db.Where("phone_number LIKE ?", pattern).Order("created_at DESC").Find(&subscribers).Error
	return subscribers, err
}
