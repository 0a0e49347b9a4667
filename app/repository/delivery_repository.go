package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"gorm.io/gorm"
)

// deliveryRepository implements the DeliveryRepository interface
type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new delivery repository instance
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// Create creates a new delivery record in the database
func (r *deliveryRepository) Create(delivery *models.Delivery) error {
	return r.db.Create(delivery).Error
}

// GetByID retrieves a delivery record by its ID
func (r *deliveryRepository) GetByID(id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.First(&delivery, id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// ExistsForDay reports whether a record already exists for the subscriber and
// calendar day
func (r *deliveryRepository) ExistsForDay(subscriberID uint, day time.Time) (bool, error) {
	var delivery models.Delivery
	err := r.db.Where("subscriber_id = ? AND date = ?", subscriberID, models.DeliveryDay(day)).
		First(&delivery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateStatus overwrites only the status of the given record and returns it
func (r *deliveryRepository) UpdateStatus(id uint, status string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.First(&delivery, id).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&delivery).Update("status", status).Error; err != nil {
		return nil, err
	}
	delivery.Status = status
	return &delivery, nil
}

// RecentBySubscriberID retrieves the most recent deliveries for a subscriber,
// newest first
func (r *deliveryRepository) RecentBySubscriberID(subscriberID uint, limit int) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.Where("subscriber_id = ?", subscriberID).
		Order("date DESC").Limit(limit).Find(&deliveries).Error
	return deliveries, err
}

// List retrieves a paginated list of deliveries, newest first
func (r *deliveryRepository) List(offset, limit int) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.Order("date DESC").Offset(offset).Limit(limit).Find(&deliveries).Error
	return deliveries, err
}

// Count returns the total number of delivery records
func (r *deliveryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Delivery{}).Count(&count).Error
	return count, err
}

// CountByStatus counts delivery records by status
func (r *deliveryRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Delivery{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Search searches for deliveries by subscriber phone substring
func (r *deliveryRepository) Search(phoneQuery string) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	pattern := "%" + strings.TrimSpace(phoneQuery) + "%"
	err := r.db.Where("subscriber_phone LIKE ?", pattern).Order("date DESC").Find(&deliveries).Error
	return deliveries, err
}
