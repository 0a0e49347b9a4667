package repository

import (
	"strings"

	"github.com/rsinghal/paperroute/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record in the database
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID retrieves a payment by its ID
func (r *paymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update saves changes to an existing payment
func (r *paymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// RecentBySubscriberID retrieves the most recent payments for a subscriber,
// newest first
func (r *paymentRepository) RecentBySubscriberID(subscriberID uint, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("subscriber_id = ?", subscriberID).
		Order("paid_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

// List retrieves a paginated list of payments, newest first
func (r *paymentRepository) List(offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Order("paid_at DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// Count returns the total number of payments
func (r *paymentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Count(&count).Error
	return count, err
}

// TotalCollected returns the sum of all captured amounts
func (r *paymentRepository) TotalCollected() (int64, error) {
	var total int64
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&total)
	return total, err
}

// Search searches for payments by subscriber phone substring
func (r *paymentRepository) Search(phoneQuery string) ([]models.Payment, error) {
	var payments []models.Payment
	pattern := "%" + strings.TrimSpace(phoneQuery) + "%"
	err := r.db.Where("subscriber_phone LIKE ?", pattern).Order("paid_at DESC").Find(&payments).Error
	return payments, err
}

// ListNeedingReconciliation returns captured payments whose subscription link
// could not be resolved, oldest first so they are fixed in order
func (r *paymentRepository) ListNeedingReconciliation() ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("needs_reconciliation = ?", true).Order("paid_at ASC").Find(&payments).Error
	return payments, err
}

// ClearReconciliation clears the manual-reconciliation flag after an admin
// has fixed the subscription link
func (r *paymentRepository) ClearReconciliation(id uint) error {
	tx := r.db.Model(&models.Payment{}).Where("id = ?", id).
		Update("needs_reconciliation", false)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
