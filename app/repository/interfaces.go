package repository

import (
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"gorm.io/gorm"
)

// SubscriberRepository defines the interface for subscriber-related database operations
type SubscriberRepository interface {
	Create(subscriber *models.Subscriber) error
	GetByID(id uint) (*models.Subscriber, error)
	GetByPhone(phone string) (*models.Subscriber, error)
	Update(subscriber *models.Subscriber) error
	List(offset, limit int) ([]models.Subscriber, error)
	Count() (int64, error)
	Search(phoneQuery string) ([]models.Subscriber, error)
}

// SubscriptionRepository defines the interface for subscription-related database operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetCurrentBySubscriberID(subscriberID uint) (*models.Subscription, error)
	GetBySubscriberID(subscriberID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	List(offset, limit int) ([]models.Subscription, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	Search(phoneQuery string) ([]models.Subscription, error)
	ExpireDue(now time.Time) (int64, error)
}

// DeliveryRepository defines the interface for delivery-related database operations
type DeliveryRepository interface {
	Create(delivery *models.Delivery) error
	GetByID(id uint) (*models.Delivery, error)
	ExistsForDay(subscriberID uint, day time.Time) (bool, error)
	UpdateStatus(id uint, status string) (*models.Delivery, error)
	RecentBySubscriberID(subscriberID uint, limit int) ([]models.Delivery, error)
	List(offset, limit int) ([]models.Delivery, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	Search(phoneQuery string) ([]models.Delivery, error)
}

// PaymentRepository defines the interface for payment-related database operations
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	Update(payment *models.Payment) error
	RecentBySubscriberID(subscriberID uint, limit int) ([]models.Payment, error)
	List(offset, limit int) ([]models.Payment, error)
	Count() (int64, error)
	TotalCollected() (int64, error)
	Search(phoneQuery string) ([]models.Payment, error)
	ListNeedingReconciliation() ([]models.Payment, error)
	ClearReconciliation(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Subscriber   SubscriberRepository
	Subscription SubscriptionRepository
	Delivery     DeliveryRepository
	Payment      PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Subscriber:   NewSubscriberRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Delivery:     NewDeliveryRepository(db),
		Payment:      NewPaymentRepository(db),
	}
}
