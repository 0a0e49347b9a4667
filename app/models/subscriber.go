package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ROLE_SUBSCRIBER = "subscriber"
	ROLE_ADMIN      = "admin"
)

// Subscriber is created on the first successful OTP login and never deleted.
// Only the role changes after creation, and only out of band.
type Subscriber struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber string    `gorm:"uniqueIndex;type:varchar(20);not null" json:"phone_number" validate:"required,min=10,max=16"`
	Role        string    `gorm:"type:varchar(20);default:'subscriber'" json:"role" validate:"oneof=subscriber admin"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscriber) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// CreateSubscriber builds a validated subscriber with the default role.
func CreateSubscriber(phoneNumber string) (*Subscriber, error) {
	s := &Subscriber{
		PhoneNumber: phoneNumber,
		Role:        ROLE_SUBSCRIBER,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// IsAdmin reports whether the subscriber holds the admin role.
func (s *Subscriber) IsAdmin() bool {
	return s.Role == ROLE_ADMIN
}
