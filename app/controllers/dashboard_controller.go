package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
	"github.com/rsinghal/paperroute/internal/pkg/database"
	"github.com/rsinghal/paperroute/internal/pkg/ledger"
	"github.com/rsinghal/paperroute/internal/pkg/lifecycle"
	"github.com/rsinghal/paperroute/internal/pkg/reconcile"
	"github.com/rsinghal/paperroute/internal/pkg/usercontext"
)

const (
	dashboardDeliveryCount = 7
	dashboardPaymentCount  = 5
)

// subscriptionView is a subscription together with its derived state. The
// stored status column is a query index only; what the subscriber sees is
// always computed from the date range at request time.
type subscriptionView struct {
	*models.Subscription
	DerivedStatus string `json:"derived_status"`
	DaysLeft      int    `json:"days_left"`
}

func newSubscriptionView(sub *models.Subscription, now time.Time) subscriptionView {
	return subscriptionView{
		Subscription:  sub,
		DerivedStatus: lifecycle.DeriveStatus(sub, now),
		DaysLeft:      lifecycle.DaysLeft(sub, now),
	}
}

// HandleDashboard returns the subscriber's home view: current subscription
// with derived status and days left, recent deliveries and recent payments.
func HandleDashboard(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	repos := repository.NewRepositories(database.GetDB())
	now := time.Now()

	var current *subscriptionView
	sub, err := repos.Subscription.GetCurrentBySubscriberID(uc.SubscriberID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
	}
	if err == nil {
		view := newSubscriptionView(sub, now)
		current = &view
	}

	deliveries, err := ledger.NewService(repos.Delivery).RecentForSubscriber(uc.SubscriberID, dashboardDeliveryCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_lookup_failed"})
	}

	payments, err := reconcile.NewService(repos.Payment, repos.Subscription).HistoryForSubscriber(uc.SubscriberID, dashboardPaymentCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}

	return c.JSON(fiber.Map{
		"subscriber_id": uc.SubscriberID,
		"phone":         uc.Phone,
		"subscription":  current,
		"deliveries":    deliveries,
		"payments":      payments,
	})
}

// HandleDeliveryHistory returns the subscriber's recent delivery records.
func HandleDeliveryHistory(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	limit := c.QueryInt("limit", 30)
	if limit < 1 || limit > 100 {
		limit = 30
	}

	repos := repository.NewRepositories(database.GetDB())
	deliveries, err := ledger.NewService(repos.Delivery).RecentForSubscriber(uc.SubscriberID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_lookup_failed"})
	}
	return c.JSON(fiber.Map{"deliveries": deliveries})
}
