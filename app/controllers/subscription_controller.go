package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
	"github.com/rsinghal/paperroute/internal/pkg/catalog"
	"github.com/rsinghal/paperroute/internal/pkg/database"
	"github.com/rsinghal/paperroute/internal/pkg/gateway"
	"github.com/rsinghal/paperroute/internal/pkg/lifecycle"
	"github.com/rsinghal/paperroute/internal/pkg/usercontext"
)

// HandlePlans returns the plan catalog. The catalog is compiled in; there is
// no plans table.
func HandlePlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": catalog.All()})
}

type subscribeInput struct {
	PlanID string `json:"plan_id"`
}

// HandleSubscribe creates or renews the subscriber's subscription for the
// chosen plan and returns it together with a checkout order for the plan
// price. An active subscription is extended in place so paid-for days stack;
// an expired or missing one gets a fresh record anchored at now, keeping the
// old record as history.
func HandleSubscribe(c *fiber.Ctx) error {
	var in subscribeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	plan, err := catalog.Find(in.PlanID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "unknown_plan",
			"message": fmt.Sprintf("no plan %q", in.PlanID),
		})
	}

	uc := usercontext.GetUserContext(c)
	repos := repository.NewRepositories(database.GetDB())
	now := time.Now()

	current, err := repos.Subscription.GetCurrentBySubscriberID(uc.SubscriberID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
	}

	var sub *models.Subscription
	if err == nil && lifecycle.DeriveStatus(current, now) == models.SubscriptionStatusActive {
		sub = lifecycle.Renew(current, plan, now)
		if err := repos.Subscription.Update(sub); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_save_failed"})
		}
	} else {
		sub = lifecycle.NewSubscription(uc.SubscriberID, plan, now)
		sub.SubscriberPhone = uc.Phone
		if err := repos.Subscription.Create(sub); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_save_failed"})
		}
	}

	order := gateway.CreateOrder(plan.Price, "INR", fmt.Sprintf("sub_%d", sub.ID))

	return c.JSON(fiber.Map{
		"subscription": newSubscriptionView(sub, now),
		"order":        order,
	})
}
