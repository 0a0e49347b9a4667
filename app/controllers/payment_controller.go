package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rsinghal/paperroute/app/repository"
	"github.com/rsinghal/paperroute/internal/pkg/database"
	"github.com/rsinghal/paperroute/internal/pkg/env"
	"github.com/rsinghal/paperroute/internal/pkg/gateway"
	"github.com/rsinghal/paperroute/internal/pkg/reconcile"
	"github.com/rsinghal/paperroute/internal/pkg/usercontext"
)

type paymentCallbackInput struct {
	OrderID        string `json:"order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
	Amount         int    `json:"amount"`
	Currency       string `json:"currency"`
	SubscriptionID *uint  `json:"subscription_id"`
	Description    string `json:"description"`
}

// HandlePaymentCallback records a confirmed checkout capture. The gateway only
// calls back after it has collected the money, so past signature verification
// every outcome of this handler must leave a payment row behind. A capture
// whose subscription link cannot be resolved is recorded flagged for manual
// reconciliation and still answered with 200.
func HandlePaymentCallback(c *fiber.Ctx) error {
	var in paymentCallbackInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	secret := env.GetEnv("GATEWAY_KEY_SECRET", "")
	if !gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature, secret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_signature",
			"message": "capture signature did not verify",
		})
	}

	uc := usercontext.GetUserContext(c)
	repos := repository.NewRepositories(database.GetDB())
	svc := reconcile.NewService(repos.Payment, repos.Subscription)

	payment, err := svc.CaptureConfirmed(reconcile.CaptureInput{
		CaptureRef:      in.PaymentID,
		SubscriberID:    uc.SubscriberID,
		SubscriberPhone: uc.Phone,
		Amount:          in.Amount,
		Currency:        in.Currency,
		SubscriptionID:  in.SubscriptionID,
		Description:     in.Description,
	})
	if err != nil {
		if errors.Is(err, reconcile.ErrReconciliationPending) {
			// The money is in and the payment is on record. Do not make the
			// client retry the capture.
			return c.JSON(fiber.Map{
				"payment":              payment,
				"needs_reconciliation": true,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_record_failed"})
	}

	return c.JSON(fiber.Map{
		"payment":              payment,
		"needs_reconciliation": false,
	})
}

// HandlePaymentHistory returns the subscriber's payments, newest first.
func HandlePaymentHistory(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	repos := repository.NewRepositories(database.GetDB())
	payments, err := reconcile.NewService(repos.Payment, repos.Subscription).HistoryForSubscriber(uc.SubscriberID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}
	return c.JSON(fiber.Map{"payments": payments})
}
