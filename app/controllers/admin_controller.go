package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
	"github.com/rsinghal/paperroute/internal/pkg/catalog"
	"github.com/rsinghal/paperroute/internal/pkg/database"
	"github.com/rsinghal/paperroute/internal/pkg/ledger"
	"github.com/rsinghal/paperroute/internal/pkg/lifecycle"
	"github.com/rsinghal/paperroute/internal/pkg/reconcile"
)

const adminPageSize = 25

// AdminController bundles the repositories and services behind the admin
// surface. Handlers are methods so tests can build a controller on an
// in-memory database.
type AdminController struct {
	repos     *repository.Repositories
	ledger    *ledger.Service
	reconcile *reconcile.Service
}

var adminController *AdminController

// InitializeAdminController wires the admin controller to the global database
// connection. Must run after database setup, before route registration.
func InitializeAdminController() {
	adminController = NewAdminController(database.GetDB())
}

// NewAdminController creates an admin controller on the given connection.
func NewAdminController(db *gorm.DB) *AdminController {
	repos := repository.NewRepositories(db)
	return &AdminController{
		repos:     repos,
		ledger:    ledger.NewService(repos.Delivery),
		reconcile: reconcile.NewService(repos.Payment, repos.Subscription),
	}
}

// GetAdminController returns the initialized controller.
func GetAdminController() *AdminController {
	return adminController
}

func pageOffset(c *fiber.Ctx) (page, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * adminPageSize
}

// HandleDashboard returns the admin overview counters.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	subscriberCount, err := ac.repos.Subscriber.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	activeSubs, err := ac.repos.Subscription.CountByStatus(models.SubscriptionStatusActive)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	delivered, err := ac.repos.Delivery.CountByStatus(models.DeliveryStatusDelivered)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	missed, err := ac.repos.Delivery.CountByStatus(models.DeliveryStatusMissed)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	paymentCount, err := ac.repos.Payment.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	collected, err := ac.repos.Payment.TotalCollected()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}
	pending, err := ac.repos.Payment.ListNeedingReconciliation()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}

	return c.JSON(fiber.Map{
		"subscribers":            subscriberCount,
		"active_subscriptions":   activeSubs,
		"deliveries_delivered":   delivered,
		"deliveries_missed":      missed,
		"payments":               paymentCount,
		"total_collected":        collected,
		"pending_reconciliation": len(pending),
	})
}

// HandleSubscribers lists subscribers, optionally filtered by a phone
// substring via ?q=.
func (ac *AdminController) HandleSubscribers(c *fiber.Ctx) error {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		subscribers, err := ac.repos.Subscriber.Search(q)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
		}
		return c.JSON(fiber.Map{"subscribers": subscribers})
	}

	page, offset := pageOffset(c)
	subscribers, err := ac.repos.Subscriber.List(offset, adminPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
	}
	total, err := ac.repos.Subscriber.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
	}
	return c.JSON(fiber.Map{"subscribers": subscribers, "page": page, "total": total})
}

// HandleSubscriptions lists subscriptions with their derived status and days
// left, optionally filtered by a phone substring via ?q=. The stored status
// column never reaches the response on its own.
func (ac *AdminController) HandleSubscriptions(c *fiber.Ctx) error {
	now := time.Now()

	var (
		subs []models.Subscription
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		subs, err = ac.repos.Subscription.Search(q)
	} else {
		_, offset := pageOffset(c)
		subs, err = ac.repos.Subscription.List(offset, adminPageSize)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
	}

	views := make([]subscriptionView, 0, len(subs))
	for i := range subs {
		views = append(views, newSubscriptionView(&subs[i], now))
	}
	return c.JSON(fiber.Map{"subscriptions": views})
}

// HandleDeliveries lists delivery records, optionally filtered by a phone
// substring via ?q=.
func (ac *AdminController) HandleDeliveries(c *fiber.Ctx) error {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		deliveries, err := ac.repos.Delivery.Search(q)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_lookup_failed"})
		}
		return c.JSON(fiber.Map{"deliveries": deliveries})
	}

	page, offset := pageOffset(c)
	deliveries, err := ac.repos.Delivery.List(offset, adminPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_lookup_failed"})
	}
	total, err := ac.repos.Delivery.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_lookup_failed"})
	}
	return c.JSON(fiber.Map{"deliveries": deliveries, "page": page, "total": total})
}

// HandlePayments lists payment records, optionally filtered by a phone
// substring via ?q=.
func (ac *AdminController) HandlePayments(c *fiber.Ctx) error {
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		payments, err := ac.repos.Payment.Search(q)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
		}
		return c.JSON(fiber.Map{"payments": payments})
	}

	page, offset := pageOffset(c)
	payments, err := ac.repos.Payment.List(offset, adminPageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}
	total, err := ac.repos.Payment.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}
	return c.JSON(fiber.Map{"payments": payments, "page": page, "total": total})
}

type markDeliveryInput struct {
	SubscriberID uint   `json:"subscriber_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
}

// parseDeliveryDate accepts a YYYY-MM-DD date, defaulting to today.
func parseDeliveryDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// HandleMarkDelivery records one day's outcome for a single subscriber.
// A second record for the same subscriber and day is rejected with 409.
func (ac *AdminController) HandleMarkDelivery(c *fiber.Ctx) error {
	var in markDeliveryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	date, err := parseDeliveryDate(in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_date", "message": "use YYYY-MM-DD"})
	}

	subscriber, err := ac.repos.Subscriber.GetByID(in.SubscriberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscriber_not_found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
	}

	delivery, err := ac.ledger.RecordDelivery(subscriber.ID, subscriber.PhoneNumber, date, in.Status)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateDeliveryDate):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "duplicate_delivery",
				"message": "a record for this subscriber and date already exists, use correct instead",
			})
		case errors.Is(err, ledger.ErrInvalidDeliveryStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_status"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_save_failed"})
		}
	}
	return c.JSON(fiber.Map{"delivery": delivery})
}

type bulkMarkInput struct {
	SubscriberIDs []uint `json:"subscriber_ids"`
	Date          string `json:"date"`
	Status        string `json:"status"`
}

type bulkMarkOutcome struct {
	SubscriberID uint             `json:"subscriber_id"`
	Delivery     *models.Delivery `json:"delivery,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// HandleBulkMarkDeliveries records one day's outcome for many subscribers at
// once. Each subscriber is handled independently; one duplicate never rolls
// back the rest. The response carries a per-subscriber outcome.
func (ac *AdminController) HandleBulkMarkDeliveries(c *fiber.Ctx) error {
	var in bulkMarkInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if len(in.SubscriberIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no_subscribers"})
	}

	date, err := parseDeliveryDate(in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_date", "message": "use YYYY-MM-DD"})
	}

	phones := make([]string, len(in.SubscriberIDs))
	for i, id := range in.SubscriberIDs {
		if subscriber, err := ac.repos.Subscriber.GetByID(id); err == nil {
			phones[i] = subscriber.PhoneNumber
		}
	}

	results := ac.ledger.BulkMark(in.SubscriberIDs, phones, date, in.Status)
	outcomes := make([]bulkMarkOutcome, 0, len(results))
	failed := 0
	for _, r := range results {
		out := bulkMarkOutcome{SubscriberID: r.SubscriberID, Delivery: r.Delivery}
		if r.Err != nil {
			out.Error = r.Err.Error()
			failed++
		}
		outcomes = append(outcomes, out)
	}

	return c.JSON(fiber.Map{
		"results": outcomes,
		"marked":  len(results) - failed,
		"failed":  failed,
	})
}

type correctDeliveryInput struct {
	Status string `json:"status"`
}

// HandleCorrectDelivery overwrites the status of an existing delivery record.
func (ac *AdminController) HandleCorrectDelivery(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	var in correctDeliveryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	delivery, err := ac.ledger.CorrectDelivery(uint(id), in.Status)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidDeliveryStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_status"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "delivery_not_found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "delivery_save_failed"})
		}
	}
	return c.JSON(fiber.Map{"delivery": delivery})
}

type extendSubscriptionInput struct {
	PlanID string `json:"plan_id"`
}

// HandleExtendSubscription renews the given subscription for a plan on the
// subscriber's behalf. Active subscriptions stack the plan duration onto
// their end date; expired ones are replaced by a fresh record anchored at
// now, keeping the old one as history.
func (ac *AdminController) HandleExtendSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	var in extendSubscriptionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	plan, err := catalog.Find(in.PlanID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_plan"})
	}

	sub, err := ac.repos.Subscription.GetByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription_not_found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
	}

	now := time.Now()
	if lifecycle.DeriveStatus(sub, now) == models.SubscriptionStatusActive {
		sub = lifecycle.Renew(sub, plan, now)
		if err := ac.repos.Subscription.Update(sub); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_save_failed"})
		}
	} else {
		fresh := lifecycle.NewSubscription(sub.SubscriberID, plan, now)
		fresh.SubscriberPhone = sub.SubscriberPhone
		if err := ac.repos.Subscription.Create(fresh); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_save_failed"})
		}
		sub = fresh
	}

	return c.JSON(fiber.Map{"subscription": newSubscriptionView(sub, now)})
}

type cashPaymentInput struct {
	SubscriberID   uint   `json:"subscriber_id"`
	Amount         int    `json:"amount"`
	SubscriptionID *uint  `json:"subscription_id"`
	Description    string `json:"description"`
}

// HandleRecordCashPayment books an offline payment collected in person. Cash
// needs no gateway signature; the capture reference is generated here.
func (ac *AdminController) HandleRecordCashPayment(c *fiber.Ctx) error {
	var in cashPaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if in.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_amount"})
	}

	subscriber, err := ac.repos.Subscriber.GetByID(in.SubscriberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscriber_not_found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
	}

	payment, err := ac.reconcile.CaptureConfirmed(reconcile.CaptureInput{
		CaptureRef:      "cash_" + uuid.NewString(),
		SubscriberID:    subscriber.ID,
		SubscriberPhone: subscriber.PhoneNumber,
		Amount:          in.Amount,
		Method:          models.PaymentMethodCash,
		SubscriptionID:  in.SubscriptionID,
		Description:     in.Description,
	})
	if err != nil {
		if errors.Is(err, reconcile.ErrReconciliationPending) {
			return c.JSON(fiber.Map{"payment": payment, "needs_reconciliation": true})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_record_failed"})
	}
	return c.JSON(fiber.Map{"payment": payment, "needs_reconciliation": false})
}

// HandleReconciliationQueue lists payments waiting for a manual subscription
// link fix.
func (ac *AdminController) HandleReconciliationQueue(c *fiber.Ctx) error {
	payments, err := ac.repos.Payment.ListNeedingReconciliation()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
	}
	return c.JSON(fiber.Map{"payments": payments})
}

type clearReconciliationInput struct {
	SubscriptionID *uint `json:"subscription_id"`
}

// HandleClearReconciliation resolves a flagged payment, optionally re-pointing
// it at the right subscription.
func (ac *AdminController) HandleClearReconciliation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	var in clearReconciliationInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	if in.SubscriptionID != nil {
		if _, err := ac.repos.Subscription.GetByID(*in.SubscriptionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription_not_found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
		}
		payment, err := ac.repos.Payment.GetByID(uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payment_not_found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_lookup_failed"})
		}
		payment.SubscriptionID = in.SubscriptionID
		payment.NeedsReconciliation = false
		if err := ac.repos.Payment.Update(payment); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_save_failed"})
		}
		return c.JSON(fiber.Map{"payment": payment})
	}

	if err := ac.repos.Payment.ClearReconciliation(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payment_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_save_failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
