package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
)

func setupAdminApp(t *testing.T) (*fiber.App, *repository.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Subscriber{},
		&models.Subscription{},
		&models.Delivery{},
		&models.Payment{},
	))

	ac := NewAdminController(db)
	app := fiber.New()
	app.Post("/admin/deliveries/mark", ac.HandleMarkDelivery)
	app.Post("/admin/deliveries/bulk-mark", ac.HandleBulkMarkDeliveries)
	app.Post("/admin/deliveries/correct/:id", ac.HandleCorrectDelivery)
	app.Post("/admin/payments/cash", ac.HandleRecordCashPayment)
	app.Get("/admin", ac.HandleDashboard)

	return app, ac.repos
}

func seedSubscriber(t *testing.T, repos *repository.Repositories, phone string) *models.Subscriber {
	t.Helper()

	sub, err := models.CreateSubscriber(phone)
	require.NoError(t, err)
	require.NoError(t, repos.Subscriber.Create(sub))
	return sub
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func TestHandleMarkDelivery(t *testing.T) {
	app, repos := setupAdminApp(t)
	subscriber := seedSubscriber(t, repos, "+911234567890")

	resp, body := postJSON(t, app, "/admin/deliveries/mark", fiber.Map{
		"subscriber_id": subscriber.ID,
		"date":          "2025-06-15",
		"status":        models.DeliveryStatusDelivered,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, body, "delivery")

	// Second mark for the same day must come back 409.
	resp, body = postJSON(t, app, "/admin/deliveries/mark", fiber.Map{
		"subscriber_id": subscriber.ID,
		"date":          "2025-06-15",
		"status":        models.DeliveryStatusMissed,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_delivery", body["error"])
}

func TestHandleMarkDeliveryUnknownSubscriber(t *testing.T) {
	app, _ := setupAdminApp(t)

	resp, body := postJSON(t, app, "/admin/deliveries/mark", fiber.Map{
		"subscriber_id": 42,
		"status":        models.DeliveryStatusDelivered,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "subscriber_not_found", body["error"])
}

func TestHandleBulkMarkDeliveriesPartialFailure(t *testing.T) {
	app, repos := setupAdminApp(t)
	a := seedSubscriber(t, repos, "+911111111111")
	b := seedSubscriber(t, repos, "+912222222222")

	// Subscriber b already marked for the day.
	require.NoError(t, repos.Delivery.Create(&models.Delivery{
		SubscriberID:    b.ID,
		SubscriberPhone: b.PhoneNumber,
		Date:            models.DeliveryDay(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
		Status:          models.DeliveryStatusDelivered,
	}))

	resp, body := postJSON(t, app, "/admin/deliveries/bulk-mark", fiber.Map{
		"subscriber_ids": []uint{a.ID, b.ID},
		"date":           "2025-06-15",
		"status":         models.DeliveryStatusDelivered,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["marked"])
	assert.Equal(t, float64(1), body["failed"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
}

func TestHandleCorrectDelivery(t *testing.T) {
	app, repos := setupAdminApp(t)
	subscriber := seedSubscriber(t, repos, "+911234567890")

	delivery := &models.Delivery{
		SubscriberID:    subscriber.ID,
		SubscriberPhone: subscriber.PhoneNumber,
		Date:            models.DeliveryDay(time.Now()),
		Status:          models.DeliveryStatusDelivered,
	}
	require.NoError(t, repos.Delivery.Create(delivery))

	resp, body := postJSON(t, app, "/admin/deliveries/correct/1", fiber.Map{
		"status": models.DeliveryStatusMissed,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result, ok := body["delivery"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.DeliveryStatusMissed, result["status"])

	resp, _ = postJSON(t, app, "/admin/deliveries/correct/999", fiber.Map{
		"status": models.DeliveryStatusMissed,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleRecordCashPayment(t *testing.T) {
	app, repos := setupAdminApp(t)
	subscriber := seedSubscriber(t, repos, "+911234567890")

	resp, body := postJSON(t, app, "/admin/payments/cash", fiber.Map{
		"subscriber_id": subscriber.ID,
		"amount":        300,
		"description":   "June collection",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["needs_reconciliation"])

	payment, ok := body["payment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.PaymentMethodCash, payment["method"])

	history, err := repos.Payment.RecentBySubscriberID(subscriber.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 300, history[0].Amount)
}

func TestHandleRecordCashPaymentRejectsAmount(t *testing.T) {
	app, _ := setupAdminApp(t)

	resp, body := postJSON(t, app, "/admin/payments/cash", fiber.Map{
		"subscriber_id": 1,
		"amount":        0,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_amount", body["error"])
}
