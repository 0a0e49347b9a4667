package router

import (
	"github.com/rsinghal/paperroute/app/controllers"
	"github.com/rsinghal/paperroute/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	ac := controllers.GetAdminController()

	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", ac.HandleDashboard)

	// Subscriber management
	adminGroup.Get("/subscribers", ac.HandleSubscribers)

	// Subscription management
	adminGroup.Get("/subscriptions", ac.HandleSubscriptions)
	adminGroup.Post("/subscriptions/extend/:id", ac.HandleExtendSubscription)

	// Delivery ledger
	adminGroup.Get("/deliveries", ac.HandleDeliveries)
	adminGroup.Post("/deliveries/mark", ac.HandleMarkDelivery)
	adminGroup.Post("/deliveries/bulk-mark", ac.HandleBulkMarkDeliveries)
	adminGroup.Post("/deliveries/correct/:id", ac.HandleCorrectDelivery)

	// Payments
	adminGroup.Get("/payments", ac.HandlePayments)
	adminGroup.Post("/payments/cash", ac.HandleRecordCashPayment)
	adminGroup.Get("/payments/reconciliation", ac.HandleReconciliationQueue)
	adminGroup.Post("/payments/reconciliation/clear/:id", ac.HandleClearReconciliation)
}
