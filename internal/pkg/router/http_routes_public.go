package router

import (
	"github.com/rsinghal/paperroute/app/controllers"
	"github.com/rsinghal/paperroute/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Plan catalog is public so the login page can show prices
	app.Get("/plans", controllers.HandlePlans)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
}

// registerSubscriberRoutes wires the logged-in subscriber surface.
func (h HttpRouter) registerSubscriberRoutes(app *fiber.App) {
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
	app.Get("/deliveries", middleware.RequireAuth, controllers.HandleDeliveryHistory)
	app.Get("/payments", middleware.RequireAuth, controllers.HandlePaymentHistory)

	app.Post("/subscribe", middleware.RequireAuth, controllers.HandleSubscribe)

	// Checkout capture callback (signature-verified in controller)
	app.Post("/payments/callback", middleware.RequireAuth, controllers.HandlePaymentCallback)
}
