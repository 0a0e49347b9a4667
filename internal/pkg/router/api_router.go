package router

import (
	"time"

	"github.com/rsinghal/paperroute/app/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AuthRouter carries the login endpoints behind a rate limiter so a single
// client cannot burn through the SMS budget.
type AuthRouter struct {
}

func (h AuthRouter) InstallRouter(app *fiber.App) {
	auth := app.Group("/auth", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	}))
	auth.Post("/request-code", controllers.HandleAuthRequestCode)
	auth.Post("/verify", controllers.HandleAuthVerify)
}

func NewAuthRouter() *AuthRouter {
	return &AuthRouter{}
}
