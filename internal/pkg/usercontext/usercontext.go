package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the complete subscriber context for a request.
// The role flag is computed once at login and cached in the session, so it is
// fixed for the session lifetime; a promotion to admin takes effect only
// after re-authentication.
type UserContext struct {
	SubscriberID uint   `json:"subscriber_id"`
	Phone        string `json:"phone"`
	IsLoggedIn   bool   `json:"is_logged_in"`
	IsAdmin      bool   `json:"is_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetSubscriberID returns the current subscriber's ID, or 0 if not logged in
func GetSubscriberID(c *fiber.Ctx) uint {
	return GetUserContext(c).SubscriberID
}
