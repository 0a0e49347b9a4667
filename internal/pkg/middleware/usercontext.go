package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rsinghal/paperroute/internal/pkg/session"
	"github.com/rsinghal/paperroute/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete subscriber context for every
// request from the session, so controllers never touch the session store
// directly for identity.
func UserContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: treat as anonymous
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	subscriberID := sess.Get(usercontext.KeySubscriberID)
	if subscriberID == nil {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	phone := session.GetSessionValue(c, usercontext.KeyPhone)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	userCtx := usercontext.UserContext{
		SubscriberID: subscriberID.(uint),
		Phone:        phone,
		IsLoggedIn:   true,
		IsAdmin:      isAdmin != nil && isAdmin.(bool),
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)

	return c.Next()
}
