package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeySubscriberID  = "subscriber_id"
	KeyPhone         = "phone"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"
)
