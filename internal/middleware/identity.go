package middleware

// identity.go holds helpers shared by the rate limiter and cache key
// builders. They read the values JWTAuth stored in the context and fall
// back to "anon" for unauthenticated routes such as the webhooks.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string for use in
// Redis keys, or "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if id, ok := v.(uint64); ok && id > 0 {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
