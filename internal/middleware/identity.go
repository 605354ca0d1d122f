package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID pulls the user id the session middleware stored in the
// context; on routes without a session (prices, credential exchange) the
// limiter keys requests as "anon".

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the resolved user id as a string for rate-limit
// key building, or "anon" when the request carries no session.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if id, ok := v.(uint64); ok && id != 0 {
            return strconv.FormatUint(id, 10)
        }
    }
    return "anon"
}
