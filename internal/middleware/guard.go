package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/LeMizoo/bygagoos-api/internal/httpx"
    "github.com/LeMizoo/bygagoos-api/internal/policy"
)

// RequireModule returns a middleware that enforces that the resolved user
// may access the named module.  It assumes Session ran earlier and stored
// "role" and "capabilities" in the context; a missing or mistyped value is
// treated as deny, never as an error.  The 403 body deliberately says
// nothing about which modules the user does hold.
func RequireModule(module string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get("role").(string)
            caps, _ := c.Get("capabilities").([]string)
            if !policy.CanAccess(role, caps, module) {
                return httpx.Fail(c, http.StatusForbidden, httpx.CodeForbidden, "forbidden")
            }
            return next(c)
        }
    }
}

// RequireAtLeast returns a middleware that enforces a minimum role rank.
// Used for operations where seniority matters more than a module grant,
// such as changing wages.  Unknown roles never satisfy any minimum.
func RequireAtLeast(minimum string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get("role").(string)
            if !policy.IsAtLeast(role, minimum) {
                return httpx.Fail(c, http.StatusForbidden, httpx.CodeForbidden, "forbidden")
            }
            return next(c)
        }
    }
}
