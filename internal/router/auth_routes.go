package router

import (
	"github.com/labstack/echo/v4"

	"github.com/LeMizoo/bygagoos-api/internal/handler"
	"github.com/LeMizoo/bygagoos-api/internal/middleware"
)

// RegisterAuth registers all authentication-related routes.  Operations
// that create or exchange credentials (register, login, refresh) live under
// /v1/auth without a session; everything that reads or ends a session
// (me, policy, logout) runs behind the session middleware so the bearer is
// fully resolved, live user re-fetch included, before the handler runs.
// The limiter sits after the session middleware on the protected group so
// its user-keyed strategies bucket by the resolved user id; the credential
// routes have no session yet and bucket by client IP.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, secret string, store middleware.UserStore, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	s := e.Group("/v1/auth")
	s.Use(middleware.Session(secret, store))
	s.Use(limit)
	s.GET("/me", a.Me)
	s.GET("/policy", a.Policy)
	s.POST("/logout", a.Logout)
}
