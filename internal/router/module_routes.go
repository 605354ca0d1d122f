package router

import (
	"github.com/labstack/echo/v4"

	"github.com/LeMizoo/bygagoos-api/internal/handler"
	"github.com/LeMizoo/bygagoos-api/internal/middleware"
	"github.com/LeMizoo/bygagoos-api/internal/policy"
)

// ModuleHandlers bundles the per-module handlers so RegisterModules stays
// a single call from main.
type ModuleHandlers struct {
	Dashboard *handler.DashboardHandler
	Orders    *handler.OrderHandler
	Stocks    *handler.StockHandler
	Employees *handler.EmployeeHandler
	Settings  *handler.SettingsHandler
	Admin     *handler.AdminHandler
}

// RegisterModules wires every data route behind the session middleware and
// the module guard matching the screen it serves.  Each group re-checks the
// policy on every request: the client-side gate only decides what to
// render, never what is reachable.
func RegisterModules(e *echo.Echo, h ModuleHandlers, secret string, store middleware.UserStore, limit echo.MiddlewareFunc) {
	v1 := e.Group("/v1")
	// Session first, then the limiter: user-keyed buckets need the resolved
	// user id in the context before the key is built.
	v1.Use(middleware.Session(secret, store))
	v1.Use(limit)

	dash := v1.Group("/dashboard", middleware.RequireModule(policy.ModuleDashboard))
	dash.GET("", h.Dashboard.Summary)

	orders := v1.Group("/orders", middleware.RequireModule(policy.ModuleOrders))
	orders.GET("", h.Orders.List)
	orders.POST("", h.Orders.Create)
	orders.GET("/:id", h.Orders.Get)
	orders.PATCH("/:id/status", h.Orders.UpdateStatus)

	production := v1.Group("/production", middleware.RequireModule(policy.ModuleProduction))
	production.GET("", h.Orders.ListProduction)
	production.POST("/:id/advance", h.Orders.AdvanceStage)

	stocks := v1.Group("/stocks", middleware.RequireModule(policy.ModuleStocks))
	stocks.GET("", h.Stocks.ListItems)
	stocks.POST("", h.Stocks.CreateItem)
	stocks.POST("/:id/movements", h.Stocks.RecordMovement)
	stocks.GET("/:id/movements", h.Stocks.Movements)

	personnel := v1.Group("/personnel", middleware.RequireModule(policy.ModulePersonnel))
	personnel.GET("", h.Employees.List)
	personnel.POST("", h.Employees.Create)
	// Wage edits and deactivation stay above contremaitre even if the
	// personnel module is ever granted more widely.
	personnel.PUT("/:id", h.Employees.Update, middleware.RequireAtLeast(policy.RoleGerante))
	personnel.DELETE("/:id", h.Employees.Deactivate, middleware.RequireAtLeast(policy.RoleGerante))

	settings := v1.Group("/settings", middleware.RequireModule(policy.ModuleSettings))
	settings.GET("/profile", h.Settings.GetProfile)
	settings.PUT("/profile", h.Settings.UpdateProfile)

	admin := v1.Group("/admin", middleware.RequireModule(policy.ModuleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id/active", h.Admin.SetActive)
	admin.PATCH("/users/:id/role", h.Admin.SetRole)
}
