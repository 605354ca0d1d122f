package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LeMizoo/bygagoos-api/internal/httpx"
	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

// DashboardHandler serves the dashboard module: a summary of open work.
type DashboardHandler struct {
	Orders *repository.OrderRepo
}

func NewDashboardHandler(o *repository.OrderRepo) *DashboardHandler {
	return &DashboardHandler{Orders: o}
}

// Summary returns order counts per status plus the orders due within a
// week, which is what the landing screen shows every role.
func (h *DashboardHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.List(ctx, "")
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load dashboard failed")
	}
	counts := map[string]int{}
	for _, o := range orders {
		counts[o.Status]++
	}

	dueSoon, err := h.Orders.DueSoon(ctx, 7*24*time.Hour)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load dashboard failed")
	}
	due := make([]orderResp, 0, len(dueSoon))
	for _, o := range dueSoon {
		due = append(due, toOrderResp(o))
	}

	return httpx.OK(c, http.StatusOK, echo.Map{
		"status_counts": counts,
		"due_soon":      due,
	})
}
