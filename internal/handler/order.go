package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LeMizoo/bygagoos-api/internal/httpx"
	"github.com/LeMizoo/bygagoos-api/internal/model"
	"github.com/LeMizoo/bygagoos-api/internal/queue"
	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

// OrderHandler serves the orders and production modules.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(o *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Orders: o}
}

type createOrderReq struct {
	ClientName  string `json:"client_name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

type orderStatusReq struct {
	Status string `json:"status"`
}

type orderResp struct {
	ID          uint64    `json:"id"`
	ClientName  string    `json:"client_name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitCents   int64     `json:"unit_cents"`
	TotalCents  int64     `json:"total_cents"`
	Status      string    `json:"status"`
	Stage       string    `json:"stage,omitempty"`
	DueDate     string    `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOrderResp(o model.Order) orderResp {
	return orderResp{
		ID:          o.ID,
		ClientName:  o.ClientName,
		Description: o.Description,
		Quantity:    o.Quantity,
		UnitCents:   o.UnitCents,
		TotalCents:  int64(o.Quantity) * o.UnitCents,
		Status:      o.Status,
		Stage:       o.Stage,
		DueDate:     o.DueDate.Format("2006-01-02"),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// List returns orders, optionally filtered with ?status=.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.List(ctx, strings.TrimSpace(c.QueryParam("status")))
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list orders failed")
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"orders": out})
}

// Get returns one order by id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid order id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "order not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load order failed")
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"order": toOrderResp(o)})
}

// Create registers a new order in status recue.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" || req.Quantity <= 0 || req.UnitCents < 0 {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "client_name and positive quantity required")
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "due_date must be YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o := model.Order{
		ClientName:  req.ClientName,
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		UnitCents:   req.UnitCents,
		DueDate:     due,
		CreatedBy:   currentUser(c),
	}
	id, err := h.Orders.Create(ctx, &o)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "create order failed")
	}
	created, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load order failed")
	}
	return httpx.OK(c, http.StatusCreated, echo.Map{"order": toOrderResp(created)})
}

// UpdateStatus moves an order along its lifecycle and publishes an event
// on success. An illegal transition is a conflict, not a server error.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid order id")
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "status required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	before, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "order not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load order failed")
	}

	updated, err := h.Orders.UpdateStatus(ctx, id, strings.TrimSpace(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "order not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "transition not allowed")
		default:
			return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "update status failed")
		}
	}

	// Best effort; the status change stands even if the broker is down.
	_ = queue.PublishOrderStatus(ctx, queue.OrderStatusEvent{
		OrderID:    updated.ID,
		ClientName: updated.ClientName,
		OldStatus:  before.Status,
		NewStatus:  updated.Status,
		Stage:      updated.Stage,
		UserID:     currentUser(c),
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return httpx.OK(c, http.StatusOK, echo.Map{"order": toOrderResp(updated)})
}

// ListProduction returns the orders currently on the shop floor.
func (h *OrderHandler) ListProduction(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.List(ctx, model.OrderStatusInProgress)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list production failed")
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"orders": out})
}

// AdvanceStage moves an en_production order to its next pipeline stage and
// publishes the change.
func (h *OrderHandler) AdvanceStage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Orders.AdvanceStage(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "order not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "stage cannot advance")
		default:
			return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "advance stage failed")
		}
	}

	_ = queue.PublishOrderStatus(ctx, queue.OrderStatusEvent{
		OrderID:    updated.ID,
		ClientName: updated.ClientName,
		NewStatus:  updated.Status,
		Stage:      updated.Stage,
		UserID:     currentUser(c),
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return httpx.OK(c, http.StatusOK, echo.Map{"order": toOrderResp(updated)})
}
