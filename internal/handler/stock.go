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

// StockHandler serves the stocks module.
type StockHandler struct {
	Stocks *repository.StockRepo
}

func NewStockHandler(s *repository.StockRepo) *StockHandler {
	return &StockHandler{Stocks: s}
}

type createItemReq struct {
	Reference string `json:"reference"`
	Label     string `json:"label"`
	Unit      string `json:"unit"`
}

type movementReq struct {
	Direction string `json:"direction"` // entree | sortie
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
}

type stockItemResp struct {
	ID        uint64    `json:"id"`
	Reference string    `json:"reference"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type movementResp struct {
	ID        uint64    `json:"id"`
	ItemID    uint64    `json:"item_id"`
	Direction string    `json:"direction"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedBy uint64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toStockItemResp(it model.StockItem) stockItemResp {
	return stockItemResp{
		ID:        it.ID,
		Reference: it.Reference,
		Label:     it.Label,
		Unit:      it.Unit,
		Quantity:  it.Quantity,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func toMovementResp(m model.StockMovement) movementResp {
	return movementResp{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Direction: m.Direction,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// ListItems returns every stock item with its quantity on hand.
func (h *StockHandler) ListItems(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Stocks.ListItems(ctx)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list stock failed")
	}
	out := make([]stockItemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toStockItemResp(it))
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"items": out})
}

// CreateItem registers a new material reference with zero quantity.
func (h *StockHandler) CreateItem(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	req.Reference = strings.TrimSpace(req.Reference)
	req.Label = strings.TrimSpace(req.Label)
	if req.Reference == "" || req.Label == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "reference and label required")
	}
	if req.Unit == "" {
		req.Unit = "piece"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item := model.StockItem{Reference: req.Reference, Label: req.Label, Unit: req.Unit}
	id, err := h.Stocks.CreateItem(ctx, &item)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "reference already exists")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "create item failed")
	}
	created, err := h.Stocks.GetItem(ctx, id)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load item failed")
	}
	return httpx.OK(c, http.StatusCreated, echo.Map{"item": toStockItemResp(created)})
}

// RecordMovement records an entree/sortie for an item and publishes the
// movement for the audit consumer. A sortie that would drive the quantity
// negative is a conflict.
func (h *StockHandler) RecordMovement(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid item id")
	}
	var req movementReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	if req.Quantity <= 0 {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "quantity must be positive")
	}
	if req.Direction != model.MovementIn && req.Direction != model.MovementOut {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "direction must be entree or sortie")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.StockMovement{
		ItemID:    id,
		Direction: req.Direction,
		Quantity:  req.Quantity,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedBy: currentUser(c),
	}
	item, err := h.Stocks.RecordMovement(ctx, &m)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "item not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "insufficient stock")
		case errors.Is(err, repository.ErrInvalidTransition):
			return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid movement")
		default:
			return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "record movement failed")
		}
	}

	// Best effort; the movement stands even if the broker is down.
	_ = queue.PublishStockMovement(ctx, queue.StockMovementEvent{
		MovementID: m.ID,
		ItemID:     item.ID,
		Reference:  item.Reference,
		Direction:  m.Direction,
		Quantity:   m.Quantity,
		NewOnHand:  item.Quantity,
		Reason:     m.Reason,
		UserID:     m.CreatedBy,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return httpx.OK(c, http.StatusCreated, echo.Map{"item": toStockItemResp(item), "movement_id": m.ID})
}

// Movements returns the movement history of one item, newest first.
func (h *StockHandler) Movements(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid item id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Stocks.GetItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "item not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load item failed")
	}
	moves, err := h.Stocks.Movements(ctx, id)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list movements failed")
	}
	out := make([]movementResp, 0, len(moves))
	for _, m := range moves {
		out = append(out, toMovementResp(m))
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"movements": out})
}
