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
	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

// EmployeeHandler serves the personnel module.
type EmployeeHandler struct {
	Employees *repository.EmployeeRepo
}

func NewEmployeeHandler(e *repository.EmployeeRepo) *EmployeeHandler {
	return &EmployeeHandler{Employees: e}
}

type employeeReq struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Position        string `json:"position"`
	HourlyWageCents int64  `json:"hourly_wage_cents"`
	HiredAt         string `json:"hired_at"` // YYYY-MM-DD
}

type employeeResp struct {
	ID              uint64    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Position        string    `json:"position"`
	HourlyWageCents int64     `json:"hourly_wage_cents"`
	HiredAt         string    `json:"hired_at"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toEmployeeResp(e model.Employee) employeeResp {
	return employeeResp{
		ID:              e.ID,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		Position:        e.Position,
		HourlyWageCents: e.HourlyWageCents,
		HiredAt:         e.HiredAt.Format("2006-01-02"),
		IsActive:        e.IsActive,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *employeeReq) validate() (time.Time, string) {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Position = strings.TrimSpace(r.Position)
	if r.FirstName == "" || r.LastName == "" {
		return time.Time{}, "first_name and last_name required"
	}
	if r.HourlyWageCents < 0 {
		return time.Time{}, "hourly_wage_cents must not be negative"
	}
	hired, err := time.Parse("2006-01-02", r.HiredAt)
	if err != nil {
		return time.Time{}, "hired_at must be YYYY-MM-DD"
	}
	return hired, ""
}

// List returns employees; ?all=true includes deactivated ones.
func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	all := strings.EqualFold(c.QueryParam("all"), "true")
	employees, err := h.Employees.List(ctx, all)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list employees failed")
	}
	out := make([]employeeResp, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResp(e))
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"employees": out})
}

// Create registers a new employee.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	hired, msg := req.validate()
	if msg != "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := model.Employee{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Position:        req.Position,
		HourlyWageCents: req.HourlyWageCents,
		HiredAt:         hired,
	}
	id, err := h.Employees.Create(ctx, &e)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "create employee failed")
	}
	created, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load employee failed")
	}
	return httpx.OK(c, http.StatusCreated, echo.Map{"employee": toEmployeeResp(created)})
}

// Update rewrites an employee's fields. Wage changes are restricted to
// gerante and above at the route level.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid employee id")
	}
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	hired, msg := req.validate()
	if msg != "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Employees.Update(ctx, id, req.FirstName, req.LastName, req.Position, req.HourlyWageCents, hired)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "employee not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "update employee failed")
	}
	updated, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load employee failed")
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"employee": toEmployeeResp(updated)})
}

// Deactivate soft-deletes an employee.
func (h *EmployeeHandler) Deactivate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid employee id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Employees.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "employee not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "deactivate employee failed")
	}
	return c.NoContent(http.StatusNoContent)
}
