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

// SettingsHandler serves the settings module (company profile).
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

func NewSettingsHandler(s *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: s}
}

type profileReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type profileResp struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResp(p model.CompanyProfile) profileResp {
	return profileResp{
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		UpdatedAt: p.UpdatedAt,
	}
}

// GetProfile returns the workshop's company profile.
func (h *SettingsHandler) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Settings.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "profile not configured")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load profile failed")
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"profile": toProfileResp(p)})
}

// UpdateProfile rewrites the company profile.
func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "name required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.UpdateProfile(ctx, req.Name, req.Address, req.Phone, strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "update profile failed")
	}
	p, err := h.Settings.GetProfile(ctx)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load profile failed")
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"profile": toProfileResp(p)})
}
