package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LeMizoo/bygagoos-api/internal/httpx"
	"github.com/LeMizoo/bygagoos-api/internal/policy"
	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

// AdminHandler serves the admin module: account activation and role
// assignment. Only users holding the admin module reach these handlers.
type AdminHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t}
}

type setActiveReq struct {
	Active bool `json:"active"`
}

type setRoleReq struct {
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

// ListUsers returns every account, sanitized.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "list users failed")
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{
			ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
			Email: u.Email, Role: u.Role, Capabilities: capsOrEmpty(u.Capabilities),
		})
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"users": out})
}

// SetActive flips an account's active flag. Deactivating also revokes the
// user's refresh tokens so they cannot mint new access tokens; their
// current access token dies at the next request when session resolution
// re-reads the flag.
func (h *AdminHandler) SetActive(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid user id")
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	if id == currentUser(c) && !req.Active {
		return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "cannot deactivate own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "user not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "update user failed")
	}
	if !req.Active {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			c.Logger().Warnf("admin: revoke tokens for user %d failed: %v", id, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// SetRole assigns a role and capability set to a user.
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid user id")
	}
	var req setRoleReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !policy.KnownRole(role) {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "unknown role")
	}
	for _, capName := range req.Capabilities {
		if strings.TrimSpace(capName) != policy.CapMagasinier {
			return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "unknown capability")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetRole(ctx, id, role, req.Capabilities); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, httpx.CodeNotFound, "user not found")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "update user failed")
	}
	return c.NoContent(http.StatusNoContent)
}
