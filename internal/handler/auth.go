package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // SQL database interactions
    "errors"
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/LeMizoo/bygagoos-api/internal/auth"
    "github.com/LeMizoo/bygagoos-api/internal/config"
    "github.com/LeMizoo/bygagoos-api/internal/httpx"
    "github.com/LeMizoo/bygagoos-api/internal/middleware"
    "github.com/LeMizoo/bygagoos-api/internal/policy"
    "github.com/LeMizoo/bygagoos-api/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"` // salarie | contremaitre | gerante
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID           uint64   `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

// Register: create user and return tokens immediately. The admin role can
// never be self-assigned; unknown or empty roles fall back to salarie.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "email/password required")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == policy.RoleAdmin || !policy.KnownRole(role) {
		role = policy.RoleSalarie
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		req.Email, req.Password, role, nil, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return httpx.Fail(c, http.StatusConflict, httpx.CodeConflict, "email already exists")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "create user failed")
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, uid, role, nil, h.Cfg.AccessTTLMin)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue access failed")
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, auth.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "save refresh failed")
	}

	return httpx.OK(c, http.StatusCreated, echo.Map{
		"user": userPart{ID: uid, FirstName: req.FirstName, LastName: req.LastName,
			Email: req.Email, Role: role, Capabilities: []string{}},
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login: verify credentials and return a new token pair. Unknown email and
// wrong password produce the same answer so the endpoint cannot be used to
// probe which addresses have accounts. This is the one place that stamps
// last_login_at.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeBadCredentials, "invalid credentials")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "query failed")
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeBadCredentials, "invalid credentials")
	}
	if !u.IsActive {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeUserInactive, "account deactivated")
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Capabilities, h.Cfg.AccessTTLMin)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue access failed")
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, auth.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "save refresh failed")
	}
	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		c.Logger().Warnf("login: touch last_login failed for user %d: %v", u.ID, err)
	}

	return httpx.OK(c, http.StatusOK, echo.Map{
		"user": userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
			Email: u.Email, Role: u.Role, Capabilities: capsOrEmpty(u.Capabilities)},
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh: validate by hash, revoke old, issue new pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return httpx.Fail(c, http.StatusBadRequest, httpx.CodeBadRequest, "refresh_token required")
	}
	raw := strings.TrimSpace(req.RefreshToken)
	hash := auth.HashRefreshRaw(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeTokenInvalid, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeUserNotFound, "invalid refresh")
		}
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "load user failed")
	}
	if !u.IsActive {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeUserInactive, "account deactivated")
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Capabilities, h.Cfg.AccessTTLMin)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue access failed")
	}
	newRef, err := auth.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, auth.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "save refresh failed")
	}

	return httpx.OK(c, http.StatusOK, echo.Map{
		"user": userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
			Email: u.Email, Role: u.Role, Capabilities: capsOrEmpty(u.Capabilities)},
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes sessions. With a refresh_token in the body, that single
// session is revoked; without one, all of the authenticated user's refresh
// tokens are revoked. The route is registered behind the session
// middleware, so the bearer has already been validated when we get here.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := auth.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeTokenInvalid, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeMissingToken, "unauthorized")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return httpx.Fail(c, http.StatusInternalServerError, httpx.CodeInternal, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the sanitized principal the session middleware resolved.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := c.Get("principal").(middleware.Principal)
	if !ok {
		return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeMissingToken, "unauthorized")
	}
	return httpx.OK(c, http.StatusOK, echo.Map{"user": p})
}

// Policy serves the versioned policy document for the current principal.
// The SPA builds its navigation from this instead of a duplicated table;
// the document is advisory and every data route stays guarded server side.
func (h *AuthHandler) Policy(c echo.Context) error {
	role, _ := c.Get("role").(string)
	caps, _ := c.Get("capabilities").([]string)
	doc := policy.Document(role, caps)
	return httpx.OK(c, http.StatusOK, echo.Map{
		"version":      doc.Version,
		"role":         doc.Role,
		"capabilities": doc.Capabilities,
		"modules":      doc.Modules,
	})
}

func capsOrEmpty(caps []string) []string {
	if caps == nil {
		return []string{}
	}
	return caps
}
