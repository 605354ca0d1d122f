package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeMizoo/bygagoos-api/internal/auth"
	"github.com/LeMizoo/bygagoos-api/internal/config"
	"github.com/LeMizoo/bygagoos-api/internal/middleware"
	"github.com/LeMizoo/bygagoos-api/internal/policy"
	"github.com/LeMizoo/bygagoos-api/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   60,
		RefreshTTLDays: 30,
		BcryptCost:     4,
	}
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func userRow(hash string, active bool, caps string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password_hash",
		"role", "capabilities", "is_active", "last_login_at", "created_at", "updated_at",
	}).AddRow(7, "Nirina", "Rakoto", "nirina@bygagoos.mg", hash,
		"contremaitre", caps, active, nil, now, now)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/login", h.Login)

	// Unknown email.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnError(sql.ErrNoRows)
	unknown := postJSON(e, "/login", `{"email":"nobody@bygagoos.mg","password":"x"}`)

	// Known email, wrong password.
	hash, err := auth.HashPassword("le-bon-mdp", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(userRow(hash, true, ""))
	wrongPw := postJSON(e, "/login", `{"email":"nirina@bygagoos.mg","password":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	// Identical bodies: the endpoint must not reveal which addresses exist.
	assert.JSONEq(t, unknown.Body.String(), wrongPw.Body.String())
	assert.Contains(t, unknown.Body.String(), "INVALID_CREDENTIALS")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_InactiveAccount(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/login", h.Login)

	hash, err := auth.HashPassword("le-bon-mdp", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(userRow(hash, false, ""))

	rec := postJSON(e, "/login", `{"email":"nirina@bygagoos.mg","password":"le-bon-mdp"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_INACTIVE")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Success(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/login", h.Login)

	hash, err := auth.HashPassword("le-bon-mdp", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(userRow(hash, true, "magasinier"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(uint64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at=NOW() WHERE id=?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postJSON(e, "/login", `{"email":"nirina@bygagoos.mg","password":"le-bon-mdp"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		User    struct {
			ID           uint64   `json:"id"`
			Role         string   `json:"role"`
			Capabilities []string `json:"capabilities"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, uint64(7), body.User.ID)
	assert.Equal(t, []string{"magasinier"}, body.User.Capabilities)
	assert.NotContains(t, rec.Body.String(), hash, "password hash must never leave the server")
	assert.Len(t, body.Refresh.Token, 96)

	// The access token is genuinely usable.
	claims, err := auth.VerifyAccess(testConfig().JWTSecret, body.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.Subject)
	assert.Equal(t, "contremaitre", claims.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_RoleFallsBackToSalarie(t *testing.T) {
	for _, requested := range []string{"admin", "ADMIN", "pdg", ""} {
		h, mock := newAuthHandler(t)
		e := echo.New()
		e.POST("/register", h.Register)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("Hery", "Andriana", "hery@bygagoos.mg", sqlmock.AnyArg(), policy.RoleSalarie, "").
			WillReturnResult(sqlmock.NewResult(12, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WillReturnResult(sqlmock.NewResult(1, 1))

		rec := postJSON(e, "/register",
			`{"first_name":"Hery","last_name":"Andriana","email":"hery@bygagoos.mg","password":"mdp","role":"`+requested+`"}`)
		assert.Equal(t, http.StatusCreated, rec.Code, "requested role %q", requested)
		assert.Contains(t, rec.Body.String(), `"role":"salarie"`)
		require.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/register", h.Register)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'hery@bygagoos.mg' for key 'users.email'"))

	rec := postJSON(e, "/register", `{"email":"hery@bygagoos.mg","password":"mdp"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMe_ReturnsPrincipal(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()
	e.GET("/me", h.Me, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("principal", middleware.Principal{
				ID: 7, FirstName: "Nirina", Email: "nirina@bygagoos.mg",
				Role: "gerante", Capabilities: []string{"magasinier"},
			})
			return next(c)
		}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"nirina@bygagoos.mg"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestMe_WithoutSessionContext(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()
	e.GET("/me", h.Me)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPolicy_DocumentShape(t *testing.T) {
	h, _ := newAuthHandler(t)
	e := echo.New()
	e.GET("/policy", h.Policy, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("role", policy.RoleSalarie)
			c.Set("capabilities", []string{policy.CapMagasinier})
			return next(c)
		}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/policy", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success      bool     `json:"success"`
		Version      string   `json:"version"`
		Role         string   `json:"role"`
		Capabilities []string `json:"capabilities"`
		Modules      []string `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, policy.Version, body.Version)
	assert.Equal(t, policy.RoleSalarie, body.Role)
	assert.ElementsMatch(t,
		[]string{policy.ModuleDashboard, policy.ModuleProduction, policy.ModuleStocks},
		body.Modules)

	// Null-safety for clients: arrays, never null.
	assert.NotContains(t, rec.Body.String(), `"modules":null`)
	assert.NotContains(t, rec.Body.String(), `"capabilities":null`)
}

func TestRefresh_RotationRevokesOldToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/refresh", h.Refresh)

	raw := strings.Repeat("ab", 48)
	hash := auth.HashRefreshRaw(raw)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(24*time.Hour), nil))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(userRow("$2a$04$hash", true, ""))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(2, 1))

	rec := postJSON(e, "/refresh", `{"refresh_token":"`+raw+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), raw, "the old refresh token never comes back")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_RevokedTokenRejected(t *testing.T) {
	h, mock := newAuthHandler(t)
	e := echo.New()
	e.POST("/refresh", h.Refresh)

	raw := strings.Repeat("cd", 48)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(7, time.Now().Add(24*time.Hour), time.Now()))

	rec := postJSON(e, "/refresh", `{"refresh_token":"`+raw+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
	require.NoError(t, mock.ExpectationsWereMet())
}
