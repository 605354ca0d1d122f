package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"      // bounded waits for credential store lookups
    "database/sql" // sql.ErrNoRows distinguishes a vanished user from an outage
    "errors"
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming
    "time"

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/LeMizoo/bygagoos-api/internal/auth"
    "github.com/LeMizoo/bygagoos-api/internal/httpx"
    "github.com/LeMizoo/bygagoos-api/internal/model"
)

// UserStore is the slice of the user repository the session middleware
// needs.  Taking an interface keeps the middleware testable without a
// database and keeps it read-only by construction: there is no way to
// write through it.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// storeTimeout bounds each credential store lookup.  A store that does not
// answer within the window fails the request closed (503), never open.
const storeTimeout = 3 * time.Second

// Principal is the sanitized identity attached to the request context
// after session resolution.  It intentionally has no password hash field.
type Principal struct {
    ID           uint64   `json:"id"`
    FirstName    string   `json:"first_name"`
    LastName     string   `json:"last_name"`
    Email        string   `json:"email"`
    Role         string   `json:"role"`
    Capabilities []string `json:"capabilities"`
}

// Session returns an Echo middleware that validates a Bearer access token,
// re-fetches the live user record and injects the resolved identity into
// the request context.  Handlers access it via c.Get("user_id"),
// c.Get("role"), c.Get("capabilities") and c.Get("principal").
//
// The live re-fetch is the point: a structurally valid, unexpired token is
// not enough.  The user must still exist and still be active, which makes
// deactivation take effect on the next request instead of at token expiry.
// The middleware itself never writes anything; last-login stamping belongs
// to the login flow, not here.
func Session(secret string, store UserStore) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the token.
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeMissingToken, "missing bearer token")
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            claims, err := auth.VerifyAccess(secret, raw)
            if err != nil {
                // Expired gets its own code so clients can re-login
                // silently; everything else is just invalid.
                if errors.Is(err, auth.ErrTokenExpired) {
                    return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeTokenExpired, "token expired")
                }
                return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeTokenInvalid, "invalid token")
            }

            u, err := lookupUser(c.Request().Context(), store, claims.Subject)
            if err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeUserNotFound, "user not found")
                }
                c.Logger().Errorf("session: user lookup failed: %v", err)
                return httpx.Fail(c, http.StatusServiceUnavailable, httpx.CodeServiceUnavailable, "service unavailable")
            }
            if !u.IsActive {
                return httpx.Fail(c, http.StatusUnauthorized, httpx.CodeUserInactive, "account deactivated")
            }

            c.Set("user_id", u.ID)
            c.Set("role", u.Role)
            c.Set("capabilities", u.Capabilities)
            c.Set("principal", Principal{
                ID:           u.ID,
                FirstName:    u.FirstName,
                LastName:     u.LastName,
                Email:        u.Email,
                Role:         u.Role,
                Capabilities: u.Capabilities,
            })
            return next(c)
        }
    }
}

// lookupUser queries the store with a bounded wait and retries exactly once
// on transient failure.  sql.ErrNoRows is never retried: an absent row is a
// definitive answer, not an outage.
func lookupUser(parent context.Context, store UserStore, id uint64) (model.User, error) {
    u, err := fetchOnce(parent, store, id)
    if err == nil || errors.Is(err, sql.ErrNoRows) {
        return u, err
    }
    return fetchOnce(parent, store, id)
}

func fetchOnce(parent context.Context, store UserStore, id uint64) (model.User, error) {
    ctx, cancel := context.WithTimeout(parent, storeTimeout)
    defer cancel()
    return store.GetByID(ctx, id)
}
