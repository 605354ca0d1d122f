// Package httpx shapes every API response into one envelope so clients have
// a single contract to switch on: {"success": bool, "message": ..., "code":
// ...} for failures, {"success": true, ...payload} for successes.  Failure
// codes are a closed set; no handler invents its own.
package httpx

import "github.com/labstack/echo/v4"

// Failure codes returned in the error envelope.  The first block is the
// authentication/authorization taxonomy; the second covers domain errors.
const (
    CodeMissingToken       = "MISSING_TOKEN"
    CodeTokenInvalid       = "TOKEN_INVALID"
    CodeTokenExpired       = "TOKEN_EXPIRED"
    CodeUserNotFound       = "USER_NOT_FOUND"
    CodeUserInactive       = "USER_INACTIVE"
    CodeForbidden          = "FORBIDDEN"
    CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

    CodeBadCredentials = "INVALID_CREDENTIALS"

    CodeBadRequest  = "BAD_REQUEST"
    CodeNotFound    = "NOT_FOUND"
    CodeConflict    = "CONFLICT"
    CodeRateLimited = "RATE_LIMITED"
    CodeInternal    = "INTERNAL"
)

// Fail writes the error envelope with the given HTTP status.
func Fail(c echo.Context, status int, code, message string) error {
    return c.JSON(status, echo.Map{
        "success": false,
        "code":    code,
        "message": message,
    })
}

// OK writes a success envelope merging the payload fields at the top level.
func OK(c echo.Context, status int, payload echo.Map) error {
    body := echo.Map{"success": true}
    for k, v := range payload {
        body[k] = v
    }
    return c.JSON(status, body)
}
