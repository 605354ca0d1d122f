package handler

// params.go holds helpers shared across handler files: path parameter
// parsing and accessors for the identity values the session middleware
// stored in the context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// pathID parses the named path parameter as a positive integer id.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// currentUser returns the resolved user id, or 0 when no session is loaded.
func currentUser(c echo.Context) uint64 {
    id, _ := c.Get("user_id").(uint64)
    return id
}
