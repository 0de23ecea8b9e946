package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the claims injected by the Auth middleware and
// fast-fails before any service call: a missing user id means the middleware
// did not run or the token carries no subject, either way the request cannot
// be attributed to an owner.
func ctxIdentity(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(string)
	return userID, role, nil
}

// ctxToken returns the raw bearer token the Auth middleware stored.
func ctxToken(c echo.Context) string {
	token, _ := c.Get("access_token").(string)
	return token
}
