package authz

import "github.com/labstack/echo/v4"

// FromContext rebuilds the Caller stashed by the JWT middleware.
// A zero-ID caller means the request was not authenticated.
func FromContext(c echo.Context) Caller {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return Caller{ID: id, Role: role}
}
