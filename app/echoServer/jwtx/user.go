// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"

	"bookwise/model"
)

// UserID returns the acting principal's id placed in context by the auth
// middleware.
func UserID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", errors.New("no user id in context")
	}
	return id, nil
}

func Role(c echo.Context) model.Role {
	r, _ := c.Get("role").(string)
	return model.Role(r)
}

func IsAdmin(c echo.Context) bool {
	return Role(c) == model.RoleAdmin
}
