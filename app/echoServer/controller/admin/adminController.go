package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authsvc "bookwise/service/auth"
	dashboardsvc "bookwise/service/dashboard"
)

type Controller struct {
	Users authsvc.Service
	Dash  dashboardsvc.Service
	Log   *slog.Logger
}

// GET /v1/admin/users
func (h *Controller) ListUsers(c echo.Context) error {
	rows, total, err := h.Users.Users(c.Request().Context(),
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		h.Log.Error("users list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/admin/account-requests
func (h *Controller) AccountRequests(c echo.Context) error {
	rows, total, err := h.Users.PendingUsers(c.Request().Context(),
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		h.Log.Error("account requests list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// PUT /v1/admin/users/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	if err := h.Users.Approve(c.Request().Context(), c.Param("id")); err != nil {
		return h.userError(c, err, "approve")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "approved"})
}

// PUT /v1/admin/users/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	if err := h.Users.Reject(c.Request().Context(), c.Param("id")); err != nil {
		return h.userError(c, err, "reject")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rejected"})
}

// DELETE /v1/admin/users/:id
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if authsvc.Code(err) == authsvc.ErrHasBorrowRecords {
			return c.JSON(http.StatusConflict, echo.Map{"message": "user has borrow records"})
		}
		return h.userError(c, err, "delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// GET /v1/admin/dashboard
func (h *Controller) Dashboard(c echo.Context) error {
	data, err := h.Dash.Overview(c.Request().Context())
	if err != nil {
		h.Log.Error("dashboard", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Controller) userError(c echo.Context, err error, op string) error {
	if authsvc.Code(err) == authsvc.ErrUserNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	h.Log.Error("user "+op, "err", err, "user_id", c.Param("id"))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
