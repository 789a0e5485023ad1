package receipt

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookwise/app/echoServer/jwtx"
	receiptsvc "bookwise/service/receipt"
	"bookwise/util/ratelimit"
)

type Controller struct {
	Svc receiptsvc.Service
	RL  ratelimit.Limiter
	Log *slog.Logger
}

// GET /v1/borrow/:id/receipt
func (h *Controller) View(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !h.RL.Allow("receipt:" + uid) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
	}

	rcpt, err := h.Svc.View(c.Request().Context(), c.Param("id"), uid, jwtx.Role(c))
	if err != nil {
		switch receiptsvc.Code(err) {
		case receiptsvc.ErrRecordNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "record not found"})
		case receiptsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("receipt view", "err", err, "record_id", c.Param("id"))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, rcpt)
}

// POST /v1/admin/borrow-records/:id/receipt  (admin)
func (h *Controller) Issue(c echo.Context) error {
	rcpt, err := h.Svc.Issue(c.Request().Context(), c.Param("id"), jwtx.Role(c))
	if err != nil {
		switch receiptsvc.Code(err) {
		case receiptsvc.ErrRecordNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "record not found"})
		case receiptsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case receiptsvc.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "record is not pending"})
		default:
			h.Log.Error("receipt issue", "err", err, "record_id", c.Param("id"))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, rcpt)
}
