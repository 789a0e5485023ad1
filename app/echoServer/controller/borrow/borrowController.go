package borrow

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookwise/app/echoServer/jwtx"
	"bookwise/model"
	borrowsvc "bookwise/service/borrow"
	"bookwise/util/ratelimit"
)

type Controller struct {
	Svc borrowsvc.Service
	V   *validator.Validate
	RL  ratelimit.Limiter
	Log *slog.Logger
}

// POST /v1/borrow
func (h *Controller) Request(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if !h.RL.Allow("borrow:" + uid) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
	}

	var req RequestBorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rec, err := h.Svc.RequestBorrow(c.Request().Context(), uid, req.BookID)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case borrowsvc.ErrNoCopies:
			return c.JSON(http.StatusConflict, echo.Map{"message": borrowsvc.ReasonNoCopies})
		case borrowsvc.ErrDuplicateBorrow:
			return c.JSON(http.StatusConflict, echo.Map{"message": borrowsvc.ReasonAlreadyBorrowed})
		default:
			h.Log.Error("borrow request", "err", err, "user_id", uid, "book_id", req.BookID)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, rec)
}

// GET /v1/books/:id/eligibility
func (h *Controller) Eligibility(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ok, reason, err := h.Svc.CheckEligibility(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		if borrowsvc.Code(err) == borrowsvc.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("eligibility check", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"eligible": ok, "reason": reason})
}

// GET /v1/borrow/my
func (h *Controller) MyRecords(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, total, err := h.Svc.MyRecords(c.Request().Context(), uid,
		queryInt(c, "page", 1), queryInt(c, "limit", 6))
	if err != nil {
		h.Log.Error("my records", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// POST /v1/borrow/:id/dismiss
func (h *Controller) Dismiss(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Dismiss(c.Request().Context(), c.Param("id"), uid, jwtx.Role(c)); err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrRecordNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "record not found"})
		case borrowsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("dismiss", "err", err, "record_id", c.Param("id"))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "dismissed"})
}

// GET /v1/admin/borrow-records  (admin)
func (h *Controller) ListAll(c echo.Context) error {
	sortAsc := c.QueryParam("sort") == "asc"
	rows, total, err := h.Svc.ListAll(c.Request().Context(),
		queryInt(c, "page", 1), queryInt(c, "limit", 20), sortAsc)
	if err != nil {
		h.Log.Error("borrow records list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// PUT /v1/admin/borrow-records/:id/status  (admin)
func (h *Controller) UpdateStatus(c echo.Context) error {
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rec, err := h.Svc.TransitionStatus(c.Request().Context(), c.Param("id"), model.BorrowStatus(req.Status))
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrRecordNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "record not found"})
		case borrowsvc.ErrInvalidStatus:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
		case borrowsvc.ErrInventoryConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "inventory conflict"})
		default:
			h.Log.Error("status transition", "err", err, "record_id", c.Param("id"))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, rec)
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
