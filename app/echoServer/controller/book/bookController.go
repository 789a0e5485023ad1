package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookwise/model"
	booksvc "bookwise/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books  (admin)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Rating:      req.Rating,
		TotalCopies: req.TotalCopies,
		Description: req.Description,
		CoverColor:  req.CoverColor,
		CoverURL:    req.CoverURL,
		VideoURL:    req.VideoURL,
		Summary:     req.Summary,
	}
	if err := h.Svc.Create(c.Request().Context(), b); err != nil {
		if booksvc.Code(err) == booksvc.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("book create error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	id := c.Param("id")
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := &model.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Rating:      req.Rating,
		Description: req.Description,
		CoverColor:  req.CoverColor,
		CoverURL:    req.CoverURL,
		VideoURL:    req.VideoURL,
		Summary:     req.Summary,
	}
	if err := h.Svc.UpdateMeta(c.Request().Context(), b); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book update error", "err", err, "book_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// PUT /v1/books/:id/capacity  (admin)
func (h *Controller) EditCapacity(c echo.Context) error {
	id := c.Param("id")
	var req EditCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	book, err := h.Svc.EditCapacity(c.Request().Context(), id, req.TotalCopies)
	if err != nil {
		var capErr booksvc.CapacityError
		switch {
		case errors.As(err, &capErr):
			return c.JSON(http.StatusConflict, echo.Map{
				"message":      "total copies below active loans",
				"active_loans": capErr.Active,
			})
		case booksvc.Code(err) == booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.Code(err) == booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("capacity edit error", "err", err, "book_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, book)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/search
func (h *Controller) Search(c echo.Context) error {
	spec := model.SearchSpec{
		Query:  c.QueryParam("q"),
		Filter: model.SearchFilter(c.QueryParam("filter")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	rows, total, err := h.Svc.Search(c.Request().Context(), spec)
	if err != nil {
		h.Log.Error("book search error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	row, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
