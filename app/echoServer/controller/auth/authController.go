package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"bookwise/app/echoServer/jwtx"
	"bookwise/model"
	authsvc "bookwise/service/auth"
	"bookwise/util/ratelimit"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	RL  ratelimit.Limiter
	Log *slog.Logger
}

// Register a new account request
// @Summary      Register user
// @Description  Create an account request; the account stays PENDING until an admin approves it
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email/university id already taken"
// @Failure      429  {object}  map[string]any
// @Router       /v1/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	if !ct.RL.Allow("register:" + c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
	}

	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case authsvc.ErrUniversityIDTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "university id already registered"})
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("register failed", "err", err, "req_id", rid, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered, awaiting approval",
		"user":    u,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	if !ct.RL.Allow("login:" + c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests"})
	}

	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("login failed", "err", err, "req_id", rid, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"user":    u,
		"token":   token,
	})
}

// GET /v1/users/me
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	u, err := ct.Svc.Profile(c.Request().Context(), uid, uid, jwtx.Role(c))
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		ct.Log.Error("profile", "err", err, "user_id", uid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, u)
}
