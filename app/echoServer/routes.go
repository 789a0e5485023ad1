package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bookwise/app/echoServer/controller/admin"
	"bookwise/app/echoServer/controller/auth"
	"bookwise/app/echoServer/controller/book"
	"bookwise/app/echoServer/controller/borrow"
	"bookwise/app/echoServer/controller/receipt"
	jwtutil "bookwise/util/jwt"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrow    *borrow.Controller
	Receipt   *receipt.Controller
	Admin     *admin.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(ctx echo.Context, auth string) (interface{}, error) {
			return jwtutil.ParseAuth(auth, c.JWTSecret)
		},
	}))
	authed.Use(principal())

	authed.GET("/users/me", c.Auth.Me)

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/search", c.Book.Search)
	authed.GET("/books/:id", c.Book.Detail)
	authed.GET("/books/:id/eligibility", c.Borrow.Eligibility)

	// Borrowing
	authed.POST("/borrow", c.Borrow.Request)
	authed.GET("/borrow/my", c.Borrow.MyRecords)
	authed.POST("/borrow/:id/dismiss", c.Borrow.Dismiss)
	authed.GET("/borrow/:id/receipt", c.Receipt.View)

	// Admin
	adm := authed.Group("/admin", RequireAdmin())
	adm.POST("/books", c.Book.Create)
	adm.PUT("/books/:id", c.Book.Update)
	adm.PUT("/books/:id/capacity", c.Book.EditCapacity)
	adm.GET("/borrow-records", c.Borrow.ListAll)
	adm.PUT("/borrow-records/:id/status", c.Borrow.UpdateStatus)
	adm.POST("/borrow-records/:id/receipt", c.Receipt.Issue)
	adm.GET("/users", c.Admin.ListUsers)
	adm.GET("/account-requests", c.Admin.AccountRequests)
	adm.PUT("/users/:id/approve", c.Admin.Approve)
	adm.PUT("/users/:id/reject", c.Admin.Reject)
	adm.DELETE("/users/:id", c.Admin.Delete)
	adm.GET("/dashboard", c.Admin.Dashboard)
}

// principal lifts sub and role out of the verified claims so handlers read
// them from context instead of reparsing the token.
func principal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, ok := ctx.Get("user").(map[string]any)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, _ := claims["role"].(string)

			ctx.Set("user_id", sub)
			ctx.Set("role", role)
			return next(ctx)
		}
	}
}
