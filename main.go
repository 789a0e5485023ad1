// Package main BookWise API.
//
// @title           BookWise Library API
// @version         1.0
// @description     Library management: accounts, catalog, borrowing, receipts.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bookwise/app/echoServer"
	adminctrl "bookwise/app/echoServer/controller/admin"
	authctrl "bookwise/app/echoServer/controller/auth"
	bookctrl "bookwise/app/echoServer/controller/book"
	borrowctrl "bookwise/app/echoServer/controller/borrow"
	receiptctrl "bookwise/app/echoServer/controller/receipt"
	"bookwise/app/echoServer/validation"
	"bookwise/config"
	bookrepo "bookwise/repository/book"
	borrowrepo "bookwise/repository/borrow"
	mailerrepo "bookwise/repository/mailer"
	userrepo "bookwise/repository/user"
	authsvc "bookwise/service/auth"
	booksvc "bookwise/service/book"
	borrowsvc "bookwise/service/borrow"
	dashboardsvc "bookwise/service/dashboard"
	receiptsvc "bookwise/service/receipt"
	"bookwise/util/database"
	"bookwise/util/ratelimit"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	bkr := bookrepo.New(db)
	brr := borrowrepo.New(db)
	mr := mailerrepo.NewHTTP(mailerrepo.Config{
		ServiceID:  cfg.EmailJSService,
		PublicKey:  cfg.EmailJSUser,
		PrivateKey: cfg.EmailJSToken,
	})

	views := echoServer.LogInvalidator{Log: log}

	// services
	as := authsvc.New(ur, mr, cfg.JWTSecret, cfg.EmailJSTemplate, log)
	bs := booksvc.New(bkr)
	brs := borrowsvc.New(brr, bkr, views)
	rs := receiptsvc.New(brr, views)
	ds := dashboardsvc.New(brr, ur, bkr)

	// controllers
	v := validator.New()
	authRL := ratelimit.NewPerKey(5.0/60, 5)    // 5 per minute
	borrowRL := ratelimit.NewPerKey(5.0/60, 5)  // 5 per minute
	receiptRL := ratelimit.NewPerKey(2.0/60, 2) // 2 per minute

	authC := &authctrl.Controller{Svc: as, V: v, RL: authRL, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: brs, V: v, RL: borrowRL, Log: log}
	receiptC := &receiptctrl.Controller{Svc: rs, RL: receiptRL, Log: log}
	adminC := &adminctrl.Controller{Users: as, Dash: ds, Log: log}

	// echo
	e := echo.New()
	e.JSONSerializer = echoServer.JSONSerializer{}
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Borrow:    borrowC,
		Receipt:   receiptC,
		Admin:     adminC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
