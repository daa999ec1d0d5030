package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/handler/api"
	"storedash/internal/middleware"
	"storedash/internal/pkg/dedup"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	ctrl *dashboard.Controller,
	logger *zap.Logger,
	dashboardKey string,
	updateDeduper dedup.Deduper,
	webhookHandler http.Handler,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORS())

	// Handlers
	sessionHandler := api.NewSessionHandler(ctrl, logger)
	productHandler := api.NewProductHandler(ctrl, logger)
	orderHandler := api.NewOrderHandler(ctrl, logger)
	paymentHandler := api.NewPaymentHandler(ctrl, logger)
	settingsHandler := api.NewSettingsHandler(ctrl, logger)

	dash := e.Group("/dashboard")
	dash.Use(middleware.APIAuth(dashboardKey))
	dash.Use(middleware.QueryTokenLogin(ctrl))

	dash.POST("/login", sessionHandler.Login)
	dash.POST("/logout", sessionHandler.Logout)
	dash.GET("/session", sessionHandler.Status)

	// Everything below needs a completed login.
	auth := middleware.RequireSession(ctrl.Session())
	dash.POST("/refresh", sessionHandler.Refresh, auth)
	dash.GET("/overview", sessionHandler.Overview, auth)

	dash.GET("/products", productHandler.List, auth)
	dash.POST("/products", productHandler.Create, auth)
	dash.PUT("/products/:id", productHandler.Update, auth)
	dash.POST("/products/:id/toggle", productHandler.Toggle, auth)

	dash.GET("/orders", orderHandler.List, auth)
	dash.PUT("/orders/:id/status", orderHandler.SetStatus, auth)

	dash.GET("/payments", paymentHandler.List, auth)
	dash.GET("/payments/:id", paymentHandler.Get, auth)
	dash.GET("/payments/:id/proof", paymentHandler.Proof, auth)
	dash.POST("/payments/:id/approve", paymentHandler.Approve, auth)
	dash.POST("/payments/:id/reject", paymentHandler.Reject, auth)

	dash.GET("/settings", settingsHandler.Get, auth)
	dash.PUT("/settings/store", settingsHandler.UpdateStore, auth)
	dash.PUT("/settings/bank", settingsHandler.UpdateBank, auth)

	// Telegram webhook (protected by IP check + deduplication)
	if webhookHandler != nil {
		botWebhookGroup := e.Group("/bot")
		botWebhookGroup.Use(middleware.TelegramIPCheck())
		botWebhookGroup.Use(middleware.TelegramUpdateDedup(updateDeduper))
		botWebhookGroup.POST("/webhook", echo.WrapHandler(webhookHandler))
	} else {
		logger.Info("Telegram webhook route disabled (bot not in webhook mode)")
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
