package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/metrics"
	"github.com/polkiloo/homebooking/internal/server/http/handlers"
	"github.com/polkiloo/homebooking/internal/server/http/middleware"
)

// Params groups router dependencies.
type Params struct {
	fx.In

	Facade   handlers.BookingFacade
	Logger   *slog.Logger
	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.RequestMetrics(p.Recorder))
	engine.Use(middleware.DecompressRequest(middleware.DefaultMaxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	partnerHandler := handlers.NewPartnerHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", healthHandler.Check)
	if p.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler(p.Gatherer)))
	}

	api := engine.Group("/api")

	// Gateway callbacks authenticate by signature, not bearer token.
	payments := api.Group("/payments")
	payments.GET("/return", paymentHandler.Return)
	payments.POST("/notify", paymentHandler.Notify)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))

	// Ownership and role per transition are enforced by the core.
	orders := authed.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/claim", orderHandler.Claim)
	orders.POST("/:id/start", orderHandler.Start)
	orders.POST("/:id/completion/request", orderHandler.RequestCompletion)
	orders.POST("/:id/completion/confirm", orderHandler.ConfirmCompletion)

	partner := authed.Group("/partner")
	partner.Use(middleware.RequireRole(model.RolePartner))
	partner.GET("/orders/available", orderHandler.Available)
	partner.GET("/notifications", partnerHandler.Notifications)
	partner.GET("/profile", partnerHandler.Profile)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/payment-reviews", paymentHandler.Reviews)
	admin.PUT("/partners/:id", partnerHandler.Upsert)

	return engine
}
