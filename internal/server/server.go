package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/farellandr/admitpay/config"
	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/handlers"
	"github.com/farellandr/admitpay/internal/logger"
	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/farellandr/admitpay/internal/middleware"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/farellandr/admitpay/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the route table is built from.
type Dependencies struct {
	Config   *config.Config
	Store    *repository.Store
	Mailer   mailer.Mailer
	Gateways map[payment.Route]gateway.Gateway
	Lock     services.EventLock
	Logger   *zap.Logger
}

func Start(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	gateways, err := config.InitGateways(cfg)
	if err != nil {
		return err
	}
	mail, err := config.InitMailer(cfg)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Config:   cfg,
		Store:    repository.NewStore(db),
		Mailer:   mail,
		Gateways: gateways,
		Logger:   log,
	}
	rdb, err := config.InitRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		deps.Lock = services.NewRedisEventLock(rdb)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func NewRouter(d *Dependencies) *gin.Engine {
	cfg := d.Config
	links := services.Links{PublicBaseURL: cfg.PublicBaseURL, AppBaseURL: cfg.AppBaseURL}

	tokens := services.NewTokenService(d.Store, cfg.Currency)
	approvals := services.NewApprovalService(d.Store, tokens, d.Mailer, services.ApprovalConfig{
		Links:         links,
		SupportEmail:  cfg.SupportEmail,
		TokenValidity: cfg.TokenValidity,
	}, d.Logger)
	checkout := services.NewCheckoutService(d.Store, tokens, d.Gateways, links, d.Logger)
	reconcile := services.NewReconcileService(d.Store, d.Mailer, d.Lock, services.ReceiptConfig{
		InstituteName: cfg.InstituteName,
		SupportEmail:  cfg.SupportEmail,
	}, d.Logger)

	authHandler := &handlers.AuthHandler{Store: d.Store, JWTSecret: cfg.JWTSecret, Logger: d.Logger}
	approvalHandler := &handlers.ApprovalHandler{Approvals: approvals, Logger: d.Logger}
	applicationHandler := &handlers.ApplicationHandler{Store: d.Store, Links: links, Logger: d.Logger}
	payHandler := &handlers.PayHandler{Checkout: checkout}
	webhookHandler := &handlers.WebhookHandler{
		Reconcile:           reconcile,
		RazorpaySecret:      cfg.RazorpayWebhookSecret,
		XenditCallbackToken: cfg.XenditCallbackToken,
		Logger:              d.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestID(), logger.RequestLogger(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", middleware.RateLimit(rateOrDefault(cfg.LoginRateLimit, 10), 5), authHandler.Login)
		api.GET("/pay", middleware.RateLimit(rateOrDefault(cfg.PayRateLimit, 30), 10), payHandler.Pay)

		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/razorpay", webhookHandler.Razorpay)
			webhooks.POST("/xendit", webhookHandler.Xendit)
		}
	}

	admin := api.Group("")
	admin.Use(middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/applications/approve", approvalHandler.Approve)
		admin.GET("/applications", applicationHandler.List)
		admin.GET("/applications/:id", applicationHandler.Get)
		admin.PATCH("/applications/:id/fees", applicationHandler.UpdateFees)
		admin.GET("/applications/:id/payment-qr", applicationHandler.PaymentQR)
		admin.GET("/webhooks/unmatched", applicationHandler.Unmatched)
	}

	superadmin := api.Group("")
	superadmin.Use(middleware.RequireRole(cfg.JWTSecret, models.RoleSuperAdmin))
	{
		superadmin.POST("/auth/register", authHandler.Register)
	}

	return r
}

func rateOrDefault(perMinute, fallback int) int {
	if perMinute <= 0 {
		return fallback
	}
	return perMinute
}
