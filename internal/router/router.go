package router

import (
	"net/http"
	"time"

	"bellissimo/config"
	"bellissimo/internal/domain"
	"bellissimo/internal/handler"
	"bellissimo/internal/middleware"
	"bellissimo/internal/repository"
	"bellissimo/internal/service"
	"bellissimo/pkg/cache"
	"bellissimo/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services are the long-lived services main needs for background jobs and shutdown.
type Services struct {
	Registry *service.PaymentMethodRegistry
	Fees     *service.FeeService
	Payments *service.PaymentService
	Ledger   *service.SettlementService
	Notifier service.Notifier
}

// NewServices wires repositories and services over db. A nil collector disables STK push.
func NewServices(cfg *config.Config, db *gorm.DB, c cache.Cache, collector payment.Provider, notifier service.Notifier) *Services {
	repos := repository.NewRepos(db)
	uow := repository.NewUnitOfWork(db)
	registry := service.NewPaymentMethodRegistry(repos.Methods, uow, c, cfg.Redis.TTL)
	return &Services{
		Registry: registry,
		Fees:     service.NewFeeService(repos.Fees, uow),
		Payments: service.NewPaymentService(repos, uow, registry, notifier, collector, cfg.Payment.Currency),
		Ledger:   service.NewSettlementService(repos, uow),
		Notifier: notifier,
	}
}

func Setup(cfg *config.Config, svc *Services) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(300, 60*time.Second)))

	methodHandler := handler.NewPaymentMethodHandler(svc.Registry)
	paymentHandler := handler.NewPaymentHandler(svc.Payments)
	feeHandler := handler.NewFeeHandler(svc.Fees)
	settlementHandler := handler.NewSettlementHandler(svc.Ledger)
	mpesaWebhookHandler := handler.NewMpesaWebhookHandler(svc.Payments, cfg.Payment.WebhookSecret)
	adminHandler := handler.NewAdminHandler(svc.Payments, cfg.Payment.PaymentExpiry)

	authMw := middleware.AuthRequired(&cfg.JWT)
	userLimit := middleware.RateLimitByUser(middleware.NewInMemoryRateLimiter(60, 60*time.Second))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/webhooks/mpesa", mpesaWebhookHandler.Handle)

		authed := api.Group("")
		authed.Use(authMw, userLimit)
		{
			authed.GET("/payment-methods", methodHandler.List)
			authed.GET("/payment-methods/:id/fields", methodHandler.Fields)

			authed.POST("/payments", middleware.RequireRole(domain.RoleTenant, domain.RoleAdmin), paymentHandler.Create)
			authed.GET("/payments/:id", paymentHandler.Get)
			authed.POST("/payments/:id/complete", middleware.RequireRole(domain.RoleLandlord, domain.RoleAdmin), paymentHandler.Complete)
			authed.POST("/payments/:id/fail", middleware.RequireRole(domain.RoleLandlord, domain.RoleAdmin), paymentHandler.Fail)

			authed.GET("/fees", feeHandler.List)
			authed.GET("/fees/:unit_type", feeHandler.Get)

			authed.GET("/revenue-streams/:id", middleware.RequireRole(domain.RoleLandlord, domain.RoleAdmin), settlementHandler.Get)
			authed.POST("/revenue-streams/:id/settlements", middleware.RequireRole(domain.RoleLandlord, domain.RoleAdmin), settlementHandler.Record)

			landlord := authed.Group("/landlords/me")
			landlord.Use(middleware.RequireRole(domain.RoleLandlord))
			{
				landlord.GET("/payments", adminHandler.MyPayments)
				landlord.GET("/revenue-streams", settlementHandler.ListMine)
				landlord.GET("/statement.xlsx", settlementHandler.Statement)
			}
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/payment-methods", methodHandler.Create)
			admin.PATCH("/payment-methods/:id", methodHandler.SetActive)
			admin.PUT("/payment-methods/:id/fields", methodHandler.ReplaceFields)
			admin.PUT("/fees/:unit_type", feeHandler.Put)
			admin.GET("/landlords/:id/payments", adminHandler.LandlordPayments)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
			admin.POST("/payments/expire", adminHandler.ExpirePayments)
		}
	}

	return r
}
