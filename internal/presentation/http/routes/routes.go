package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/posbilling/internal/config"
	"github.com/sangkips/posbilling/internal/domain/enum"
	domainRepo "github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/sangkips/posbilling/internal/presentation/http/handler"
	"github.com/sangkips/posbilling/internal/presentation/http/middleware"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/utils"
)

const healthCheckTimeout = 2 * time.Second

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Till      *handler.TillHandler
	Billing   *handler.BillingHandler
	Purchase  *handler.PurchaseHandler
	Printer   *handler.PrinterHandler
	Dashboard *handler.DashboardHandler
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *logger.Logger
	// Gatherer backs /metrics; the route is skipped when nil
	Gatherer prometheus.Gatherer
	// HealthChecks are probed by /health, keyed by component name
	HealthChecks map[string]Pinger
	RateLimiter  *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", healthHandler(deps))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, deps.Logger))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func healthHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for name, pinger := range deps.HealthChecks {
			if err := pinger.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": deps.Cfg.App.Name,
			"checks":  checks,
		})
	}
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	adminOnly := middleware.RequireRole(enum.StaffRoleAdmin)

	protected.GET("/profile", h.Auth.GetProfile)

	// Dashboard
	protected.GET("/dashboard", adminOnly, h.Dashboard.GetStats)

	registerProductRoutes(protected, h, adminOnly)
	registerTillRoutes(protected, h, adminOnly)
	registerBillingRoutes(protected, h, deps)
	registerPurchaseRoutes(protected, h, deps)
	registerUserRoutes(protected, h, adminOnly)

	// Printer
	protected.GET("/printer/status", h.Printer.GetStatus)
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers, adminOnly gin.HandlerFunc) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.POST("", adminOnly, h.Product.Create)
		products.PUT("/:id", adminOnly, h.Product.Update)
		products.DELETE("/:id", adminOnly, h.Product.Delete)
	}
}

func registerTillRoutes(protected *gin.RouterGroup, h *Handlers, adminOnly gin.HandlerFunc) {
	denominations := protected.Group("/denominations")
	{
		denominations.GET("", h.Till.List)
		denominations.PUT("/:value", adminOnly, h.Till.SetCount)
		denominations.POST("/:value/restock", adminOnly, h.Till.Restock)
	}
}

func registerBillingRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	billing := protected.Group("/billing")
	{
		billing.POST("/quote", h.Billing.Quote)
		billing.POST("/checkout", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Billing.Checkout)
	}
}

func registerPurchaseRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	purchases := protected.Group("/purchases")
	purchases.Use(middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	}))
	{
		purchases.GET("", h.Purchase.List)
		purchases.GET("/:id", h.Purchase.Get)
		purchases.GET("/:id/invoices", h.Purchase.InvoiceHistory)
		purchases.POST("/:id/resend-invoice", h.Purchase.ResendInvoice)
		purchases.POST("/:id/print", h.Printer.PrintPurchase)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers, adminOnly gin.HandlerFunc) {
	users := protected.Group("/users", adminOnly)
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.POST("", h.User.Create)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}
}
