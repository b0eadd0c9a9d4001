package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/posbilling/internal/application/service"
	"github.com/sangkips/posbilling/internal/application/worker"
	"github.com/sangkips/posbilling/internal/config"
	"github.com/sangkips/posbilling/internal/domain/entity"
	"github.com/sangkips/posbilling/internal/infrastructure/database"
	"github.com/sangkips/posbilling/internal/infrastructure/repository"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/request"
	"github.com/sangkips/posbilling/internal/presentation/http/handler"
	"github.com/sangkips/posbilling/internal/presentation/http/middleware"
	"github.com/sangkips/posbilling/internal/presentation/http/routes"
	"github.com/sangkips/posbilling/pkg/email"
	"github.com/sangkips/posbilling/pkg/logger"
	"github.com/sangkips/posbilling/pkg/metrics"
	"github.com/sangkips/posbilling/pkg/printer"
	pkgredis "github.com/sangkips/posbilling/pkg/redis"
	"github.com/sangkips/posbilling/pkg/utils"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logg := logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})
	bootCtx := context.Background()

	if err := cfg.Validate(); err != nil {
		logg.Error(bootCtx, "invalid configuration", err)
		os.Exit(1)
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(bootCtx, "server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := request.RegisterValidators(); err != nil {
		return err
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close(db))
	}()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := database.SeedDefaultData(bootCtx, db, cfg, logg); err != nil {
		logg.Error(bootCtx, "failed to seed default data", err)
	}

	healthChecks := map[string]routes.Pinger{
		"database": routes.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}

	// Redis only coordinates dispatchers across replicas; a single instance runs without it
	var lock worker.Lock = worker.NoopLock{}
	redisCfg := pkgredis.Config{
		URL:       cfg.Redis.URL,
		Address:   cfg.Redis.Address,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		Namespace: cfg.Redis.Namespace,
	}
	if redisCfg.Enabled() {
		redisClient, redisErr := pkgredis.New(bootCtx, redisCfg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisLock, lockErr := worker.NewRedisLock(redisClient, redisClient.Key("lock", "invoice-dispatcher"), cfg.Notifier.LockTTL)
		if lockErr != nil {
			return lockErr
		}
		lock = redisLock
		healthChecks["redis"] = redisClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	billingMetrics := metrics.NewBillingMetrics(registry)

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	denominationRepo := repository.NewDenominationRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	transactor := repository.NewTransactor(db)

	emailCfg := email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	}
	var sender email.Sender = email.NullSender{}
	if emailCfg.Enabled() {
		sender = email.NewSMTPSender(emailCfg)
	} else {
		logg.Warn(bootCtx, "SMTP host not configured, invoices will not be emailed")
	}

	dispatcher, err := worker.NewInvoiceDispatcher(worker.DispatcherParams{
		Notifications: notificationRepo,
		Purchases:     purchaseRepo,
		Idempotency:   idempotencyRepo,
		Sender:        sender,
		Lock:          lock,
		Logger:        logg,
		Metrics:       billingMetrics,
		ShopName:      cfg.Shop.Name,
		PollInterval:  cfg.Notifier.PollInterval,
		BatchSize:     cfg.Notifier.BatchSize,
		MaxAttempts:   cfg.Notifier.MaxAttempts,
		BaseBackoff:   cfg.Notifier.BaseBackoff,
		MaxBackoff:    cfg.Notifier.MaxBackoff,
		SendRetries:   cfg.Notifier.SendRetries,
	})
	if err != nil {
		return err
	}
	var waker service.InvoiceWaker
	if cfg.Notifier.Enabled {
		waker = dispatcher
	}

	printerCfg := printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
		Width:   cfg.Printer.Width,
	}
	thermalPrinter, err := printer.New(printerCfg)
	if err != nil {
		logg.Error(bootCtx, "failed to initialize printer, receipts will not be printed", err)
		thermalPrinter = printer.NullPrinter{}
	}
	defer func() {
		err = multierr.Append(err, thermalPrinter.Close())
	}()
	receiptHeader := entity.ReceiptHeader{
		StoreName: cfg.Shop.Name,
		Address:   cfg.Shop.Address,
		Phone:     cfg.Shop.Phone,
		TaxID:     cfg.Shop.TaxID,
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo)
	tillService := service.NewTillService(denominationRepo, logg)
	billingService := service.NewBillingService(productRepo, denominationRepo, transactor, waker, billingMetrics, logg)
	purchaseService := service.NewPurchaseService(purchaseRepo, notificationRepo, waker)
	printerService := service.NewPrinterService(thermalPrinter, purchaseRepo, receiptHeader, printerCfg, logg)
	dashboardService := service.NewDashboardService(purchaseRepo, denominationRepo)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Product:   handler.NewProductHandler(productService),
		Till:      handler.NewTillHandler(tillService),
		Billing:   handler.NewBillingHandler(billingService),
		Purchase:  handler.NewPurchaseHandler(purchaseService),
		Printer:   handler.NewPrinterHandler(printerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Duration)*time.Second))
	defer rateLimiter.Close()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          logg,
		Gatherer:        registry,
		HealthChecks:    healthChecks,
		RateLimiter:     rateLimiter,
	})

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"port": cfg.App.Port,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logg.Info(groupCtx, "starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Notifier.Enabled {
		group.Go(func() error {
			logg.Info(groupCtx, "starting invoice dispatcher")
			return dispatcher.Run(groupCtx)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logg.Info(ctx, "server shut down gracefully")
	return nil
}
