package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/arahumroh/backend/internal/application/ledger"
	notificationapp "github.com/arahumroh/backend/internal/application/notification"
	paymentapp "github.com/arahumroh/backend/internal/application/payment"
	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/arahumroh/backend/internal/infrastructure/auth"
	"github.com/arahumroh/backend/internal/infrastructure/cache"
	"github.com/arahumroh/backend/internal/infrastructure/config"
	"github.com/arahumroh/backend/internal/infrastructure/event"
	"github.com/arahumroh/backend/internal/infrastructure/logger"
	paymentinfra "github.com/arahumroh/backend/internal/infrastructure/payment"
	"github.com/arahumroh/backend/internal/infrastructure/persistence"
	"github.com/arahumroh/backend/internal/infrastructure/scheduler"
	"github.com/arahumroh/backend/internal/infrastructure/storage"
	"github.com/arahumroh/backend/internal/infrastructure/telemetry"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/arahumroh/backend/internal/interfaces/http/handler"
	"github.com/arahumroh/backend/internal/interfaces/http/middleware"
	"github.com/arahumroh/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/arahumroh/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Arah Umroh Payment API
//	@version		1.0
//	@description	Midtrans payments, credit ledger and in-app notifications for Arah Umroh

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// slowQueryThreshold is the duration above which gorm queries are logged as slow
const slowQueryThreshold = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Arah Umroh payment backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}

	metrics := telemetry.NewMetrics()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metric export", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	if meterProvider.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get database handle", zap.Error(err))
		}
		poolMetrics, err := telemetry.RegisterDBPoolMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName), sqlDB)
		if err != nil {
			log.Fatal("Failed to register pool metrics", zap.Error(err))
		}
		defer func() { _ = poolMetrics.Unregister() }()
	}

	// Repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Event handlers run once per event id. Production refuses to start
	// without Redis so that replicas share the processed set.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
		cache.WithKeyPrefix("umroh:events:"),
	)
	idempotencyStore, err := storeFactory.CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	eventBus := event.NewInMemoryEventBus(log)
	notifier := notificationapp.NewPaymentNotifier(notificationRepo, log)
	idempotentNotifier := event.NewIdempotentHandler(notifier, idempotencyStore, log,
		event.WithHandlerMetrics(metrics))
	eventBus.Subscribe(idempotentNotifier, idempotentNotifier.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	midtrans, err := paymentinfra.NewMidtransAdapter(&paymentinfra.MidtransConfig{
		ServerKey:    cfg.Midtrans.ServerKey,
		IsProduction: cfg.Midtrans.IsProduction,
		SnapBaseURL:  cfg.Midtrans.SnapBaseURL,
		APIBaseURL:   cfg.Midtrans.APIBaseURL,
		Timeout:      cfg.Midtrans.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to configure Midtrans", zap.Error(err))
	}
	var verifier payment.NotificationVerifier
	if cfg.Midtrans.VerifySignature {
		verifier = midtrans
	} else {
		log.Warn("Midtrans notification signatures are not verified")
	}

	// Raw notification bodies are archived for dispute audit when enabled
	var archive paymentapp.NotificationArchiver
	if cfg.Archive.Enabled {
		objectStorage, err := storage.NewS3ObjectStorage(&cfg.Archive, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure notification archive", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare notification archive bucket", zap.Error(err))
		}
		archive = storage.NewNotificationArchive(objectStorage, cfg.Archive.Prefix, cfg.Archive.Timeout)
		log.Info("Notification archive enabled",
			zap.String("bucket", objectStorage.GetBucket()),
			zap.String("prefix", cfg.Archive.Prefix))
	}

	// Application services
	ledgerService := ledgerapp.NewLedgerService(ledgerRepo, log)
	initiatorService := paymentapp.NewInitiatorService(paymentapp.InitiatorServiceConfig{
		TransactionRepo: transactionRepo,
		Provider:        midtrans,
		CreditUnitPrice: valueobject.Rupiah(cfg.Credits.UnitPrice),
		Metrics:         metrics,
		Logger:          log,
	})
	transactionService := paymentapp.NewTransactionService(transactionRepo)
	webhookService := paymentapp.NewWebhookService(paymentapp.WebhookServiceConfig{
		TransactionRepo: transactionRepo,
		Ledger:          ledgerService,
		EventPublisher:  eventBus,
		Verifier:        verifier,
		Archive:         archive,
		Metrics:         metrics,
		Logger:          log,
	})
	notificationService := notificationapp.NewNotificationService(notificationRepo)

	var reconcileTrigger *scheduler.ReconcileTrigger
	if cfg.Reconciler.Enabled {
		reconciler := paymentapp.NewReconcilerService(paymentapp.ReconcilerServiceConfig{
			TransactionRepo: transactionRepo,
			Provider:        midtrans,
			Ledger:          ledgerService,
			EventPublisher:  eventBus,
			Metrics:         metrics,
			Logger:          log,
			MinAge:          cfg.Reconciler.MinAge,
			BatchSize:       cfg.Reconciler.BatchSize,
		})
		reconcileTrigger = scheduler.NewReconcileTrigger(scheduler.ReconcileTriggerConfig{
			Interval: cfg.Reconciler.Interval,
			Timeout:  cfg.Reconciler.Timeout,
		}, reconciler, metrics, log)
		if err := reconcileTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start pending reconciler", zap.Error(err))
		}
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: tracing first so every later step runs inside the
	// request span, then recovery, logging and metrics, then the HTTP policy.
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health", "/metrics"))
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(metrics.GinMiddleware())
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling("/health", "/metrics", "/swagger"))
	}
	engine.Use(middleware.Secure(cfg.App.IsProduction()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, func(c *gin.Context) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRequestTooLarge, "Request body too large", logger.GetGinRequestID(c)))
	}))

	healthChecks := []handler.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if pinger, ok := idempotencyStore.(interface{ Ping(context.Context) error }); ok {
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: pinger.Ping})
	}
	engine.GET("/health", handler.NewHealthHandler(healthChecks...).Health)
	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.HTTP.SwaggerEnabled,
			AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	routeCfg := router.Config{
		Auth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: auth.NewJWTService(cfg.JWT),
			Logger:     log,
		}),
		WebhookMaxBodySize: cfg.HTTP.WebhookMaxBodySize,
	}
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		routeCfg.RateLimit = middleware.RateLimit(rateLimiter)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		Payment:      handler.NewPaymentHandler(initiatorService, transactionService),
		Webhook:      handler.NewWebhookHandler(webhookService),
		Credit:       handler.NewCreditHandler(ledgerService),
		Notification: handler.NewInboxHandler(notificationService),
	}, routeCfg)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if reconcileTrigger != nil {
		if err := reconcileTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping pending reconciler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
