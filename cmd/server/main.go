package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-stockroom/config"
	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/internal/notification"
	"github.com/fekuna/omnipos-stockroom/pkg/broker"
	"github.com/fekuna/omnipos-stockroom/pkg/cache"
	"github.com/fekuna/omnipos-stockroom/pkg/database"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/metrics"
	"github.com/fekuna/omnipos-stockroom/pkg/middleware"

	alertH "github.com/fekuna/omnipos-stockroom/internal/alert/handler"
	alertRepoPkg "github.com/fekuna/omnipos-stockroom/internal/alert/repository"
	alertUCPkg "github.com/fekuna/omnipos-stockroom/internal/alert/usecase"

	authH "github.com/fekuna/omnipos-stockroom/internal/auth/handler"
	authRepoPkg "github.com/fekuna/omnipos-stockroom/internal/auth/repository"
	authUCPkg "github.com/fekuna/omnipos-stockroom/internal/auth/usecase"

	invH "github.com/fekuna/omnipos-stockroom/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-stockroom/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-stockroom/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-stockroom/internal/inventory/usecase"

	settingH "github.com/fekuna/omnipos-stockroom/internal/setting/handler"
	settingRepoPkg "github.com/fekuna/omnipos-stockroom/internal/setting/repository"
	settingUCPkg "github.com/fekuna/omnipos-stockroom/internal/setting/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(cfg.ZapConfig())
	defer appLogger.Sync()

	// 3. Connect to Database and apply schema
	db, err := database.Open(cfg.DatabaseConfig())
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if err := database.Migrate(context.Background(), db); err != nil {
		appLogger.Fatal("Could not apply schema", zap.Error(err))
	}

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	alertRepo := alertRepoPkg.NewPGRepository(db)
	settingRepo := settingRepoPkg.NewPGRepository(db)
	userRepo := authRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis (optional settings cache)
	var settingsCache settingUCPkg.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, settings cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			settingsCache = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 6. Metrics and notification pipeline
	m := metrics.New("stockroom")

	mailer := notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, appLogger)
	if !mailer.Configured() {
		appLogger.Warn("SMTP is not configured, alert e-mails will be skipped")
	}
	dispatcher := notification.NewDispatcher(mailer, notification.Config{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout,
	}, m, appLogger)
	defer dispatcher.Close()

	// 7. Initialize UseCases
	settingUC := settingUCPkg.NewSettingUseCase(settingRepo, settingsCache, cfg.Redis.TTL, appLogger)
	alertUC := alertUCPkg.NewAlertUseCase(alertRepo, invRepo, settingUC, dispatcher, m, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, alertUC, settingUC, m, appLogger)
	authUC := authUCPkg.NewAuthUseCase(userRepo, 0, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Kafka intake (optional)
	if cfg.Kafka.Enabled {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

		invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
		go invListener.Start(ctx)
	}

	// 9. HTTP router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	sessions := auth.NewSessionManager(cfg.Session.SecretKey, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure)

	router := gin.New()
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.RequestLogger(appLogger, m))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api/v1")
	authH.NewAuthHandler(authUC, sessions, appLogger).RegisterRoutes(api)

	protected := api.Group("", auth.RequireSession(sessions))
	invH.NewInventoryHandler(invUC, appLogger).RegisterRoutes(protected)
	alertH.NewAlertHandler(alertUC, appLogger).RegisterRoutes(protected)
	settingH.NewSettingHandler(settingUC, appLogger).RegisterRoutes(protected)

	// 10. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
