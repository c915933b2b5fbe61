package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultme/config"
	"consultme/cron"
	"consultme/database"
	bookingRepo "consultme/database/repository/booking"
	notificationRepo "consultme/database/repository/notification"
	userRepoPkg "consultme/database/repository/user"
	"consultme/handlers"
	"consultme/middleware"
	"consultme/routes"
	"consultme/services/booking"
	"consultme/services/notification"
	"consultme/services/payment"
	"consultme/services/tasks"
	"consultme/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "consultme"

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	shutdownTelemetry := utils.SetupTelemetry(serviceName)

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	db := database.Database()

	// repositories.
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		logger.Fatal("main: failed to initialize booking repository", zap.Error(err))
	}
	users := userRepoPkg.NewMongoUserRepo(db)
	inbox := notificationRepo.NewMongoNotificationRepo(db)

	// notifications: in-app always, push and event stream when configured.
	notifier := &notification.DefaultNotificationService{
		Repo:   inbox,
		Users:  users,
		Logger: logger.Named("notification"),
	}
	if utils.FCMClient != nil {
		notifier.Push = &notification.FCMPushSender{Client: utils.FCMClient}
	}
	var publisher *notification.KafkaEventPublisher
	if brokers := config.KafkaBrokerList(); len(brokers) > 0 {
		publisher = notification.NewKafkaEventPublisher(brokers, config.AppConfig.KafkaBookingTopic)
		notifier.Events = publisher
	}

	queue := asynq.NewClient(cron.RedisOpt())
	reminders := &tasks.AsynqReminderScheduler{Client: queue, Logger: logger.Named("reminders")}

	gateway := payment.NewStripeGateway(config.AppConfig.StripeSecretKey, payment.RedirectURLs{
		Success:           config.AppConfig.StripeSuccessURL,
		Cancel:            config.AppConfig.StripeCancelURL,
		OnboardingRefresh: config.AppConfig.StripeOnboardingRefreshURL,
		OnboardingReturn:  config.AppConfig.StripeOnboardingReturnURL,
	})

	bookingService := &booking.DefaultBookingService{
		Bookings:  bookings,
		Users:     users,
		Payments:  gateway,
		Notifier:  notifier,
		Reminders: reminders,
		Logger:    logger.Named("booking"),
		HoldTTL:   config.AppConfig.BookingHoldTTL,
		Currency:  config.AppConfig.Currency,
	}

	webhooks := &payment.WebhookProcessor{
		Parser:  &payment.EventParser{Secret: config.AppConfig.StripeWebhookSecret},
		Deduper: payment.NewRedisEventDeduper(utils.GetCacheClient()),
		Handler: bookingService,
		Logger:  logger.Named("webhook"),
	}

	worker := cron.NewWorker(bookingService, logger.Named("worker"))
	if err := worker.Start(); err != nil {
		logger.Fatal("main: failed to start background worker", zap.Error(err))
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	queueRedis := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	utils.StartHealthMonitor(monitorCtx, []*redis.Client{utils.GetCacheClient(), queueRedis}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(bookingService, notifier, webhooks, logger.Named("http"))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: otelhttp.NewHandler(router, serviceName),
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	worker.Shutdown()
	notifier.Wait()
	stopMonitor()

	if err := queue.Close(); err != nil {
		logger.Warn("main: failed to close task queue client", zap.Error(err))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("main: failed to close event publisher", zap.Error(err))
		}
	}
	_ = queueRedis.Close()
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Warn("main: failed to flush traces", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
