package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-board-api/auth"
	"job-board-api/config"
	"job-board-api/middleware"
	"job-board-api/monitor"
	"job-board-api/realtime"
	"job-board-api/routes"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logging := config.InitLogging()
	defer logging.Close()

	settings, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	config.ReloadMailerConfig()

	// Initialize database
	config.InitDB(settings)
	if err := config.Migrate(config.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	tokens, err := auth.NewTokenManager(settings.JWT.Secret, settings.JWT.TTL())
	if err != nil {
		log.Fatal("Failed to configure JWT:", err)
	}

	hub := realtime.NewHub(settings.CORS.AllowedOrigins)
	notifications := services.NewNotificationService(config.DB)
	users := services.NewUserService(config.DB, tokens)

	dispatcherOpts := []services.DispatcherOption{
		services.WithPublisher(hub),
		services.WithStrategy(settings.Outbox.Retry),
		services.WithBatchSize(settings.Outbox.BatchSize),
	}
	if config.MailerConfigured() {
		dispatcherOpts = append(dispatcherOpts, services.WithMailer(services.MailerFunc(config.SendMail)))
	} else {
		log.Println("SMTP not configured, notification emails disabled")
	}
	dispatcher := services.NewOutboxDispatcher(config.DB, notifications, dispatcherOpts...)

	// Set Gin mode
	if settings.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logging.Writer

	// Create Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(settings.CORS.AllowedOrigins))

	monitor.Register(router, monitor.Options{
		Token:   settings.Monitor.Token,
		Outbox:  dispatcher,
		Clients: hub,
	})

	// Setup routes
	routes.SetupRoutes(router, routes.Deps{
		Tokens:        tokens,
		Users:         users,
		Jobs:          services.NewJobService(config.DB),
		Applications:  services.NewApplicationService(config.DB),
		Messages:      services.NewMessageService(config.DB),
		Notifications: notifications,
		Hub:           hub,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go dispatcher.Run(ctx, settings.Outbox.Interval)

	srv := &http.Server{
		Addr:              ":" + settings.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (driver=%s, env=%s)", settings.Server.Port, settings.Database.Driver, settings.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if sqlDB, err := config.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			zlog.Logger.Printf("failed to close DB: %v", err)
		}
	}
}
