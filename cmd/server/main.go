package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/auth"
	"github.com/upkeeply/maintenance-tracker/internal/config"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/email"
	"github.com/upkeeply/maintenance-tracker/internal/handlers"
	"github.com/upkeeply/maintenance-tracker/internal/inventory"
	"github.com/upkeeply/maintenance-tracker/internal/maintenance"
	"github.com/upkeeply/maintenance-tracker/internal/middleware"
	"github.com/upkeeply/maintenance-tracker/internal/notify"
	"github.com/upkeeply/maintenance-tracker/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("error disconnecting from MongoDB")
		}
	}()
	logger.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx, database); err != nil {
		cancelIndex()
		logger.WithError(err).Fatal("failed to create indexes")
	}
	cancelIndex()
	collections := db.NewCollections(database)

	var publisher notify.Publisher
	if cfg.MQTTBroker != "" {
		mqttPub, err := notify.NewMQTTPublisher(cfg.MQTTBroker, "maintenance-tracker", cfg.MQTTTopic, logger)
		if err != nil {
			logger.WithError(err).Warn("MQTT broker unreachable, bus publishing disabled")
		} else {
			publisher = mqttPub
			defer mqttPub.Close()
		}
	}

	notifier := notify.NewNotifier(collections.Notifications, publisher, logger)
	mailer := email.NewMailer(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	deductor := inventory.NewDeductor(collections.Inventory, logger)
	generator := scheduler.NewGenerator(collections.Maintenance, collections.Users, notifier, logger)
	scanner := scheduler.NewScanner(
		collections.Maintenance,
		collections.Inventory,
		collections.Notifications,
		collections.Users,
		notifier,
		mailer,
		logger,
	)
	jobs := scheduler.New(generator, scanner, cfg.SchedulerInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go jobs.Start(ctx)

	authService, err := auth.NewService()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize auth service")
	}
	authMW := middleware.NewAuthMiddleware(authService)
	completionService := maintenance.NewService(collections.Maintenance, deductor, generator, logger)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, collections.Users, logger),
		Maintenance:   handlers.NewMaintenanceHandler(collections.Maintenance, completionService, logger),
		Inventory:     handlers.NewInventoryHandler(collections.Inventory, logger),
		Machines:      handlers.NewMachineHandler(collections.Machines, logger),
		Sites:         handlers.NewSiteHandler(collections.Sites, logger),
		Requisitions:  handlers.NewRequisitionHandler(collections.Requisitions, collections.Counters, notifier, logger),
		Notifications: handlers.NewNotificationHandler(collections.Notifications, logger),
	}, authMW)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.RequestLogger(logger)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	jobs.Stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
