package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Julius14h/FlyNext/config"
	"github.com/Julius14h/FlyNext/internal/afs"
	"github.com/Julius14h/FlyNext/internal/bootstrap"
	"github.com/Julius14h/FlyNext/internal/cache"
	"github.com/Julius14h/FlyNext/internal/kafka"
	"github.com/Julius14h/FlyNext/internal/repository"
	"github.com/Julius14h/FlyNext/internal/service/booking"
	"github.com/Julius14h/FlyNext/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	afsClient := afs.NewClient(afs.Config{
		BaseURL: cfg.AFS.BaseURL,
		APIKey:  cfg.AFS.APIKey,
		Timeout: time.Duration(cfg.AFS.TimeoutSeconds) * time.Second,
	})

	bookingRepo := repository.NewBookingRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	bookingService := booking.NewBookingService(
		bookingRepo,
		availabilityRepo,
		notificationRepo,
		afsClient,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	)
	flightService := flights.NewFlightService(afsClient, redisCache)

	if err := bootstrap.Run(ctx, cfg, bookingService, flightService, notificationRepo); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
