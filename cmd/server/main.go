package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/rassvet/banquet-booking/internal/config"
	"github.com/rassvet/banquet-booking/internal/database"
	"github.com/rassvet/banquet-booking/internal/handler"
	"github.com/rassvet/banquet-booking/internal/middleware"
	"github.com/rassvet/banquet-booking/internal/payment"
	"github.com/rassvet/banquet-booking/internal/queue"
	"github.com/rassvet/banquet-booking/internal/repository"
	"github.com/rassvet/banquet-booking/internal/router"
	queue_publisher "github.com/rassvet/banquet-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.EnsureSchema(ctx, db)
	cancel()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	bookings := repository.NewBookingRepo(db)
	slots := repository.NewSlotRepo(db)

	bookingHandler := handler.NewBookingHandler(bookings, slots)
	bookingHandler.Publish = func(ctx context.Context, ev queue.BookingCreatedEvent) {
		_ = queue_publisher.PublishBookingCreated(ctx, ev)
	}

	gateway := payment.NewClient(cfg.YooKassaShopID, cfg.YooKassaSecretKey, cfg.YooKassaAPIURL)
	paymentHandler := handler.NewPaymentHandler(bookings, gateway)
	paymentHandler.Publish = func(ctx context.Context, ev queue.PaymentStatusEvent) {
		_ = queue_publisher.PublishPaymentStatus(ctx, ev)
	}

	adminHandler := handler.NewAdminHandler(cfg, bookings)

	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterBooking(e, bookingHandler, limiter, cache)
	router.RegisterPayment(e, paymentHandler, limiter)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
