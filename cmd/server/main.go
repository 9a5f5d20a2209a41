package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/allocator"
	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/database"
	"github.com/yasiru/rail-booking/internal/handler"
	"github.com/yasiru/rail-booking/internal/queue"
	"github.com/yasiru/rail-booking/internal/repository"
	"github.com/yasiru/rail-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the browse cache and rate limiter
	// degrade to pass-through middleware.
	rdb := config.NewRedisClient()

	trains := repository.NewTrainRepo(db)
	stations := repository.NewStationRepo(db)
	routes := repository.NewRouteRepo(db)
	schedules := repository.NewScheduleRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)

	locks := allocator.NewScheduleLocks(cfg.AllocLockWait)
	alloc := allocator.New(schedules, bookings, locks,
		allocator.WithRetries(cfg.AllocLockRetries),
	)

	authH := handler.NewAuthHandler(cfg, users)
	publicH := handler.NewPublicHandler(trains, stations, routes, schedules)
	bookingH := handler.NewBookingHandler(alloc, bookings)
	adminH := handler.NewAdminHandler(cfg, trains, stations, routes, schedules, bookings, users, alloc)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)
	router.RegisterPassenger(e, bookingH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Background consumer writes booking events to logs/booking.log and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
