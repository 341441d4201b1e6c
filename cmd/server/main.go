package main

import (
	"database/sql"
	"log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticketing-engine/internal/clock"
	"github.com/iliyamo/ticketing-engine/internal/config"
	"github.com/iliyamo/ticketing-engine/internal/database"
	"github.com/iliyamo/ticketing-engine/internal/handler"
	"github.com/iliyamo/ticketing-engine/internal/queue"
	"github.com/iliyamo/ticketing-engine/internal/repository"
	"github.com/iliyamo/ticketing-engine/internal/router"
	"github.com/iliyamo/ticketing-engine/internal/service"
	"github.com/iliyamo/ticketing-engine/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(&cfg)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	bookings := newBookingStore(cfg, db, logger)

	venues := repository.NewVenueRepo(db)
	halls := repository.NewHallRepo(db)
	seats := repository.NewSeatRepo(db)
	movies := repository.NewMovieRepo(db)
	screenings := repository.NewScreeningRepo(db)

	catalog := service.NewCatalog(screenings, movies, halls, venues, seats)
	clk := clock.New()

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		opts = append(opts, service.WithEvents(queue.NewPublisher(cfg.AMQPURL, logger)))
		go queue.StartSeatEventConsumer(cfg.AMQPURL, logger)
	} else {
		logger.Info("seat event publishing disabled, no RABBITMQ_URL")
	}
	svc := service.NewReservationService(bookings, catalog, clk, opts...)

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unreachable, rate limiting and caching disabled")
	}

	h := router.Handlers{
		Health:      &handler.HealthHandler{DB: db},
		Browse:      &handler.BrowseHandler{Screenings: screenings, Clock: clk},
		Reservation: handler.NewReservationHandler(svc, cfg.HoldTTL),
		Admin:       handler.NewAdminHandler(venues, halls, seats, movies, screenings),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, logger, cfg.JWTSecret, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig())

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

// newBookingStore selects the booking store backend. The in-memory store
// exists for local development and tests; it shares no state between
// processes, so never run it with more than one replica.
func newBookingStore(cfg config.Config, db *sql.DB, logger *zap.Logger) store.Store {
	if cfg.Store == "memory" {
		logger.Warn("using in-memory booking store, holds will not survive restarts")
		return store.NewMemory()
	}
	return store.NewMySQL(db)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
