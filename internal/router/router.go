// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/ticketing-engine/internal/config"
	"github.com/iliyamo/ticketing-engine/internal/handler"
	"github.com/iliyamo/ticketing-engine/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health      *handler.HealthHandler
	Browse      *handler.BrowseHandler
	Reservation *handler.ReservationHandler
	Admin       *handler.AdminHandler
}

// Register mounts all routes. The response cache covers the public
// listing only: the seat map must always reflect the latest committed
// holds, and the reservation routes are mutations.
func Register(e *echo.Echo, h Handlers, log *zap.Logger, jwtSecret string, rdb *redis.Client, rl config.RateLimitConfig, cc config.CacheConfig) {
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	e.GET("/healthz", h.Health.Healthz)

	v1 := e.Group("/v1", middleware.Identity(jwtSecret))

	v1.GET("/screenings", h.Browse.ListScreenings, middleware.Cache(cc, rdb))
	v1.GET("/screenings/:id/seat-map", h.Reservation.SeatMap)

	limited := v1.Group("", middleware.RateLimit(rl, rdb))
	limited.POST("/screenings/:id/seats/:seat_id/hold", h.Reservation.Hold)
	limited.DELETE("/screenings/:id/seats/:seat_id/hold", h.Reservation.Release)
	limited.POST("/screenings/:id/seats/:seat_id/confirm", h.Reservation.Confirm)

	admin := v1.Group("/admin", middleware.RequireAuth())
	admin.POST("/venues", h.Admin.CreateVenue)
	admin.POST("/venues/:id/halls", h.Admin.CreateHall)
	admin.POST("/movies", h.Admin.CreateMovie)
	admin.POST("/screenings", h.Admin.CreateScreening)
}
