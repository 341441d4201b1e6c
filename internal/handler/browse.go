package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-engine/internal/clock"
	"github.com/iliyamo/ticketing-engine/internal/repository"
)

// BrowseHandler serves the unauthenticated catalog listing.
type BrowseHandler struct {
	Screenings *repository.ScreeningRepo
	Clock      clock.Clock
}

// listedScreening is one row of the public screenings listing.
type listedScreening struct {
	ID         uint64    `json:"id"`
	MovieTitle string    `json:"movie_title"`
	PosterURL  string    `json:"poster_url,omitempty"`
	HallName   string    `json:"hall_name"`
	VenueName  string    `json:"venue_name"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
}

// ListScreenings handles GET /v1/screenings. It returns active upcoming
// screenings ordered by start time.
func (h *BrowseHandler) ListScreenings(c echo.Context) error {
	rows, err := h.Screenings.ListUpcoming(c.Request().Context(), h.Clock.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]listedScreening, 0, len(rows))
	for _, r := range rows {
		out = append(out, listedScreening{
			ID:         r.ScreeningID,
			MovieTitle: r.MovieTitle,
			PosterURL:  r.PosterURL,
			HallName:   r.HallName,
			VenueName:  r.VenueName,
			StartsAt:   r.StartsAt,
			PriceCents: r.PriceCents,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"screenings": out})
}
