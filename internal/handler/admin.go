package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-engine/internal/model"
	"github.com/iliyamo/ticketing-engine/internal/repository"
)

// AdminHandler manages the catalog: venues, halls with their seat grids,
// movies and screenings. These routes sit behind the identity middleware
// with authentication required; authorization beyond a valid token is the
// identity provider's concern.
type AdminHandler struct {
	Venues     *repository.VenueRepo
	Halls      *repository.HallRepo
	Seats      *repository.SeatRepo
	Movies     *repository.MovieRepo
	Screenings *repository.ScreeningRepo
}

// NewAdminHandler constructs the handler. All repositories must be non-nil.
func NewAdminHandler(venues *repository.VenueRepo, halls *repository.HallRepo, seats *repository.SeatRepo, movies *repository.MovieRepo, screenings *repository.ScreeningRepo) *AdminHandler {
	if venues == nil || halls == nil || seats == nil || movies == nil || screenings == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Venues: venues, Halls: halls, Seats: seats, Movies: movies, Screenings: screenings}
}

// CreateVenue handles POST /v1/admin/venues.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and city are required"})
	}
	v := &model.Venue{Name: body.Name, Address: body.Address, City: body.City}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": v.ID, "name": v.Name, "city": v.City})
}

// premiumRows marks row labels whose seats are created as PREMIUM when no
// per-row override is supplied.
var premiumRows = map[string]bool{"G": true, "H": true}

// CreateHall handles POST /v1/admin/venues/:id/halls. It creates the hall
// and its full seat grid in one transaction so a hall can never exist with
// a partial roster. Row labels run A, B, C, ... per total_rows.
func (h *AdminHandler) CreateHall(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || venueID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var body struct {
		Name        string `json:"name"`
		HallType    string `json:"hall_type"`
		TotalRows   uint32 `json:"total_rows"`
		SeatsPerRow uint32 `json:"seats_per_row"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" || body.TotalRows == 0 || body.TotalRows > 26 || body.SeatsPerRow == 0 || body.SeatsPerRow > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, total_rows (1-26) and seats_per_row (1-100) are required"})
	}
	hallType := model.HallType(body.HallType)
	if body.HallType == "" {
		hallType = model.HallRegular
	}
	if !hallType.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown hall_type"})
	}
	ctx := c.Request().Context()
	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	hall := &model.Hall{
		VenueID:     venueID,
		Name:        body.Name,
		HallType:    hallType,
		TotalRows:   body.TotalRows,
		SeatsPerRow: body.SeatsPerRow,
	}
	seats := make([]model.Seat, 0, int(body.TotalRows)*int(body.SeatsPerRow))

	tx, err := h.Halls.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Halls.CreateTx(ctx, tx, hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	for row := uint32(0); row < body.TotalRows; row++ {
		label := string(rune('A' + row))
		seatType := model.SeatRegular
		if premiumRows[label] {
			seatType = model.SeatPremium
		}
		for n := uint32(1); n <= body.SeatsPerRow; n++ {
			seats = append(seats, model.Seat{
				HallID:   hall.ID,
				Row:      label,
				Number:   n,
				SeatType: seatType,
				IsActive: true,
			})
		}
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"id":            hall.ID,
		"venue_id":      hall.VenueID,
		"name":          hall.Name,
		"hall_type":     hall.HallType,
		"total_rows":    hall.TotalRows,
		"seats_per_row": hall.SeatsPerRow,
		"seat_count":    len(seats),
	})
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var body struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		DurationMinutes uint32 `json:"duration_minutes"`
		Genre           string `json:"genre"`
		Rating          string `json:"rating"`
		PosterURL       string `json:"poster_url"`
		ReleaseDate     string `json:"release_date"` // YYYY-MM-DD
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Title == "" || body.DurationMinutes == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and duration_minutes are required"})
	}
	rating := model.MovieRating(body.Rating)
	if body.Rating == "" {
		rating = model.RatingParental
	}
	if !rating.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown rating"})
	}
	released, err := time.Parse("2006-01-02", body.ReleaseDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_date must be YYYY-MM-DD"})
	}
	m := &model.Movie{
		Title:           body.Title,
		Description:     body.Description,
		DurationMinutes: body.DurationMinutes,
		Genre:           body.Genre,
		Rating:          rating,
		PosterURL:       body.PosterURL,
		ReleaseDate:     released,
		IsActive:        true,
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID, "title": m.Title, "rating": m.Rating})
}

// CreateScreening handles POST /v1/admin/screenings. The end time is
// derived from the movie runtime plus a cleanup buffer, and the hall must
// be free for the whole derived window.
func (h *AdminHandler) CreateScreening(c echo.Context) error {
	var body struct {
		MovieID    uint64    `json:"movie_id"`
		HallID     uint64    `json:"hall_id"`
		StartsAt   time.Time `json:"starts_at"`
		PriceCents uint32    `json:"price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MovieID == 0 || body.HallID == 0 || body.StartsAt.IsZero() || body.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, hall_id, starts_at and price_cents are required"})
	}
	ctx := c.Request().Context()

	movie, err := h.Movies.GetByID(ctx, body.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Halls.GetByID(ctx, body.HallID); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	starts := body.StartsAt.UTC()
	// 15 minute turnaround between screenings in the same hall.
	ends := starts.Add(time.Duration(movie.DurationMinutes)*time.Minute + 15*time.Minute)

	overlapping, err := h.Screenings.FindOverlapping(ctx, body.HallID, starts, ends)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(overlapping) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "hall is occupied during the requested window"})
	}

	s := &model.Screening{
		MovieID:    body.MovieID,
		HallID:     body.HallID,
		StartsAt:   starts,
		EndsAt:     ends,
		PriceCents: body.PriceCents,
		IsActive:   true,
	}
	if err := h.Screenings.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          s.ID,
		"movie_id":    s.MovieID,
		"hall_id":     s.HallID,
		"starts_at":   s.StartsAt,
		"ends_at":     s.EndsAt,
		"price_cents": s.PriceCents,
	})
}
