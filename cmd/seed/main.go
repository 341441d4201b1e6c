// Command seed populates a development database with a venue, one hall
// with its full seat grid, a handful of movies and a week of screenings.
// It is idempotent only in the trivial sense: running it twice creates
// duplicate rows, so point it at a fresh database.
package main

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/ticketing-engine/internal/config"
	"github.com/iliyamo/ticketing-engine/internal/database"
	"github.com/iliyamo/ticketing-engine/internal/model"
	"github.com/iliyamo/ticketing-engine/internal/repository"
)

func main() {
	cfg := config.Load()
	db, err := database.Open(&cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	venues := repository.NewVenueRepo(db)
	halls := repository.NewHallRepo(db)
	seats := repository.NewSeatRepo(db)
	movies := repository.NewMovieRepo(db)
	screenings := repository.NewScreeningRepo(db)

	venue := &model.Venue{Name: "Grand Cinema", Address: "1 Market Street", City: "Springfield"}
	if err := venues.Create(ctx, venue); err != nil {
		log.Fatalf("venue: %v", err)
	}

	hall := &model.Hall{
		VenueID:     venue.ID,
		Name:        "Screen 1",
		HallType:    model.HallRegular,
		TotalRows:   8,
		SeatsPerRow: 12,
	}
	tx, err := halls.DB().BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	if err := halls.CreateTx(ctx, tx, hall); err != nil {
		tx.Rollback()
		log.Fatalf("hall: %v", err)
	}
	var grid []model.Seat
	for row := uint32(0); row < hall.TotalRows; row++ {
		label := string(rune('A' + row))
		seatType := model.SeatRegular
		// The back two rows are premium.
		if label == "G" || label == "H" {
			seatType = model.SeatPremium
		}
		for n := uint32(1); n <= hall.SeatsPerRow; n++ {
			grid = append(grid, model.Seat{HallID: hall.ID, Row: label, Number: n, SeatType: seatType, IsActive: true})
		}
	}
	if err := seats.CreateBulkTx(ctx, tx, grid); err != nil {
		tx.Rollback()
		log.Fatalf("seats: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("created hall %d with %d seats", hall.ID, len(grid))

	films := []model.Movie{
		{Title: "The Long Night", Description: "A detective returns to her hometown.", DurationMinutes: 128, Genre: "Thriller", Rating: model.RatingParental, ReleaseDate: date(2026, 7, 10), IsActive: true},
		{Title: "Starlight Express", Description: "An animated space adventure.", DurationMinutes: 96, Genre: "Animation", Rating: model.RatingUniversal, ReleaseDate: date(2026, 8, 2), IsActive: true},
		{Title: "Iron Harvest", Description: "A war drama set in 1920.", DurationMinutes: 143, Genre: "Drama", Rating: model.RatingAdult, ReleaseDate: date(2026, 6, 19), IsActive: true},
	}
	for i := range films {
		if err := movies.Create(ctx, &films[i]); err != nil {
			log.Fatalf("movie %q: %v", films[i].Title, err)
		}
	}

	// Three showtimes a day for the next seven days, rotating films.
	showtimes := []int{14, 18, 21}
	base := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	count := 0
	for day := 0; day < 7; day++ {
		for slot, hour := range showtimes {
			m := films[(day+slot)%len(films)]
			starts := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			ends := starts.Add(time.Duration(m.DurationMinutes)*time.Minute + 15*time.Minute)
			price := uint32(1200)
			if hour >= 18 {
				price = 1500
			}
			s := &model.Screening{MovieID: m.ID, HallID: hall.ID, StartsAt: starts, EndsAt: ends, PriceCents: price, IsActive: true}
			if err := screenings.Create(ctx, s); err != nil {
				log.Fatalf("screening: %v", err)
			}
			count++
		}
	}
	log.Printf("created %d screenings", count)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
