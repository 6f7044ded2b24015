package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"

	"conferencehub/config"
	"conferencehub/internal/database/migrations"
	"conferencehub/internal/domain"
	"conferencehub/internal/repository/postgres"
)

// Seeds ticket types, locations, and a two-day activity schedule.
// Idempotent: types and locations upsert by name, activities are only
// created when their day is empty.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ticketRepo := postgres.NewTicketRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	now := time.Now().UTC()

	ticketTypes := []*domain.TicketType{
		{Name: "Online", Price: 10000, IsRemote: true, IncludesHotel: false},
		{Name: "Presencial", Price: 25000, IsRemote: false, IncludesHotel: false},
		{Name: "Presencial + Hotel", Price: 60000, IsRemote: false, IncludesHotel: true},
	}
	for _, tt := range ticketTypes {
		tt.CreatedAt, tt.UpdatedAt = now, now
		if _, err := ticketRepo.CreateTypeIfAbsent(ctx, tt); err != nil {
			logger.Error("failed to seed ticket type", "name", tt.Name, "err", err)
			os.Exit(1)
		}
	}
	logger.Info("seeded ticket types", "count", len(ticketTypes))

	locationNames := []string{"Auditório Principal", "Auditório Lateral", "Sala de Workshop"}
	locations := make(map[string]*domain.ActivityLocation, len(locationNames))
	for _, name := range locationNames {
		loc, err := activityRepo.CreateLocation(ctx, name)
		if err != nil {
			logger.Error("failed to seed location", "name", name, "err", err)
			os.Exit(1)
		}
		locations[name] = loc
	}
	logger.Info("seeded locations", "count", len(locations))

	firstDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7)
	days := []time.Time{firstDay, firstDay.AddDate(0, 0, 1)}
	created := 0
	for _, day := range days {
		existing, err := activityRepo.ListByDay(ctx, day)
		if err != nil {
			logger.Error("failed to list activities", "day", day.Format("2006-01-02"), "err", err)
			os.Exit(1)
		}
		if hasActivities(existing) {
			continue
		}
		for _, spec := range daySchedule(day, locations) {
			if err := activityRepo.CreateActivity(ctx, spec); err != nil {
				logger.Error("failed to seed activity", "name", spec.Name, "err", err)
				os.Exit(1)
			}
			created++
		}
	}
	logger.Info("seed complete", "activities_created", created)
}

func hasActivities(schedule []*domain.LocationSchedule) bool {
	for _, ls := range schedule {
		if len(ls.Activities) > 0 {
			return true
		}
	}
	return false
}

func daySchedule(day time.Time, locations map[string]*domain.ActivityLocation) []*domain.Activity {
	now := time.Now().UTC()
	at := func(hour int) time.Time {
		return day.Add(time.Duration(hour) * time.Hour)
	}
	return []*domain.Activity{
		domain.NewActivity(locations["Auditório Principal"].ID, "Minecraft: montando o PC ideal", day, at(9), at(10), 27, now, now),
		domain.NewActivity(locations["Auditório Principal"].ID, "LoL: montando o PC ideal", day, at(10), at(11), 30, now, now),
		domain.NewActivity(locations["Auditório Lateral"].ID, "Palestra x", day, at(9), at(11), 25, now, now),
		domain.NewActivity(locations["Sala de Workshop"].ID, "Palestra y", day, at(9), at(10), 15, now, now),
		domain.NewActivity(locations["Sala de Workshop"].ID, "Palestra z", day, at(10), at(11), 1, now, now),
	}
}
