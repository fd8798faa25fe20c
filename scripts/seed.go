package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/oseikb/bookline/internal/adapters/database"
	"github.com/oseikb/bookline/internal/application/services"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	"github.com/oseikb/bookline/internal/infrastructure/observability"
	"github.com/oseikb/bookline/pkg/config"
)

// Seeds a demo catalog: a few providers with weekly schedules and the
// services they offer. Run with RESET_DB=true to truncate first.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	catalog := services.NewCatalogService(
		database.NewProviderAdapter(pgClient),
		database.NewServiceAdapter(pgClient),
	)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				bookings,
				providers,
				services,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	weekdays := func(start, end string) entities.WeeklySchedule {
		window := &entities.DayWindow{Start: start, End: end}
		return entities.WeeklySchedule{
			"mon": window, "tue": window, "wed": window, "thu": window, "fri": window,
		}
	}

	providers := []*entities.Provider{
		{Name: "Dr. Adaeze Okonkwo", WorkingHours: weekdays("09:00", "17:00")},
		{Name: "Dr. Tunde Bakare", WorkingHours: weekdays("08:00", "14:00")},
		{
			Name: "Lagos Wellness Clinic",
			WorkingHours: entities.WeeklySchedule{
				"mon": {Start: "10:00", End: "18:00"},
				"wed": {Start: "10:00", End: "18:00"},
				"fri": {Start: "10:00", End: "16:00"},
				"sat": {Start: "09:00", End: "12:00"},
			},
		},
	}

	for _, p := range providers {
		if err := catalog.CreateProvider(ctx, p); err != nil {
			log.Error().Err(err).Str("name", p.Name).Msg("failed to create provider")
			continue
		}
		log.Info().Int64("id", p.ID).Str("name", p.Name).Msg("provider created")
	}

	catalogServices := []*entities.Service{
		{Name: "General Consultation", DurationMinutes: 30},
		{Name: "Follow-up Visit", DurationMinutes: 30},
		{Name: "Dental Cleaning", DurationMinutes: 30},
		{Name: "Physiotherapy Session", DurationMinutes: 30},
	}

	for _, s := range catalogServices {
		if err := catalog.CreateService(ctx, s); err != nil {
			log.Error().Err(err).Str("name", s.Name).Msg("failed to create service")
			continue
		}
		log.Info().Int64("id", s.ID).Str("name", s.Name).Msg("service created")
	}

	log.Info().Msg("seeding complete")
}
