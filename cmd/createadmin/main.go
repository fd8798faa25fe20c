package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/oseikb/bookline/internal/adapters/database"
	"github.com/oseikb/bookline/internal/domain/entities"
	"github.com/oseikb/bookline/internal/infrastructure/clients/postgres"
	"github.com/oseikb/bookline/internal/infrastructure/observability"
	"github.com/oseikb/bookline/pkg/config"
	apperrors "github.com/oseikb/bookline/pkg/errors"
)

// Creates the admin account if it does not exist yet. Intended for initial
// setup and demo environments.
func main() {
	email := flag.String("email", "admin@demo.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize postgres client")
	}
	defer pgClient.Close()

	users := database.NewUserAdapter(pgClient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if existing, err := users.GetByEmail(ctx, *email); err == nil && existing != nil {
		log.Info().Str("email", *email).Msg("admin account already exists")
		return
	} else if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		log.Fatal().Err(err).Msg("failed to look up admin account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	admin := &entities.User{
		Email:        *email,
		PasswordHash: string(hash),
		Roles:        []string{entities.RoleUser, entities.RoleAdmin},
		CreatedAt:    time.Now(),
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin account")
	}

	log.Info().Str("email", *email).Int64("id", admin.ID).Msg("admin account created")
}
