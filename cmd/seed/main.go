// Command seed fills a development database with fake users, agents and
// meetings.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
	"github.com/buddyai/buddy-server-go/internal/util"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	users := flag.Int("users", 3, "number of users")
	agents := flag.Int("agents", 2, "agents per user")
	meetings := flag.Int("meetings", 3, "meetings per agent")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.IsProduction() {
		log.Fatal().Msg("refusing to seed a production database")
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	plan := buildPlan(*seed, *users, *agents, *meetings)

	ctx := context.Background()
	for _, su := range plan {
		if err := insertUser(ctx, db, su); err != nil {
			log.Fatal().Err(err).Str("email", su.User.Email).Msg("failed to seed user")
		}
		log.Info().
			Str("email", su.User.Email).
			Str("password", su.Password).
			Int("agents", len(su.Agents)).
			Int("meetings", len(su.Meetings)).
			Msg("seeded user")
	}
}

func insertUser(ctx context.Context, db *database.DB, su seedUser) error {
	hash, err := util.HashPassword(su.Password)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		userRepo := repository.NewUserRepository(db.DB).WithTx(tx)
		accountRepo := repository.NewAccountRepository(db.DB).WithTx(tx)
		agentRepo := repository.NewAgentRepository(db.DB).WithTx(tx)
		meetingRepo := repository.NewMeetingRepository(db.DB).WithTx(tx)

		user, err := userRepo.Create(ctx, su.User)
		if err != nil {
			return err
		}
		if err := userRepo.MarkEmailVerified(ctx, user.Email); err != nil {
			return err
		}
		if _, err := accountRepo.Create(ctx, model.CreateAccountParams{
			ID:           uuid.NewString(),
			AccountID:    user.ID,
			ProviderID:   model.ProviderCredential,
			UserID:       user.ID,
			PasswordHash: &hash,
		}); err != nil {
			return err
		}
		for _, agent := range su.Agents {
			if _, err := agentRepo.Create(ctx, agent); err != nil {
				return err
			}
		}
		for _, meeting := range su.Meetings {
			if _, err := meetingRepo.Create(ctx, meeting); err != nil {
				return err
			}
		}
		return nil
	})
}
