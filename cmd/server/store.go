package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/config"
	"github.com/Nixie-Tech-LLC/beacon/internal/db"
	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
)

// InitStore connects to PostgreSQL, applies migrations and starts relaying
// change notifications. Development without DATABASE_URL gets an in-memory store.
func InitStore(ctx context.Context, cfg *config.Config, changes *feed.Hub) db.Store {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory store; data is lost on restart")
		return db.NewMemoryStore(changes)
	}

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	if err := db.ListenForChanges(ctx, cfg.DatabaseURL, changes); err != nil {
		// the resolver timer still picks changes up, just later
		log.Error().Err(err).Msg("change notifications unavailable")
	}

	return db.NewStore(db.DB)
}
