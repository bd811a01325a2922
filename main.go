package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/set3/internal/config"
	"github.com/robalobadob/set3/internal/httpserver"
	"github.com/robalobadob/set3/internal/ledger"
	"github.com/robalobadob/set3/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := cfg.Game().Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid game configuration")
	}

	db, err := ledger.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open ledger")
	}
	defer db.Close()
	if err := ledger.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate ledger")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(cfg, mem, db)
	log.Info().Str("port", cfg.Port).
		Int("boardPositions", cfg.BoardPositions).Int("deckSize", cfg.DeckSize).
		Msg("starting set server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
