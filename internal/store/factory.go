package store

import (
	"github.com/rs/zerolog/log"

	"github.com/medscanhq/medscan-api/config"
	"github.com/medscanhq/medscan-api/internal/store/postgres"
	"github.com/medscanhq/medscan-api/internal/store/sqlite"
)

const defaultSQLitePath = "medscan.db"

// New picks a backend from configuration and returns it constructed
// but not yet connected. Availability beats strictness: a postgres
// request without a connection URL, or an unknown kind, falls back to
// the embedded backend with a warning rather than failing startup.
func New(cfg config.DatabaseConfig) Store {
	path := cfg.Path
	if path == "" {
		path = defaultSQLitePath
	}

	switch cfg.Type {
	case "postgres":
		if cfg.URL == "" {
			log.Warn().Msg("DATABASE_URL not set, falling back to embedded sqlite store")
			return sqlite.New(path)
		}
		return postgres.New(cfg.URL, cfg.MaxOpenConns, cfg.MaxIdleConns)
	case "sqlite", "":
		return sqlite.New(path)
	default:
		log.Warn().Str("type", cfg.Type).Msg("unknown database type, falling back to embedded sqlite store")
		return sqlite.New(path)
	}
}
