package cmd

import (
	"log/slog"
	"strings"

	"github.com/daryako/cascade/pkg/persistence"
	"github.com/daryako/cascade/pkg/persistence/file"
	"github.com/daryako/cascade/pkg/persistence/redis"
)

// NewPersistence builds the persistence backend selected by the database URL
// scheme: redis:// for Redis, anything else (file://, a bare path) for the
// file store.
func NewPersistence(databaseURL string, logger *slog.Logger) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "redis":
		return redis.NewPersistence(databaseURL, logger)
	default:
		return file.NewPersistence(databaseURL, logger)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
