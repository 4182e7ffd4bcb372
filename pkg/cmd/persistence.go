package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/persistence/file"
	"github.com/rolerabbit/rabbitflow/pkg/persistence/postgresql"
)

// NewPersistence builds the persistence layer from a connection URL. A
// "postgres://" URL gets the PostgreSQL layer; anything else falls back to
// file storage rooted at the URL path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgres persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
