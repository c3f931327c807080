package cmd

import (
	"fmt"
	"log/slog"

	"github.com/veilhq/veil/db"
	"github.com/veilhq/veil/internal/config"
)

// runMigrate applies the PostgreSQL schema migrations. The SQLite backend
// initializes its own schema on open and does not use migrations.
func runMigrate(cfg *config.Config, logger *slog.Logger) error {
	if cfg.StorageBackend != config.StoragePostgres {
		return fmt.Errorf("migrate: storage backend is %q, migrations only apply to %q",
			cfg.StorageBackend, config.StoragePostgres)
	}
	return db.Migrate(cfg.PostgresURL(), logger)
}
