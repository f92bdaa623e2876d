package store

import (
	"context"
	"fmt"

	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
	"github.com/pharmaeye/pharmaeye-backend/pkg/migrate"
)

// Open builds the one gateway this deployment will use, picked from
// configuration. The choice is final for the process lifetime; a backend that
// fails to open is a boot failure, never a reason to try the next one.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Gateway, error) {
	switch {
	case cfg.Storage.IsLocal():
		client, err := db.NewSQLite(ctx, cfg.Local, logg)
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		if err := autoMigrate(client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrating local store: %w", err)
		}
		return newGormStore(client, config.BackendLocal), nil

	case cfg.Storage.IsSupabase():
		client, err := db.NewPostgres(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("opening supabase store: %w", err)
		}
		// Goose owns the Postgres schema; this is a no-op outside dev.
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrating supabase store: %w", err)
		}
		return newGormStore(client, config.BackendSupabase), nil

	case cfg.Storage.IsREST():
		return newRESTStore(cfg.REST), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func autoMigrate(client *db.Client) error {
	return client.DB().AutoMigrate(
		&models.User{},
		&models.Drug{},
		&models.Notification{},
	)
}
