package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/renamer/internal/core/config"
	"github.com/solatis/renamer/internal/core/db"
	"github.com/solatis/renamer/internal/core/packfile"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

// backend bundles the optional database with the rule store on top of it.
type backend struct {
	db      *sqlx.DB
	queries *db.Queries
	store   *db.Store
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

// openBackend opens and migrates the database named by --db-url. Without
// --db-url it returns an empty backend.
func openBackend() (*backend, error) {
	if dbURL == "" {
		return &backend{}, nil
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.MigrateUp(database, logger); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return &backend{
		db:      database,
		queries: queries,
		store:   db.NewStore(queries, logger),
	}, nil
}

// loadRegistry reads packs from the database when one is open, else from
// the configured pack file, and makes sure the default pack exists.
func loadRegistry(ctx context.Context, cfg *config.Config, b *backend) (*rules.Registry, error) {
	var (
		reg *rules.Registry
		err error
	)
	switch {
	case b.store != nil:
		reg, err = b.store.LoadPacks(ctx, types.DefaultClassifier{})
	case cfg.Renamer.PacksFile != "":
		reg, err = packfile.Load(cfg.Renamer.PacksFile, types.DefaultClassifier{})
	default:
		reg = rules.NewRegistry(types.DefaultClassifier{})
	}
	if err != nil {
		return nil, err
	}
	reg.GetOrCreate(cfg.Renamer.DefaultPack)
	return reg, nil
}
