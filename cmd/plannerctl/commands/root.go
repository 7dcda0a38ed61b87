// Package commands implements the plannerctl command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/database"
	"github.com/spf13/cobra"
)

// Stores are the runtime configuration tables plannerctl edits.
type Stores struct {
	Cors      database.CorsConfigStore
	Ratelimit database.RatelimitConfigStore
	Close     func() error
}

// StoreOpener connects to the configuration tables.
type StoreOpener func(ctx context.Context) (*Stores, error)

// OpenDatabaseStores opens the Postgres database named by DATABASE_URL.
func OpenDatabaseStores(ctx context.Context) (*Stores, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Stores{
		Cors:      database.NewCorsConfigRepository(db),
		Ratelimit: database.NewRatelimitConfigRepository(db),
		Close:     db.Close,
	}, nil
}

// NewRootCmd builds the plannerctl command tree.
func NewRootCmd(open StoreOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Operations tool for the Smart Planner API",
		Long:          "Inspect how delete commands resolve and manage CORS and rate limit settings stored in the database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewResolveCmd())
	root.AddCommand(NewCorsCmd(open))
	root.AddCommand(NewRatelimitCmd(open))
	return root
}

// withStores opens the stores, runs fn and closes them.
func withStores(cmd *cobra.Command, open StoreOpener, fn func(ctx context.Context, s *Stores) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stores, err := open(ctx)
	if err != nil {
		return err
	}
	if stores.Close != nil {
		defer func() { _ = stores.Close() }()
	}
	return fn(ctx, stores)
}
