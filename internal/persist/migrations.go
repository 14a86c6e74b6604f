package persist

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrationFS is the embedded SQL directory rooted at its files.
func migrationFS() (fs.FS, error) {
	return fs.Sub(migrations, "migrations")
}

// RunMigrations brings the ledger schema up to date and returns how many
// migrations were applied. A goose provider is used so no package-level
// goose state is touched.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) (int, error) {
	fsys, err := migrationFS()
	if err != nil {
		return 0, fmt.Errorf("migration fs: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		log.Info("ledger migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration),
		)
	}
	return len(results), nil
}
