package migrations

import (
	"context"
	"fmt"
	"strings"

	"agent-launchpad/internal/storage/postgres"
)

// RunPostgresMigrations creates the tokens and pending_posts tables and their
// lookup indexes (symbol, agent, post id). pgx runs a whole file as one
// simple-protocol batch, so files are not split.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		if strings.TrimSpace(f.sql) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.name, err)
		}
	}
	return nil
}
