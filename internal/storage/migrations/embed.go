// Package migrations holds the schema of the durable backends and applies it
// at startup.
//
// PostgreSQL carries the token registry (tokens) and the pending post cache
// (pending_posts). ClickHouse carries the append-only fee_events history of
// claims and distributions. Every file is idempotent (IF NOT EXISTS), so the
// full set is replayed on each start instead of tracking a version table.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// PostgresFS embeds the tokens and pending_posts schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the fee_events schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

// sqlFiles lists the .sql files in dir in apply order (lexical, so the
// numeric prefix decides) with their contents.
func sqlFiles(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]migrationFile, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		files = append(files, migrationFile{name: name, sql: string(data)})
	}
	return files, nil
}

type migrationFile struct {
	name string
	sql  string
}
