// Package migrations applies the numbered SQL files under migrations/.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// lockKey serialises migrators of several instances starting together
const lockKey = 7_140_2024

const trackingTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(255) PRIMARY KEY,
	file       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migration is one SQL file
type Migration struct {
	Version string
	File    string
}

// Migrator applies each migration at most once
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// VersionOf extracts the version prefix from a migration filename ("001_init.sql" => "001")
func VersionOf(filename string) string {
	return strings.SplitN(path.Base(filename), "_", 2)[0]
}

// Discover lists the .sql files at the root of fsys in application order
func Discover(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var found []Migration
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		v := VersionOf(e.Name())
		if prev, dup := seen[v]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %s", prev, e.Name(), v)
		}
		seen[v] = e.Name()
		found = append(found, Migration{Version: v, File: e.Name()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].File < found[j].File })
	return found, nil
}

// Apply runs every migration of fsys not yet recorded, each in its own transaction
func (m *Migrator) Apply(ctx context.Context, fsys fs.FS) (int, error) {
	pending, err := Discover(fsys)
	if err != nil {
		return 0, err
	}
	if _, err := m.db.Exec(ctx, trackingTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, mig := range pending {
		ran, err := m.applyOne(ctx, fsys, mig)
		if err != nil {
			return applied, err
		}
		if ran {
			applied++
		}
	}
	return applied, nil
}

func (m *Migrator) applyOne(ctx context.Context, fsys fs.FS, mig Migration) (bool, error) {
	body, err := fs.ReadFile(fsys, mig.File)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", mig.File, err)
	}

	ran := false
	err = pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("lock migrations: %w", err)
		}

		var done bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, mig.Version).Scan(&done); err != nil {
			return fmt.Errorf("check %s: %w", mig.File, err)
		}
		if done {
			return nil
		}

		if _, err := tx.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", mig.File, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, file) VALUES ($1, $2)`, mig.Version, mig.File); err != nil {
			return fmt.Errorf("record %s: %w", mig.File, err)
		}
		ran = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if ran {
		m.logger.Info().Str("file", mig.File).Msg("Migration applied")
	} else {
		m.logger.Debug().Str("file", mig.File).Msg("Migration already applied")
	}
	return ran, nil
}
