package audit

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"time"

	"OpenWeb3-Client/deploy/migrations"
	xerrors "OpenWeb3-Client/internal/errors"
)

var embeddedMigrations = migrations.Files

type migrationFile struct {
	version    string
	name       string
	statements []string
}

// runMigrations applies every pending schema migration, tracked through a
// schema_migrations table so reruns are cheap.
func (s *MySQLStore) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version VARCHAR(32) NOT NULL PRIMARY KEY,
        applied_at BIGINT NOT NULL
)`); err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "create schema_migrations table")
	}

	applied, err := s.loadAppliedVersions(ctx)
	if err != nil {
		return err
	}

	pending, err := loadMigrationFiles()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		if _, ok := applied[migration.version]; ok {
			continue
		}
		if err := s.applyMigration(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}

func (s *MySQLStore) loadAppliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "query schema_migrations")
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "scan schema_migrations")
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "iterate schema_migrations")
	}
	return applied, nil
}

func (s *MySQLStore) applyMigration(ctx context.Context, migration migrationFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "begin migration transaction")
	}

	for _, stmt := range migration.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return xerrors.Wrap(xerrors.CodeAuditFailure, err, "apply migration "+migration.name)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, migration.version, time.Now().Unix()); err != nil {
		tx.Rollback()
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "record migration version")
	}

	if err := tx.Commit(); err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "commit migration transaction")
	}
	return nil
}

func loadMigrationFiles() ([]migrationFile, error) {
	entries, err := fs.ReadDir(embeddedMigrations, ".")
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "read migration directory")
	}

	var out []migrationFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		content, err := embeddedMigrations.ReadFile(name)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "read migration file "+name)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			continue
		}

		out = append(out, migrationFile{
			version:    parseMigrationVersion(name),
			name:       name,
			statements: statements,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].version == out[j].version {
			return out[i].name < out[j].name
		}
		return out[i].version < out[j].version
	})
	return out, nil
}

func splitSQLStatements(content string) []string {
	var statements []string
	for _, stmt := range strings.Split(content, ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		statements = append(statements, trimmed)
	}
	return statements
}

func parseMigrationVersion(name string) string {
	if idx := strings.IndexRune(name, '_'); idx > 0 {
		return name[:idx]
	}
	if dot := strings.IndexRune(name, '.'); dot > 0 {
		return name[:dot]
	}
	return name
}
