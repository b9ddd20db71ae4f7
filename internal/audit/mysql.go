package audit

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	xerrors "OpenWeb3-Client/internal/errors"
)

// MySQLConfig describes the audit database connection.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MySQLStore writes audit records into a rpc_audit table.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens the database, applies pool settings and runs any
// pending schema migrations.
func NewMySQLStore(ctx context.Context, cfg MySQLConfig) (*MySQLStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "audit mysql dsn cannot be empty")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "open audit database")
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "reach audit database")
	}

	store := &MySQLStore{db: db}
	if err := store.runMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Record implements the Recorder interface.
func (s *MySQLStore) Record(ctx context.Context, rec Record) error {
	const insert = `INSERT INTO rpc_audit (id, method, params, duration_us, success, error_code, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, insert,
		rec.ID, rec.Method, rec.Params, rec.Duration.Microseconds(), rec.Success, rec.ErrorCode, rec.OccurredAt.Unix())
	if err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "insert audit record")
	}
	return nil
}

// RecentRecords returns the newest records, most recent first.
func (s *MySQLStore) RecentRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, method, params, duration_us, success, error_code, occurred_at
FROM rpc_audit ORDER BY occurred_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "query audit records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var durationUS int64
		var occurredAt int64
		var errorCode sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Method, &rec.Params, &durationUS, &rec.Success, &errorCode, &occurredAt); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "scan audit record")
		}
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		rec.OccurredAt = time.Unix(occurredAt, 0)
		if errorCode.Valid {
			rec.ErrorCode = errorCode.String
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "iterate audit records")
	}
	return out, nil
}

// Close releases the database handle.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
