package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/memoask/internal/model"
)

// SQLiteStore implements ExchangeStore using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var version int
	if err := s.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		if currentVersion, err = s.SchemaVersion(); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordExchange inserts an exchange.
func (s *SQLiteStore) RecordExchange(
	ctx context.Context,
	ex model.Exchange,
) (model.Exchange, error) {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = s.now()
	}
	ex.CreatedAt = ex.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO exchanges (
			id, question, answer, error, provider, model, latency_ms, created_at
		) VALUES (
			:id, :question, :answer, :error, :provider, :model, :latency_ms, :created_at
		)`, ex)
	if err != nil {
		return model.Exchange{}, fmt.Errorf("inserting exchange %s: %w", ex.ID, err)
	}

	return ex, nil
}

// RecentExchanges returns up to limit exchanges, newest first. A limit
// outside 1..MaxHistoryLimit is clamped.
func (s *SQLiteStore) RecentExchanges(
	ctx context.Context,
	limit int,
) ([]model.Exchange, error) {
	limit = clampLimit(limit)

	var exchanges []model.Exchange
	err := s.db.SelectContext(ctx, &exchanges, `
		SELECT id, question, answer, error, provider, model, latency_ms, created_at
		FROM exchanges
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}

	return exchanges, nil
}

// CountExchanges returns the number of recorded exchanges.
func (s *SQLiteStore) CountExchanges(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM exchanges"); err != nil {
		return 0, fmt.Errorf("counting exchanges: %w", err)
	}
	return n, nil
}

// PruneExchanges deletes exchanges created before cutoff and returns how
// many were removed.
func (s *SQLiteStore) PruneExchanges(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM exchanges WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning exchanges: %w", err)
	}
	return res.RowsAffected()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 1
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
