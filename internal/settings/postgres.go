package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// PostgresStore keeps settings in a two-column table.
type PostgresStore struct {
	keyed
	db *sql.DB
}

// NewPostgres opens dsn and creates table if needed.
func NewPostgres(dsn, table string) (*PostgresStore, error) {
	if table == "" {
		table = "settings"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	p := postgresKV{db: db, table: pq.QuoteIdentifier(table)}
	if err := p.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{keyed: keyed{p}, db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type postgresKV struct {
	db    *sql.DB
	table string // already quoted
}

func (p postgresKV) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT now()
	)`, p.table))
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (p postgresKV) get(ctx context.Context, key string) (string, error) {
	var value string
	row := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key=$1`, p.table), key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (p postgresKV) set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s(key, value) VALUES($1,$2)
		ON CONFLICT (key) DO UPDATE SET value=excluded.value, updated_at=now()`, p.table),
		key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
