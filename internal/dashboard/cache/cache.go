// Package cache persists the last good contract snapshot per party and
// template so the dashboard can render stale data when the gateway is
// unreachable.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harborline/ledgerdeck/internal/ledger"
	sqlitemigrate "github.com/harborline/ledgerdeck/internal/platform/storage/sqlitemigrate"

	"github.com/harborline/ledgerdeck/internal/dashboard/cache/migrations"
	_ "modernc.org/sqlite"
)

// Store persists contract snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Snapshot is one cached query result.
type Snapshot struct {
	Contracts []ledger.ActiveContract
	FetchedAt time.Time
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the snapshot for one party and template.
func (s *Store) Save(ctx context.Context, party, templateID string, contracts []ledger.ActiveContract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("cache is not configured")
	}
	party = strings.TrimSpace(party)
	templateID = strings.TrimSpace(templateID)
	if party == "" || templateID == "" {
		return fmt.Errorf("party and template id are required")
	}
	payload, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO contract_snapshots (party, template_id, payload, fetched_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (party, template_id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at_ms = excluded.fetched_at_ms
	`, party, templateID, payload, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot for one party and template, or ok=false when
// no snapshot has been saved.
func (s *Store) Load(ctx context.Context, party, templateID string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return Snapshot{}, false, fmt.Errorf("cache is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT payload, fetched_at_ms FROM contract_snapshots
		WHERE party = ? AND template_id = ?
	`, strings.TrimSpace(party), strings.TrimSpace(templateID))
	var payload []byte
	var fetchedAtMillis int64
	if err := row.Scan(&payload, &fetchedAtMillis); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var contracts []ledger.ActiveContract
	if err := json.Unmarshal(payload, &contracts); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return Snapshot{
		Contracts: contracts,
		FetchedAt: time.UnixMilli(fetchedAtMillis).UTC(),
	}, true, nil
}

// Drop removes all snapshots for one party. Used by manual refresh so the
// next render fetches fresh data.
func (s *Store) Drop(ctx context.Context, party string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("cache is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM contract_snapshots WHERE party = ?`, strings.TrimSpace(party)); err != nil {
		return fmt.Errorf("drop snapshots: %w", err)
	}
	return nil
}
