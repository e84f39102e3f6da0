package storage

// sqlite.go: ledger de trades y runs.
//
// Tablas:
//   - `trades`: una fila por orden (append-only). Solo se modifica una vez, al
//     liquidar, y el UPDATE filtra settlement_result='pending' para que
//     repetir la liquidación no toque nada.
//   - `runs`: una fila por batch de trading.
//   - Migraciones: columnas añadidas después de la primera versión se crean
//     con ALTER TABLE y se ignora el error de columna duplicada.
//   - Prune al arrancar: runs > 365d. Los trades no se borran nunca.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp              TEXT    NOT NULL,
    mode                   TEXT    NOT NULL,
    target_date            TEXT    NOT NULL,
    city                   TEXT    NOT NULL,
    ticker                 TEXT    NOT NULL,
    title                  TEXT,
    side                   TEXT    NOT NULL,
    yes_price_cents        INTEGER NOT NULL,
    cost_cents             INTEGER NOT NULL,
    contracts              INTEGER NOT NULL,
    potential_profit_cents INTEGER NOT NULL,
    forecast_high_f        REAL,
    forecast_low_f         REAL,
    est_probability        REAL,
    expected_value_cents   REAL,
    filled                 INTEGER NOT NULL DEFAULT 0,
    order_id               TEXT,
    dry_run                INTEGER NOT NULL DEFAULT 0,
    settlement_result      TEXT    NOT NULL DEFAULT 'pending',
    payout_cents           INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_date   ON trades(target_date);
CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker, target_date);

CREATE TABLE IF NOT EXISTS runs (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp            TEXT    NOT NULL,
    mode                 TEXT    NOT NULL,
    target_date          TEXT    NOT NULL,
    cities               TEXT    NOT NULL,
    trades_placed        INTEGER NOT NULL DEFAULT 0,
    trades_skipped       INTEGER NOT NULL DEFAULT 0,
    total_cost_cents     INTEGER NOT NULL DEFAULT 0,
    balance_before_cents INTEGER,
    balance_after_cents  INTEGER
);
`

// migrations añade columnas de procedencia y liquidación.
var migrations = []struct{ col, typ string }{
	{"observed_high_f", "REAL"},
	{"observed_low_f", "REAL"},
	{"prob_source", "TEXT"},
	{"ensemble_member_count", "INTEGER"},
	{"ensemble_mean_high", "REAL"},
	{"ensemble_mean_low", "REAL"},
	{"ensemble_sd_high", "REAL"},
	{"ensemble_sd_low", "REAL"},
}

const retentionRuns = 365 * 24 * time.Hour

// SQLiteLedger implementa ports.Ledger usando SQLite (pure Go, sin CGo).
type SQLiteLedger struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada,
// aplica schema y migraciones y limpia runs antiguos.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: %w", err)
	}

	s := &SQLiteLedger{db: db, now: time.Now}
	s.pruneOld(context.Background())
	return s, nil
}

func migrate(db *sql.DB) error {
	for _, m := range migrations {
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE trades ADD COLUMN %s %s", m.col, m.typ))
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate %s: %w", m.col, err)
		}
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

// pruneOld elimina runs antiguos para mantener la DB ligera.
func (s *SQLiteLedger) pruneOld(ctx context.Context) {
	cutoff := s.now().UTC().Add(-retentionRuns).Format(time.RFC3339)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
}

// --- helpers internos ---

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
