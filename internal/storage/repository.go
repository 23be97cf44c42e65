package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"buste/internal/core"
)

var (
	ErrEnvelopeNotFound = errors.New("envelope not found")
	// ErrStaleFunding means a concurrent sync already funded the envelope
	// through this period or later. The commit guard keeps last_funded
	// monotonic and prevents double-funding.
	ErrStaleFunding = errors.New("stale funding commit")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveEnvelope inserts a new envelope and fills in its assigned id.
// Implements services.EnvelopeStore.
func (r *SQLiteRepository) SaveEnvelope(ctx context.Context, e *core.Envelope) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO envelopes (name, mode, base_amount, balance, last_funded, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, string(e.Mode), e.BaseAmount.String(), e.Balance.String(),
		periodToNull(e.LastFunded), boolToInt(!e.Archived),
	)
	if err != nil {
		return fmt.Errorf("insert envelope: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Envelope saved",
		"id", id,
		"name", e.Name,
		"mode", e.Mode)

	return nil
}

// GetEnvelope loads a single envelope by id.
func (r *SQLiteRepository) GetEnvelope(ctx context.Context, id int64) (*core.Envelope, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, mode, base_amount, balance, last_funded, is_active
		 FROM envelopes WHERE id = ?`, id)

	env, err := scanEnvelope(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrEnvelopeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get envelope: %w", err)
	}
	return env, nil
}

// ListActiveEnvelopes returns all non-archived envelopes ordered by name.
func (r *SQLiteRepository) ListActiveEnvelopes(ctx context.Context) ([]core.Envelope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, mode, base_amount, balance, last_funded, is_active
		 FROM envelopes WHERE is_active = 1 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []core.Envelope
	for rows.Next() {
		env, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		envelopes = append(envelopes, *env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate envelopes: %w", err)
	}

	return envelopes, nil
}

// UpdateBalance persists a new balance after a spend or deposit.
func (r *SQLiteRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE envelopes SET balance = ? WHERE id = ?`,
		balance.String(), id)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return requireRow(res, id)
}

// CommitFunding persists the outcome of a catch-up funding run for one
// envelope. The WHERE clause only matches when the stored last_funded is
// strictly behind the new period, so two overlapping sync runs cannot both
// commit the same catch-up.
func (r *SQLiteRepository) CommitFunding(ctx context.Context, id int64, balance decimal.Decimal, p core.Period) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE envelopes SET balance = ?, last_funded = ?
		 WHERE id = ? AND (last_funded IS NULL OR last_funded < ?)`,
		balance.String(), p.String(), id, p.String())
	if err != nil {
		return fmt.Errorf("commit funding: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := r.GetEnvelope(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: envelope %d already funded through %s or later", ErrStaleFunding, id, p)
	}

	slog.InfoContext(ctx, "Funding committed",
		"id", id,
		"balance", balance.String(),
		"last_funded", p.String())

	return nil
}

// ArchiveEnvelope soft-deletes an envelope.
func (r *SQLiteRepository) ArchiveEnvelope(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE envelopes SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive envelope: %w", err)
	}
	return requireRow(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row rowScanner) (*core.Envelope, error) {
	var (
		env        core.Envelope
		mode       string
		base       string
		balance    string
		lastFunded sql.NullString
		active     int
	)

	if err := row.Scan(&env.ID, &env.Name, &mode, &base, &balance, &lastFunded, &active); err != nil {
		return nil, err
	}

	env.Mode = core.FundingMode(mode)
	env.Archived = active == 0

	var err error
	if env.BaseAmount, err = decimal.NewFromString(base); err != nil {
		return nil, fmt.Errorf("parse base amount %q: %w", base, err)
	}
	if env.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	if lastFunded.Valid {
		if env.LastFunded, err = core.ParsePeriod(lastFunded.String); err != nil {
			return nil, fmt.Errorf("parse last funded %q: %w", lastFunded.String, err)
		}
	}

	return &env, nil
}

func periodToNull(p core.Period) sql.NullString {
	if p.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrEnvelopeNotFound, id)
	}
	return nil
}
