// Package ledger persists the append-only record of authorization attempts
// in a SQLite database. Reopening the same database resumes the current
// period's spend total after a restart.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reelgate/reelgate/pkg/models"
)

// ErrNotFound is returned when no entry matches the given id or job id.
var ErrNotFound = errors.New("ledger entry not found")

// ErrInvalidTransition is returned when a status update would regress a
// terminal entry or set the job id twice.
var ErrInvalidTransition = errors.New("invalid ledger entry transition")

// PeriodStats aggregates one budget period's entries.
type PeriodStats struct {
	Spent         models.Cents
	EntryCount    int
	RejectedCount int
}

// ListOpts filters List results.
type ListOpts struct {
	Period string
	Status models.EntryStatus
	Limit  int
}

// Ledger records and queries authorization attempts. Entries are append-only:
// amount, authorized flag and timestamp never change after Append; only the
// job id and the terminal status may be attached, each exactly once.
type Ledger interface {
	// Append stores a new entry.
	Append(ctx context.Context, e models.LedgerEntry) error
	// Get returns an entry by id.
	Get(ctx context.Context, id string) (models.LedgerEntry, error)
	// FindByJobID returns the entry holding the given external job id.
	FindByJobID(ctx context.Context, jobID string) (models.LedgerEntry, error)
	// List returns entries in insertion order, newest first.
	List(ctx context.Context, opts ListOpts) ([]models.LedgerEntry, error)
	// SpentInPeriod returns the sum of authorized amounts in a period.
	SpentInPeriod(ctx context.Context, period string) (models.Cents, error)
	// StatsForPeriod aggregates spend and attempt counts for a period.
	StatsForPeriod(ctx context.Context, period string) (PeriodStats, error)
	// MarkSubmitted attaches a job id to an approved entry and moves it to
	// submitted. Fails with ErrInvalidTransition if already submitted.
	MarkSubmitted(ctx context.Context, id, jobID string) error
	// MarkTerminal moves an approved or submitted entry to completed or
	// failed. Terminal entries never transition again.
	MarkTerminal(ctx context.Context, id string, status models.EntryStatus) error
	// Close releases resources.
	Close() error
}

// SQLiteLedger implements Ledger with a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id TEXT PRIMARY KEY,
	period TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	duration_seconds REAL NOT NULL,
	tier TEXT NOT NULL,
	aspect_ratio TEXT NOT NULL DEFAULT '',
	prompt_chars INTEGER NOT NULL,
	amount_cents INTEGER NOT NULL,
	authorized INTEGER NOT NULL,
	status TEXT NOT NULL,
	job_id TEXT NOT NULL DEFAULT '',
	seq INTEGER
);
CREATE INDEX IF NOT EXISTS idx_ledger_period ON ledger_entries(period, authorized);
CREATE INDEX IF NOT EXISTS idx_ledger_job ON ledger_entries(job_id);
`

// Open creates a SQLiteLedger and runs auto-migration.
func Open(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Append stores a new entry.
func (l *SQLiteLedger) Append(ctx context.Context, e models.LedgerEntry) error {
	authorized := 0
	if e.Authorized {
		authorized = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO ledger_entries
		 (id, period, created_at, duration_seconds, tier, aspect_ratio, prompt_chars, amount_cents, authorized, status, job_id, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries))`,
		e.ID, e.Period, e.CreatedAt.UTC(), e.DurationSeconds, string(e.Tier), string(e.Aspect),
		e.PromptChars, int64(e.Amount), authorized, string(e.Status), e.JobID,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

const selectCols = `id, period, created_at, duration_seconds, tier, aspect_ratio, prompt_chars, amount_cents, authorized, status, job_id`

func scanEntry(row interface{ Scan(...any) error }) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	var tier, aspect, status string
	var amount int64
	var authorized int
	var createdAt time.Time
	err := row.Scan(&e.ID, &e.Period, &createdAt, &e.DurationSeconds, &tier, &aspect,
		&e.PromptChars, &amount, &authorized, &status, &e.JobID)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	e.CreatedAt = createdAt.UTC()
	e.Tier = models.Tier(tier)
	e.Aspect = models.AspectRatio(aspect)
	e.Amount = models.Cents(amount)
	e.Authorized = authorized != 0
	e.Status = models.EntryStatus(status)
	return e, nil
}

// Get returns an entry by id.
func (l *SQLiteLedger) Get(ctx context.Context, id string) (models.LedgerEntry, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM ledger_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// FindByJobID returns the entry holding the given external job id.
func (l *SQLiteLedger) FindByJobID(ctx context.Context, jobID string) (models.LedgerEntry, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM ledger_entries WHERE job_id = ?`, jobID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("find ledger entry by job: %w", err)
	}
	return e, nil
}

// List returns entries newest first, optionally filtered by period and status.
func (l *SQLiteLedger) List(ctx context.Context, opts ListOpts) ([]models.LedgerEntry, error) {
	query := `SELECT ` + selectCols + ` FROM ledger_entries`
	var conds []string
	var args []any
	if opts.Period != "" {
		conds = append(conds, `period = ?`)
		args = append(args, opts.Period)
	}
	if opts.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(opts.Status))
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY seq DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SpentInPeriod returns the sum of authorized amounts in a period.
func (l *SQLiteLedger) SpentInPeriod(ctx context.Context, period string) (models.Cents, error) {
	var total int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM ledger_entries WHERE period = ? AND authorized = 1`,
		period,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("period spend: %w", err)
	}
	return models.Cents(total), nil
}

// StatsForPeriod aggregates spend and attempt counts for a period.
func (l *SQLiteLedger) StatsForPeriod(ctx context.Context, period string) (PeriodStats, error) {
	var s PeriodStats
	var spent int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN authorized = 1 THEN amount_cents ELSE 0 END), 0),
		        COUNT(*),
		        COALESCE(SUM(CASE WHEN authorized = 0 THEN 1 ELSE 0 END), 0)
		 FROM ledger_entries WHERE period = ?`,
		period,
	).Scan(&spent, &s.EntryCount, &s.RejectedCount)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("period stats: %w", err)
	}
	s.Spent = models.Cents(spent)
	return s, nil
}

// MarkSubmitted attaches a job id to an approved entry.
func (l *SQLiteLedger) MarkSubmitted(ctx context.Context, id, jobID string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE ledger_entries SET status = ?, job_id = ?
		 WHERE id = ? AND status = ? AND job_id = ''`,
		string(models.StatusSubmitted), jobID, id, string(models.StatusApproved),
	)
	if err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	return l.checkTransition(ctx, res, id)
}

// MarkTerminal moves an approved or submitted entry to a terminal status.
func (l *SQLiteLedger) MarkTerminal(ctx context.Context, id string, status models.EntryStatus) error {
	if status != models.StatusCompleted && status != models.StatusFailed {
		return fmt.Errorf("%w: %s is not a terminal outcome", ErrInvalidTransition, status)
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE ledger_entries SET status = ?
		 WHERE id = ? AND status IN (?, ?)`,
		string(status), id, string(models.StatusApproved), string(models.StatusSubmitted),
	)
	if err != nil {
		return fmt.Errorf("mark terminal: %w", err)
	}
	return l.checkTransition(ctx, res, id)
}

// checkTransition distinguishes a missing entry from a disallowed update
// when an UPDATE matched no rows.
func (l *SQLiteLedger) checkTransition(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := l.Get(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// Close releases the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
