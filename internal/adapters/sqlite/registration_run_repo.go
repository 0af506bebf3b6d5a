package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/watools/internal/ports/secondary"
)

// RegistrationRunRepository implements secondary.RegistrationRunRepository with SQLite.
type RegistrationRunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRegistrationRunRepository creates a new SQLite registration run repository.
func NewRegistrationRunRepository(db *sql.DB) *RegistrationRunRepository {
	return &RegistrationRunRepository{db: db, now: time.Now}
}

// WithClock replaces the clock used for timestamps.
func (r *RegistrationRunRepository) WithClock(now func() time.Time) *RegistrationRunRepository {
	r.now = now
	return r
}

// CreateRun persists a new run.
func (r *RegistrationRunRepository) CreateRun(ctx context.Context, run *secondary.RegistrationRunRecord) error {
	startedAt := r.now().UTC()
	if run.StartedAt != "" {
		parsed, err := time.Parse(time.RFC3339, run.StartedAt)
		if err != nil {
			return fmt.Errorf("invalid started_at %q: %w", run.StartedAt, err)
		}
		startedAt = parsed.UTC()
	}

	var eventName, statuses sql.NullString
	if run.EventName != "" {
		eventName = sql.NullString{String: run.EventName, Valid: true}
	}
	if run.Statuses != "" {
		statuses = sql.NullString{String: run.Statuses, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO registration_runs (id, account_id, event_id, event_name, registration_type_id, statuses, pending, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.AccountID, run.EventID, eventName, run.RegistrationTypeID, statuses, run.Pending, startedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration run: %w", err)
	}

	run.StartedAt = startedAt.Format(time.RFC3339)
	return nil
}

// RecordAttempt persists one registration attempt.
func (r *RegistrationRunRepository) RecordAttempt(ctx context.Context, attempt *secondary.RegistrationAttemptRecord) error {
	var errText sql.NullString
	if attempt.Error != "" {
		errText = sql.NullString{String: attempt.Error, Valid: true}
	}

	createdAt := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO registration_attempts (run_id, contact_id, attempt, outcome, error, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		attempt.RunID, attempt.ContactID, attempt.Attempt, attempt.Outcome, errText, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record registration attempt: %w", err)
	}

	attempt.CreatedAt = createdAt.Format(time.RFC3339)
	return nil
}

// FinishRun stores the final counts of a run.
func (r *RegistrationRunRepository) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE registration_runs SET succeeded = ?, failed = ?, finished_at = ? WHERE id = ?",
		succeeded, failed, r.now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish registration run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("registration run %s not found", runID)
	}

	return nil
}

// ListRuns retrieves runs, newest first.
func (r *RegistrationRunRepository) ListRuns(ctx context.Context, filters secondary.RegistrationRunFilters) ([]*secondary.RegistrationRunRecord, error) {
	query := "SELECT id, account_id, event_id, event_name, registration_type_id, statuses, pending, succeeded, failed, started_at, finished_at FROM registration_runs WHERE 1=1"
	args := []any{}

	if filters.EventID != 0 {
		query += " AND event_id = ?"
		args = append(args, filters.EventID)
	}

	query += " ORDER BY started_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registration runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RegistrationRunRecord
	for rows.Next() {
		var (
			eventName  sql.NullString
			statuses   sql.NullString
			startedAt  time.Time
			finishedAt sql.NullTime
		)

		record := &secondary.RegistrationRunRecord{}
		err := rows.Scan(&record.ID, &record.AccountID, &record.EventID, &eventName, &record.RegistrationTypeID,
			&statuses, &record.Pending, &record.Succeeded, &record.Failed, &startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration run: %w", err)
		}

		record.EventName = eventName.String
		record.Statuses = statuses.String
		record.StartedAt = startedAt.Format(time.RFC3339)
		if finishedAt.Valid {
			record.FinishedAt = finishedAt.Time.Format(time.RFC3339)
		}

		runs = append(runs, record)
	}

	return runs, rows.Err()
}

// ListAttempts retrieves the attempts of a run in insertion order.
func (r *RegistrationRunRepository) ListAttempts(ctx context.Context, runID string) ([]*secondary.RegistrationAttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT run_id, contact_id, attempt, outcome, error, created_at FROM registration_attempts WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registration attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*secondary.RegistrationAttemptRecord
	for rows.Next() {
		var (
			errText   sql.NullString
			createdAt time.Time
		)

		record := &secondary.RegistrationAttemptRecord{}
		if err := rows.Scan(&record.RunID, &record.ContactID, &record.Attempt, &record.Outcome, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration attempt: %w", err)
		}

		record.Error = errText.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		attempts = append(attempts, record)
	}

	return attempts, rows.Err()
}

// Ensure RegistrationRunRepository implements the interface
var _ secondary.RegistrationRunRepository = (*RegistrationRunRepository)(nil)
