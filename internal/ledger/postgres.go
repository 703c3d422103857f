package ledger

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

const postgresBackend = "postgres"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// PostgresOptions controls the connection pool of the Postgres ledger.
type PostgresOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DefaultPostgresOptions returns pool defaults for a long-running worker.
func DefaultPostgresOptions() PostgresOptions {
	return PostgresOptions{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// OpenPostgres opens a pgx-backed *sql.DB and verifies connectivity.
func OpenPostgres(ctx context.Context, databaseURL string, opts PostgresOptions) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded ledger schema with goose.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// PostgresLedger keeps the ledger in three tables. The submissions table's
// primary key is the exclusivity guard for appends; marks are a conditional
// UPDATE so each row's check-and-set happens inside the database.
type PostgresLedger struct {
	db   *sql.DB
	opts options
}

var _ Ledger = (*PostgresLedger)(nil)

// NewPostgresLedger wraps an open database handle.
func NewPostgresLedger(db *sql.DB, opts ...Option) *PostgresLedger {
	return &PostgresLedger{db: db, opts: buildOptions(opts)}
}

const (
	claimSubmissionSQL = `INSERT INTO submissions (submission_key, outcome, failed_id)
VALUES ($1, $2, $3)
ON CONFLICT (submission_key) DO NOTHING`

	insertAcceptedSQL = `INSERT INTO accepted_applications
(submission_key, email, title, description, file_path, evaluated_at, analysis)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertFailedSQL = `INSERT INTO failed_applications
(id, submission_key, email, title, description, file_path, evaluated_at, analysis, notified_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)`

	selectUnnotifiedSQL = `SELECT id, submission_key, email, title, description, file_path, evaluated_at, analysis
FROM failed_applications
WHERE notified_at IS NULL
ORDER BY seq`

	lookupSQL = `SELECT s.outcome, s.failed_id, COALESCE(a.analysis, f.analysis)
FROM submissions s
LEFT JOIN accepted_applications a ON a.submission_key = s.submission_key
LEFT JOIN failed_applications f ON f.submission_key = s.submission_key
WHERE s.submission_key = $1`
)

// AppendAccepted implements Ledger.
func (l *PostgresLedger) AppendAccepted(ctx context.Context, rec domain.AcceptedRecord) error {
	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return storageErr(postgresBackend, "append_accepted", err)
	}
	return l.appendInTx(ctx, "append_accepted", rec.SubmissionKey, domain.OutcomeAccepted, nil,
		insertAcceptedSQL,
		rec.SubmissionKey, rec.Email, rec.Title, rec.Description, rec.FilePath, rec.EvaluatedAt, analysis)
}

// AppendFailed implements Ledger.
func (l *PostgresLedger) AppendFailed(ctx context.Context, rec domain.FailedRecord) error {
	analysis, err := json.Marshal(rec.Analysis)
	if err != nil {
		return storageErr(postgresBackend, "append_failed", err)
	}
	return l.appendInTx(ctx, "append_failed", rec.SubmissionKey, domain.OutcomeFailed, rec.ID,
		insertFailedSQL,
		rec.ID, rec.SubmissionKey, rec.Email, rec.Title, rec.Description, rec.FilePath, rec.EvaluatedAt, analysis)
}

func (l *PostgresLedger) appendInTx(
	ctx context.Context,
	op, submissionKey string,
	kind domain.OutcomeKind,
	failedID any,
	insertSQL string,
	args ...any,
) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(postgresBackend, op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, claimSubmissionSQL, submissionKey, string(kind), failedID)
	if err != nil {
		return storageErr(postgresBackend, op, err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return storageErr(postgresBackend, op, err)
	}
	if claimed == 0 {
		return ErrAlreadyRecorded
	}

	if _, err = tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return storageErr(postgresBackend, op, err)
	}
	if err = tx.Commit(); err != nil {
		return storageErr(postgresBackend, op, err)
	}
	return nil
}

// FetchUnnotifiedFailed implements Ledger.
func (l *PostgresLedger) FetchUnnotifiedFailed(ctx context.Context) ([]domain.FailedRecord, error) {
	rows, err := l.db.QueryContext(ctx, selectUnnotifiedSQL)
	if err != nil {
		return nil, storageErr(postgresBackend, "fetch_unnotified", err)
	}
	defer rows.Close()

	out := make([]domain.FailedRecord, 0)
	for rows.Next() {
		var (
			rec      domain.FailedRecord
			analysis []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SubmissionKey, &rec.Email, &rec.Title,
			&rec.Description, &rec.FilePath, &rec.EvaluatedAt, &analysis); err != nil {
			return nil, storageErr(postgresBackend, "fetch_unnotified", err)
		}
		if err := json.Unmarshal(analysis, &rec.Analysis); err != nil {
			return nil, storageErr(postgresBackend, "fetch_unnotified", fmt.Errorf("decode %s: %w", rec.ID, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(postgresBackend, "fetch_unnotified", err)
	}
	return out, nil
}

// MarkNotified implements Ledger.
func (l *PostgresLedger) MarkNotified(ctx context.Context, ids []string) (int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query, args := markNotifiedQuery(l.opts.now().UTC(), ids)
	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(postgresBackend, "mark_notified", err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr(postgresBackend, "mark_notified", err)
	}
	l.opts.logger.Debug("ledger marked failed records notified",
		"backend", postgresBackend, "requested", len(ids), "updated", updated)
	return int(updated), nil
}

// markNotifiedQuery builds the conditional update. Rows are locked in id
// order so overlapping marks cannot deadlock, and the IS NULL predicate is
// re-checked once a row lock is granted, so a concurrent mark never
// overwrites an earlier timestamp.
func markNotifiedQuery(at time.Time, ids []string) (string, []any) {
	var b strings.Builder
	b.WriteString("UPDATE failed_applications SET notified_at = $1 WHERE notified_at IS NULL AND id IN (")
	b.WriteString("SELECT id FROM failed_applications WHERE notified_at IS NULL AND id IN (")
	args := make([]any, 0, len(ids)+1)
	args = append(args, at)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$" + strconv.Itoa(i+2))
		args = append(args, id)
	}
	b.WriteString(") ORDER BY id FOR UPDATE)")
	return b.String(), args
}

// Lookup implements Ledger.
func (l *PostgresLedger) Lookup(ctx context.Context, submissionKey string) (*domain.Outcome, error) {
	if submissionKey == "" {
		return nil, nil
	}
	var (
		kind     string
		failedID sql.NullString
		analysis []byte
	)
	err := l.db.QueryRowContext(ctx, lookupSQL, submissionKey).Scan(&kind, &failedID, &analysis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(postgresBackend, "lookup", err)
	}

	out := &domain.Outcome{Kind: domain.OutcomeKind(kind), FailedID: failedID.String}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &out.Analysis); err != nil {
			return nil, storageErr(postgresBackend, "lookup", err)
		}
	}
	return out, nil
}
