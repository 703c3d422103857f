package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// File names inside the ledger directory.
const (
	AcceptedFileName = "accepted_applications.json"
	FailedFileName   = "failed_applications.json"
	lockFileName     = "ledger.lock"
)

const fileBackend = "file"

// FileLedger keeps each collection as a JSON array in its own file.
//
// Mutations hold an in-process mutex plus an advisory lock on ledger.lock,
// re-read the current file under that lock, and replace it with an atomic
// rename. Readers never take the lock; a rename is all-or-nothing, so they
// always observe a complete file.
type FileLedger struct {
	dir  string
	mu   sync.Mutex
	opts options
}

var _ Ledger = (*FileLedger)(nil)

// NewFileLedger opens (creating if needed) a ledger rooted at dir.
func NewFileLedger(dir string, opts ...Option) (*FileLedger, error) {
	if dir == "" {
		return nil, fmt.Errorf("ledger directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, storageErr(fileBackend, "init", err)
	}
	return &FileLedger{dir: dir, opts: buildOptions(opts)}, nil
}

// Dir returns the directory holding the ledger files.
func (l *FileLedger) Dir() string { return l.dir }

func (l *FileLedger) acceptedPath() string { return filepath.Join(l.dir, AcceptedFileName) }
func (l *FileLedger) failedPath() string   { return filepath.Join(l.dir, FailedFileName) }

// AppendAccepted implements Ledger.
func (l *FileLedger) AppendAccepted(ctx context.Context, rec domain.AcceptedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.withLock("append_accepted", func() error {
		if err := l.ensureUnrecorded(rec.SubmissionKey); err != nil {
			return err
		}
		accepted, err := readRecords[domain.AcceptedRecord](l.acceptedPath())
		if err != nil {
			return err
		}
		return writeRecords(l.dir, l.acceptedPath(), append(accepted, rec))
	})
}

// AppendFailed implements Ledger.
func (l *FileLedger) AppendFailed(ctx context.Context, rec domain.FailedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.NotifiedAt = nil
	return l.withLock("append_failed", func() error {
		if err := l.ensureUnrecorded(rec.SubmissionKey); err != nil {
			return err
		}
		failed, err := readRecords[domain.FailedRecord](l.failedPath())
		if err != nil {
			return err
		}
		for i := range failed {
			if failed[i].ID == rec.ID {
				return ErrAlreadyRecorded
			}
		}
		return writeRecords(l.dir, l.failedPath(), append(failed, rec))
	})
}

// FetchUnnotifiedFailed implements Ledger.
func (l *FileLedger) FetchUnnotifiedFailed(ctx context.Context) ([]domain.FailedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	failed, err := readRecords[domain.FailedRecord](l.failedPath())
	if err != nil {
		return nil, storageErr(fileBackend, "fetch_unnotified", err)
	}
	rows := make([]domain.FailedRecord, 0, len(failed))
	for _, rec := range failed {
		if !rec.Notified() {
			rows = append(rows, rec)
		}
	}
	return rows, nil
}

// MarkNotified implements Ledger.
func (l *FileLedger) MarkNotified(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var updated int
	err := l.withLock("mark_notified", func() error {
		// Decide per record against what is on disk now, never against the
		// caller's earlier snapshot.
		failed, err := readRecords[domain.FailedRecord](l.failedPath())
		if err != nil {
			return err
		}
		stamp := l.opts.now().UTC()
		for i := range failed {
			if _, ok := wanted[failed[i].ID]; !ok || failed[i].Notified() {
				continue
			}
			at := stamp
			failed[i].NotifiedAt = &at
			updated++
		}
		if updated == 0 {
			return nil
		}
		return writeRecords(l.dir, l.failedPath(), failed)
	})
	if err != nil {
		return 0, err
	}
	l.opts.logger.Debug("ledger marked failed records notified",
		"backend", fileBackend, "requested", len(ids), "updated", updated)
	return updated, nil
}

// Lookup implements Ledger.
func (l *FileLedger) Lookup(ctx context.Context, submissionKey string) (*domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := l.lookup(submissionKey)
	if err != nil {
		return nil, storageErr(fileBackend, "lookup", err)
	}
	return out, nil
}

func (l *FileLedger) lookup(submissionKey string) (*domain.Outcome, error) {
	if submissionKey == "" {
		return nil, nil
	}
	accepted, err := readRecords[domain.AcceptedRecord](l.acceptedPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range accepted {
		if rec.SubmissionKey == submissionKey {
			return &domain.Outcome{Kind: domain.OutcomeAccepted, Analysis: rec.Analysis}, nil
		}
	}
	failed, err := readRecords[domain.FailedRecord](l.failedPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range failed {
		if rec.SubmissionKey == submissionKey {
			return &domain.Outcome{Kind: domain.OutcomeFailed, Analysis: rec.Analysis, FailedID: rec.ID}, nil
		}
	}
	return nil, nil
}

func (l *FileLedger) ensureUnrecorded(submissionKey string) error {
	out, err := l.lookup(submissionKey)
	if err != nil {
		return err
	}
	if out != nil {
		return ErrAlreadyRecorded
	}
	return nil
}

// withLock runs fn while holding both the process mutex and the directory
// lock. Errors other than ErrAlreadyRecorded come back as StorageWriteError.
func (l *FileLedger) withLock(op string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	unlock, err := lockFile(filepath.Join(l.dir, lockFileName))
	if err != nil {
		return storageErr(fileBackend, op, err)
	}
	defer unlock()

	if err := fn(); err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			return err
		}
		return storageErr(fileBackend, op, err)
	}
	return nil
}

func readRecords[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is built from the configured ledger dir
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// writeRecords replaces path with records through a synced temp file and a
// rename, so a crash leaves either the old or the new file.
func writeRecords[T any](dir, path string, records []T) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
