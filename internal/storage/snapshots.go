package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/model"
)

// Snapshot is a transaction list as it was fetched from the backend.
type Snapshot struct {
	FetchedAt    time.Time
	FailureType  string
	BackendURL   string
	Transactions []model.Transaction
	ID           int64
}

// SnapshotInfo summarizes a stored snapshot without its rows.
type SnapshotInfo struct {
	FetchedAt        time.Time
	FailureType      string
	BackendURL       string
	ID               int64
	TransactionCount int
}

// SaveSnapshot stores a snapshot and prunes older ones for the same filter.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snapshot *Snapshot) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSnapshot(snapshot); err != nil {
		return 0, err
	}

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (fetched_at, transaction_count, failure_type, backend_url) VALUES (?, ?, ?, ?)`,
		fetchedAt.UTC(), len(snapshot.Transactions), snapshot.FailureType, snapshot.BackendURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_transactions (snapshot_id, position, transaction_id, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range snapshot.Transactions {
		payload, marshalErr := json.Marshal(txn)
		if marshalErr != nil {
			err = fmt.Errorf("failed to encode transaction %s: %w", txn.ID, marshalErr)
			return 0, err
		}
		if _, err = stmt.ExecContext(ctx, id, i, txn.ID, string(payload)); err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err = s.pruneTx(ctx, tx, snapshot.FailureType); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	snapshot.ID = id
	snapshot.FetchedAt = fetchedAt
	return id, nil
}

func (s *SQLiteStorage) pruneTx(ctx context.Context, tx *sql.Tx, failureType string) error {
	const stale = `SELECT id FROM snapshots WHERE failure_type = ?
		ORDER BY fetched_at DESC, id DESC LIMIT -1 OFFSET ?`

	queries := []string{
		`DELETE FROM snapshot_transactions WHERE snapshot_id IN (` + stale + `)`,
		`DELETE FROM snapshots WHERE id IN (` + stale + `)`,
	}
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query, failureType, s.keepSnapshots); err != nil {
			return fmt.Errorf("failed to prune snapshots: %w", err)
		}
	}
	return nil
}

// LatestSnapshot returns the newest snapshot taken with the given failure
// type filter. It returns common.ErrNoSnapshot when none exists.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context, failureType string) (*Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		snapshot  Snapshot
		fetchedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at, failure_type, backend_url FROM snapshots
		 WHERE failure_type = ? ORDER BY fetched_at DESC, id DESC LIMIT 1`, failureType).
		Scan(&snapshot.ID, &fetchedAt, &snapshot.FailureType, &snapshot.BackendURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	snapshot.FetchedAt = fetchedAt

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM snapshot_transactions WHERE snapshot_id = ? ORDER BY position`, snapshot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot transaction: %w", err)
		}
		var txn model.Transaction
		if err := json.Unmarshal([]byte(payload), &txn); err != nil {
			return nil, fmt.Errorf("%w: snapshot %d: %w", common.ErrDatabaseCorrupted, snapshot.ID, err)
		}
		snapshot.Transactions = append(snapshot.Transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot transactions: %w", err)
	}

	return &snapshot, nil
}

// ListSnapshots returns every stored snapshot, newest first.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fetched_at, failure_type, backend_url, transaction_count FROM snapshots
		 ORDER BY fetched_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.FetchedAt, &info.FailureType, &info.BackendURL, &info.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// ClearSnapshots deletes every stored snapshot and reports how many were removed.
func (s *SQLiteStorage) ClearSnapshots(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_transactions`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to clear snapshot transactions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM snapshots`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return result.RowsAffected()
}
