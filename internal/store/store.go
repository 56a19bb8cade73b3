// Package store loads the transaction list the dashboard works from,
// falling back to cached or bundled data when the backend is unavailable.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/metrics"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/storage"
)

// Source names where a loaded list came from.
type Source string

// Load sources, in fallback order.
const (
	SourceBackend  Source = "backend"
	SourceSnapshot Source = "snapshot"
	SourceFixtures Source = "fixtures"
)

// Fetcher lists transactions from the backend.
type Fetcher interface {
	ListTransactions(ctx context.Context, opts api.ListOptions) ([]model.Transaction, error)
}

// SnapshotStore persists the last good list.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *storage.Snapshot) (int64, error)
	LatestSnapshot(ctx context.Context, failureType string) (*storage.Snapshot, error)
}

// Result is the outcome of a load. Cause is the backend error that forced a
// fallback, or nil when the backend answered.
type Result struct {
	FetchedAt    time.Time
	Cause        error
	Source       Source
	Transactions []model.Transaction
}

// Degraded reports whether the list did not come from the backend.
func (r Result) Degraded() bool {
	return r.Source != SourceBackend
}

// Store loads transaction lists.
type Store struct {
	fetcher    Fetcher
	snapshots  SnapshotStore
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	backendURL string
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshots enables the snapshot cache.
func WithSnapshots(snapshots SnapshotStore) Option {
	return func(s *Store) {
		s.snapshots = snapshots
	}
}

// WithMetrics counts loads per source.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithBackendURL records the backend in saved snapshots.
func WithBackendURL(url string) Option {
	return func(s *Store) {
		s.backendURL = url
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store over fetcher. A nil fetcher always falls back.
func New(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  slog.Default().With("component", "store"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errNoFetcher = errors.New("no backend configured")

// Load fetches up to limit transactions, optionally narrowed to one failure
// type. It never fails: on a backend error it serves the latest snapshot for
// the same filter, or the bundled fixtures.
func (s *Store) Load(ctx context.Context, limit int, failureType string) Result {
	result := s.load(ctx, limit, failureType)
	if s.metrics != nil {
		s.metrics.RecordLoad(string(result.Source))
	}
	return result
}

func (s *Store) load(ctx context.Context, limit int, failureType string) Result {
	var cause error
	if s.fetcher == nil {
		cause = errNoFetcher
	} else {
		transactions, err := s.fetcher.ListTransactions(ctx, api.ListOptions{Limit: limit, FailureType: failureType})
		if err == nil {
			fetchedAt := s.now()
			s.saveSnapshot(ctx, fetchedAt, failureType, transactions)
			return Result{Transactions: transactions, Source: SourceBackend, FetchedAt: fetchedAt}
		}
		cause = err
	}

	s.logger.Warn("Backend unavailable, falling back", "error", cause, "failure_type", failureType)

	if s.snapshots != nil {
		snapshot, err := s.snapshots.LatestSnapshot(ctx, failureType)
		switch {
		case err == nil:
			s.logger.Info("Serving cached snapshot",
				"snapshot_id", snapshot.ID,
				"fetched_at", snapshot.FetchedAt,
				"transactions", len(snapshot.Transactions))
			return Result{
				Transactions: limitTo(snapshot.Transactions, limit),
				Source:       SourceSnapshot,
				FetchedAt:    snapshot.FetchedAt,
				Cause:        cause,
			}
		case errors.Is(err, common.ErrNoSnapshot):
			s.logger.Debug("No cached snapshot", "failure_type", failureType)
		default:
			s.logger.Warn("Failed to read cached snapshot", "error", err)
		}
	}

	fixtures := Fixtures(s.now())
	if failureType != "" {
		fixtures = byFailureType(fixtures, failureType)
	}
	return Result{
		Transactions: limitTo(fixtures, limit),
		Source:       SourceFixtures,
		FetchedAt:    s.now(),
		Cause:        cause,
	}
}

func (s *Store) saveSnapshot(ctx context.Context, fetchedAt time.Time, failureType string, transactions []model.Transaction) {
	if s.snapshots == nil {
		return
	}
	_, err := s.snapshots.SaveSnapshot(ctx, &storage.Snapshot{
		FetchedAt:    fetchedAt,
		FailureType:  failureType,
		BackendURL:   s.backendURL,
		Transactions: transactions,
	})
	if err != nil {
		s.logger.Warn("Failed to cache snapshot", "error", err)
	}
}

func byFailureType(transactions []model.Transaction, failureType string) []model.Transaction {
	out := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if string(txn.FailureType) == failureType {
			out = append(out, txn)
		}
	}
	return out
}

func limitTo(transactions []model.Transaction, limit int) []model.Transaction {
	if limit > 0 && len(transactions) > limit {
		return transactions[:limit]
	}
	return transactions
}
