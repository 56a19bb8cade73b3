// Package diagnosis drives a single diagnosis request for the panel that
// shows it: loading state, staged progress and stale response handling.
package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/model"
)

// Diagnoser asks the backend for a diagnosis.
type Diagnoser interface {
	Diagnose(ctx context.Context, txn model.Transaction) (*model.Diagnosis, error)
}

// State is where the flow is in its lifecycle.
type State int

// Flow states.
const (
	StateIdle State = iota
	StateNotNeeded
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNotNeeded:
		return "not_needed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request is one in-flight diagnosis call. It is safe to run on another
// goroutine; its result is applied back with Flow.Resolve.
type Request struct {
	ctx         context.Context
	Transaction model.Transaction
	Generation  uint64
}

// Result is the outcome of running a Request.
type Result struct {
	Diagnosis  *model.Diagnosis
	Err        *api.APIError
	Generation uint64
}

// Run performs the call.
func (r Request) Run(d Diagnoser) Result {
	diagnosis, err := d.Diagnose(r.ctx, r.Transaction)
	return Result{Generation: r.Generation, Diagnosis: diagnosis, Err: api.Normalize(err)}
}

// Flow holds the diagnosis panel state. It is not safe for concurrent use;
// the dashboard owns it from its update loop.
type Flow struct {
	parent      context.Context
	cancel      context.CancelFunc
	diagnosis   *model.Diagnosis
	err         *api.APIError
	logger      *slog.Logger
	transaction model.Transaction
	generation  uint64
	state       State
	stage       Stage
	open        bool
}

// NewFlow creates a closed flow. Requests derive their context from parent.
func NewFlow(parent context.Context) *Flow {
	if parent == nil {
		parent = context.Background()
	}
	return &Flow{
		parent: parent,
		logger: slog.Default().With("component", "diagnosis"),
	}
}

// Open shows the panel for txn and starts a request if it failed. The
// returned bool is false when no request is needed.
func (f *Flow) Open(txn model.Transaction) (Request, bool) {
	f.Close()
	f.open = true
	f.transaction = txn
	if !txn.NeedsDiagnosis() {
		f.state = StateNotNeeded
		return Request{}, false
	}
	return f.start(), true
}

// Reanalyze repeats the request for the open transaction.
func (f *Flow) Reanalyze() (Request, bool) {
	if !f.open || !f.transaction.NeedsDiagnosis() {
		return Request{}, false
	}
	return f.start(), true
}

func (f *Flow) start() Request {
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(f.parent)
	f.cancel = cancel
	f.generation++
	f.state = StateLoading
	f.stage = StageAnalyzing
	f.diagnosis = nil
	f.err = nil

	f.logger.Debug("Requesting diagnosis", "transaction_id", f.transaction.ID, "generation", f.generation)
	return Request{ctx: ctx, Transaction: f.transaction, Generation: f.generation}
}

// Resolve applies a result. Results from superseded or cancelled requests
// are dropped and Resolve returns false.
func (f *Flow) Resolve(res Result) bool {
	if !f.open || res.Generation != f.generation || f.state != StateLoading {
		f.logger.Debug("Dropping stale diagnosis", "generation", res.Generation, "current", f.generation)
		return false
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if res.Err != nil {
		f.state = StateFailed
		f.err = res.Err
		f.diagnosis = nil
		f.logger.Warn("Diagnosis failed", "transaction_id", f.transaction.ID, "error", res.Err)
		return true
	}
	f.state = StateReady
	f.diagnosis = res.Diagnosis
	f.stage = StageAIDiagnosis
	return true
}

// Close discards the panel state and cancels any pending request.
func (f *Flow) Close() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
	f.open = false
	f.state = StateIdle
	f.stage = StageAnalyzing
	f.diagnosis = nil
	f.err = nil
	f.transaction = model.Transaction{}
}

// Run opens the panel for txn and performs the request synchronously.
func (f *Flow) Run(d Diagnoser, txn model.Transaction) State {
	req, ok := f.Open(txn)
	if !ok {
		return f.state
	}
	f.Resolve(req.Run(d))
	for f.AdvanceStage() {
	}
	return f.state
}

// IsOpen reports whether the panel is showing.
func (f *Flow) IsOpen() bool { return f.open }

// Loading reports whether a request is pending.
func (f *Flow) Loading() bool { return f.state == StateLoading }

// State returns the lifecycle state.
func (f *Flow) State() State { return f.state }

// Generation returns the current request generation.
func (f *Flow) Generation() uint64 { return f.generation }

// Transaction returns the transaction being diagnosed.
func (f *Flow) Transaction() model.Transaction { return f.transaction }

// Diagnosis returns the diagnosis, or nil.
func (f *Flow) Diagnosis() *model.Diagnosis { return f.diagnosis }

// Err returns the normalized error, or nil.
func (f *Flow) Err() *api.APIError { return f.err }

// Stage returns the progress stage.
func (f *Flow) Stage() Stage { return f.stage }

// AdvanceStage moves one stage forward once a diagnosis has arrived.
// It reports whether the stage changed.
func (f *Flow) AdvanceStage() bool {
	if f.state != StateReady || f.stage == StageComplete {
		return false
	}
	f.stage++
	return true
}

// JSON renders the diagnosis as indented JSON for copying.
func (f *Flow) JSON() (string, error) {
	if f.diagnosis == nil {
		return "", fmt.Errorf("no diagnosis to copy")
	}
	data, err := json.MarshalIndent(f.diagnosis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode diagnosis: %w", err)
	}
	return string(data), nil
}
