// Package export writes transaction lists out of the dashboard, either as
// CSV or through a ReportWriter such as the Google Sheets writer.
package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/upi-triage/internal/analytics"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
)

// Columns is the fixed header of every export.
var Columns = []string{
	"Transaction ID",
	"Amount",
	"Sender",
	"Receiver",
	"Status",
	"Failure Reason",
	"Timestamp",
}

// Row renders txn in Columns order.
func Row(txn model.Transaction) []string {
	return []string{
		txn.ID,
		strconv.FormatFloat(txn.Amount, 'f', -1, 64),
		txn.SenderVPA,
		txn.ReceiverVPA,
		string(txn.Status.Normalize()),
		txn.FailureReason,
		txn.Timestamp.String(),
	}
}

// Progress receives one Add call per written row.
type Progress interface {
	Add(n int) error
}

// Report is everything a ReportWriter publishes.
type Report struct {
	GeneratedAt  time.Time
	Title        string
	Criteria     string
	Statistics   analytics.Report
	Transactions []model.Transaction
}

// NewReport builds a report over transactions. Statistics are computed from
// the same list that is exported.
func NewReport(title, criteria string, transactions []model.Transaction, now time.Time) Report {
	return Report{
		Title:        title,
		Criteria:     criteria,
		GeneratedAt:  now,
		Statistics:   analytics.Build(transactions),
		Transactions: transactions,
	}
}

// ReportWriter publishes a report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Publish sends report through w when the session may export reports.
func Publish(ctx context.Context, session permission.Session, w ReportWriter, report Report) error {
	if err := requirePermission(session, permission.ExportReports); err != nil {
		return err
	}
	if err := w.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	return nil
}

func requirePermission(session permission.Session, p permission.Permission) error {
	if !session.Has(p) {
		return common.NewUserError(
			fmt.Sprintf("Your role does not allow this action (%s).", p),
			fmt.Errorf("%w: %s required", common.ErrPermissionDenied, p),
		)
	}
	return nil
}
