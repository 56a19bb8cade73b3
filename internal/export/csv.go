package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
)

// CSVFilename is the default file name for an export made at now.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("upi-transactions-%s.csv", now.Format("2006-01-02"))
}

// WriteCSV writes the header and one row per transaction. progress may be nil.
func WriteCSV(w io.Writer, transactions []model.Transaction, progress Progress) error {
	logger := slog.Default().With("component", "export")

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, txn := range transactions {
		if err := cw.Write(Row(txn)); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", txn.ID, err)
		}
		if progress != nil {
			if err := progress.Add(1); err != nil {
				logger.Warn("Progress display failed, continuing without it", "error", err)
				progress = nil
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// CSV writes transactions when the session may export them.
func CSV(session permission.Session, w io.Writer, transactions []model.Transaction, progress Progress) error {
	if err := requirePermission(session, permission.ExportTransactions); err != nil {
		return err
	}
	return WriteCSV(w, transactions, progress)
}
