package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/upi-triage/internal/export"
	"github.com/Veraticus/upi-triage/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetTitle      = "Transactions"
	timestampLayout = "2006-01-02 15:04:05"
	currencyPattern = "₹#,##0.00"
)

// Writer implements export.ReportWriter for Google Sheets.
type Writer struct {
	service  *sheets.Service
	logger   *slog.Logger
	location *time.Location
	config   Config
}

var _ export.ReportWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(service, config, logger), nil
}

// NewWriterWithService wraps an existing Sheets service.
func NewWriterWithService(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	return newWriter(service, config, logger)
}

func newWriter(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	location, err := time.LoadLocation(config.TimeZone)
	if err != nil || config.TimeZone == "" {
		location = time.UTC
	}
	return &Writer{
		service:  service,
		logger:   logger.With("component", "sheets"),
		location: location,
		config:   config,
	}
}

// Write publishes report, replacing the sheet contents.
func (w *Writer) Write(ctx context.Context, report export.Report) error {
	w.logger.Info("starting report generation",
		"transactions", len(report.Transactions),
		"criteria", report.Criteria)

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	layout := w.prepareReportData(report)

	if err := w.writeData(ctx, spreadsheetID, layout.values); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, spreadsheetID, layout); err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report generation completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(layout.values))

	return nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.location.String(),
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: sheetTitle,
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// reportLayout is the rendered sheet plus the row where the transaction
// table header sits.
type reportLayout struct {
	values        [][]any
	detailsHeader int
}

func (w *Writer) prepareReportData(report export.Report) reportLayout {
	stats := report.Statistics
	criteria := report.Criteria
	if criteria == "" {
		criteria = "none"
	}

	values := make([][]any, 0, 20+len(stats.FailureTypes)+len(report.Transactions))
	values = append(values,
		[]any{report.Title, "Generated " + report.GeneratedAt.In(w.location).Format(timestampLayout)},
		[]any{},
		[]any{"Summary"},
		[]any{"Filters", criteria},
		[]any{"Total Transactions", stats.Summary.Total},
		[]any{"Failed", stats.Summary.Failed},
		[]any{"Pending", stats.Summary.Pending},
		[]any{"Success Rate", fmt.Sprintf("%.1f%%", stats.Summary.SuccessRate)},
		[]any{"Total Volume", model.FormatINR(stats.Summary.TotalVolume)},
		[]any{},
		[]any{"Failure Breakdown"},
		[]any{"Failure Type", "Count", "Share"},
	)

	for _, stat := range stats.FailureTypes {
		values = append(values, []any{
			stat.Type.Label(),
			stat.Count,
			fmt.Sprintf("%.1f%%", stat.Percentage),
		})
	}

	values = append(values,
		[]any{},
		[]any{},
		[]any{"Transaction Details"},
	)

	header := make([]any, len(export.Columns))
	for i, column := range export.Columns {
		header[i] = column
	}
	detailsHeader := len(values)
	values = append(values, header)

	for _, txn := range report.Transactions {
		timestamp := ""
		if !txn.Timestamp.IsZero() {
			timestamp = txn.Timestamp.In(w.location).Format(timestampLayout)
		}
		values = append(values, []any{
			txn.ID,
			txn.Amount,
			txn.SenderVPA,
			txn.ReceiverVPA,
			string(txn.Status.Normalize()),
			txn.FailureReason,
			timestamp,
		})
	}

	return reportLayout{values: values, detailsHeader: detailsHeader}
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, layout reportLayout) error {
	totalRows := int64(len(layout.values))
	detailsHeader := int64(layout.detailsHeader)

	requests := []*sheets.Request{
		boldRange(0, 1, 0, 2, 16),
		boldRange(detailsHeader, detailsHeader+1, 0, int64(len(export.Columns)), 0),
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    detailsHeader + 1,
					EndRowIndex:      totalRows,
					StartColumnIndex: 1,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: currencyPattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(export.Columns)),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

func boldRange(startRow, endRow, startCol, endCol int64, fontSize int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          0,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{
						Bold:     true,
						FontSize: fontSize,
					},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}
