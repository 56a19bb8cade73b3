// Package model defines the records exchanged with the diagnosis backend.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a UPI transaction as reported upstream.
type Status string

// Known transaction statuses. The backend is not consistent about case,
// so comparisons go through Is.
const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

// Is reports whether s names the same status as other, ignoring case.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(other))
}

// Normalize returns the upper-case form used for display and export.
func (s Status) Normalize() Status {
	return Status(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Transaction represents a single UPI payment as returned by the backend.
// It is display data only and is never mutated after decoding.
type Transaction struct {
	Timestamp     Timestamp      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ID            string         `json:"transaction_id" validate:"required"`
	SenderVPA     string         `json:"sender_vpa" validate:"required,vpa"`
	ReceiverVPA   string         `json:"receiver_vpa" validate:"required,vpa"`
	SenderBank    string         `json:"sender_bank"`
	ReceiverBank  string         `json:"receiver_bank"`
	Status        Status         `json:"status" validate:"required,txn_status"`
	FailureReason string         `json:"failure_reason,omitempty"`
	FailureType   FailureType    `json:"failure_type,omitempty"`
	ErrorCode     string         `json:"error_code,omitempty"`
	Amount        float64        `json:"amount" validate:"gt=0"`
	RetryCount    int            `json:"retry_count" validate:"gte=0"`
}

// IsFailed reports whether the transaction failed. Failure fields are only
// meaningful when this is true.
func (t Transaction) IsFailed() bool {
	return t.Status.Is(StatusFailed)
}

// NeedsDiagnosis reports whether a diagnosis request makes sense for t.
func (t Transaction) NeedsDiagnosis() bool {
	return t.IsFailed()
}

// FormatAmount renders the amount in rupees.
func (t Transaction) FormatAmount() string {
	return FormatINR(t.Amount)
}

// FormatINR renders an amount with the rupee sign and two decimals.
func FormatINR(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}

// Timestamp wraps time.Time so the backend's ISO-8601 values decode whether
// or not they carry a zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses an ISO-8601 value. Values without a zone are UTC.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: parsed}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		ts.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

// String returns the RFC 3339 form, or an empty string for the zero value.
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
