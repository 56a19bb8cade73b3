// Package filter narrows the in-memory transaction list for display.
package filter

import (
	"strings"

	"github.com/Veraticus/upi-triage/internal/model"
)

// All is the criteria value that disables a predicate.
const All = "all"

// Criteria holds the active filters. The zero value matches everything.
type Criteria struct {
	Search      string
	Status      string
	FailureType string
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return c.Search == "" && isAll(c.Status) && isAll(c.FailureType)
}

// Match reports whether txn satisfies every active predicate.
func (c Criteria) Match(txn model.Transaction) bool {
	return c.matchSearch(txn) && c.matchStatus(txn) && c.matchFailureType(txn)
}

func (c Criteria) matchSearch(txn model.Transaction) bool {
	term := strings.ToLower(c.Search)
	if term == "" {
		return true
	}
	fields := []string{txn.ID, txn.SenderVPA, txn.ReceiverVPA, txn.FailureReason}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (c Criteria) matchStatus(txn model.Transaction) bool {
	if isAll(c.Status) {
		return true
	}
	return txn.Status.Is(model.Status(c.Status))
}

func (c Criteria) matchFailureType(txn model.Transaction) bool {
	if isAll(c.FailureType) {
		return true
	}
	return string(txn.FailureType) == c.FailureType
}

func isAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// Apply returns the transactions matching c in their original order.
// The input slice is never modified.
func Apply(transactions []model.Transaction, c Criteria) []model.Transaction {
	out := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if c.Match(txn) {
			out = append(out, txn)
		}
	}
	return out
}

// StatusOptions lists the status filter values in cycling order.
func StatusOptions() []string {
	return []string{All, "success", "failed", "pending"}
}

// FailureTypeOptions lists the failure type filter values in cycling order.
func FailureTypeOptions() []string {
	known := model.KnownFailureTypes()
	options := make([]string, 0, len(known)+1)
	options = append(options, All)
	for _, ft := range known {
		options = append(options, string(ft))
	}
	return options
}

// NextStatus returns the status option after current.
func NextStatus(current string) string {
	return next(StatusOptions(), current)
}

// NextFailureType returns the failure type option after current.
func NextFailureType(current string) string {
	return next(FailureTypeOptions(), current)
}

func next(options []string, current string) string {
	if isAll(current) {
		return options[1%len(options)]
	}
	for i, option := range options {
		if strings.EqualFold(option, current) {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
