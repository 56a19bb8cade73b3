package model

import "strings"

// FailureType classifies why a transaction failed.
type FailureType string

// Failure types known to the diagnosis backend.
const (
	FailureInsufficientFunds    FailureType = "insufficient_funds"
	FailureIncorrectDetails     FailureType = "incorrect_details"
	FailureNetworkIssue         FailureType = "network_issue"
	FailureBankServerError      FailureType = "bank_server_error"
	FailureDailyLimitExceeded   FailureType = "daily_limit_exceeded"
	FailureInvalidVPA           FailureType = "invalid_vpa"
	FailureTimeout              FailureType = "timeout"
	FailureAuthenticationFailed FailureType = "authentication_failed"
)

var failureLabels = map[FailureType]string{
	FailureInsufficientFunds:    "Insufficient Funds",
	FailureIncorrectDetails:     "Incorrect Details",
	FailureNetworkIssue:         "Network Issue",
	FailureBankServerError:      "Bank Server Error",
	FailureDailyLimitExceeded:   "Daily Limit Exceeded",
	FailureInvalidVPA:           "Invalid VPA",
	FailureTimeout:              "Timeout",
	FailureAuthenticationFailed: "Authentication Failed",
}

// KnownFailureTypes returns the failure types in display order.
func KnownFailureTypes() []FailureType {
	return []FailureType{
		FailureInsufficientFunds,
		FailureIncorrectDetails,
		FailureNetworkIssue,
		FailureBankServerError,
		FailureDailyLimitExceeded,
		FailureInvalidVPA,
		FailureTimeout,
		FailureAuthenticationFailed,
	}
}

// Label returns a human readable name. Unknown tags are title-cased.
func (f FailureType) Label() string {
	if label, ok := failureLabels[f]; ok {
		return label
	}
	if f == "" {
		return "Unknown"
	}
	words := strings.Split(string(f), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsKnown reports whether f is one of the backend's documented tags.
func (f FailureType) IsKnown() bool {
	_, ok := failureLabels[f]
	return ok
}
