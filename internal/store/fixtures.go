package store

import (
	"fmt"
	"time"

	"github.com/Veraticus/upi-triage/internal/model"
)

// SyntheticFixtureCount is the number of generated variants appended to the
// base fixtures.
const SyntheticFixtureCount = 20

func baseFixtures(now time.Time) []model.Transaction {
	source := "huggingface_deepakjoshi1606"
	return []model.Transaction{
		{
			ID:            "UPI20240115000001",
			Amount:        1500.00,
			SenderVPA:     "user1234@paytm",
			ReceiverVPA:   "merchant567@phonepe",
			SenderBank:    "HDFC",
			ReceiverBank:  "ICICI",
			Timestamp:     model.NewTimestamp(now),
			Status:        "failed",
			FailureReason: "Insufficient balance in account",
			ErrorCode:     "E001",
			RetryCount:    2,
			FailureType:   model.FailureInsufficientFunds,
			Metadata: map[string]any{
				"original_issue_type":  "Insufficient Funds",
				"original_description": "Account balance is insufficient for this transaction",
				"dataset_source":       source,
			},
		},
		{
			ID:            "UPI20240115000002",
			Amount:        750.00,
			SenderVPA:     "customer@phonepe",
			ReceiverVPA:   "shop@googlepay",
			SenderBank:    "SBI",
			ReceiverBank:  "AXIS",
			Timestamp:     model.NewTimestamp(now.Add(-time.Hour)),
			Status:        "failed",
			FailureReason: "Invalid VPA provided",
			ErrorCode:     "E002",
			RetryCount:    1,
			FailureType:   model.FailureInvalidVPA,
			Metadata: map[string]any{
				"original_issue_type":  "Invalid VPA",
				"original_description": "The provided VPA is not valid or does not exist",
				"dataset_source":       source,
			},
		},
		{
			ID:            "UPI20240115000003",
			Amount:        2250.00,
			SenderVPA:     "buyer@googlepay",
			ReceiverVPA:   "seller@phonepe",
			SenderBank:    "KOTAK",
			ReceiverBank:  "PNB",
			Timestamp:     model.NewTimestamp(now.Add(-2 * time.Hour)),
			Status:        "failed",
			FailureReason: "Network timeout occurred",
			ErrorCode:     "E003",
			RetryCount:    3,
			FailureType:   model.FailureNetworkIssue,
			Metadata: map[string]any{
				"original_issue_type":  "Network Issue",
				"original_description": "Transaction failed due to network connectivity issues",
				"dataset_source":       source,
			},
		},
	}
}

// Fixtures returns the offline demo data: three base transactions followed
// by synthetic variants TXN100 onwards, spread over the week before now.
func Fixtures(now time.Time) []model.Transaction {
	base := baseFixtures(now)
	out := make([]model.Transaction, 0, len(base)+SyntheticFixtureCount)
	out = append(out, base...)

	week := 7 * 24 * time.Hour
	for i := 0; i < SyntheticFixtureCount; i++ {
		variant := base[i%len(base)]
		variant.ID = fmt.Sprintf("TXN%03d", i+100)
		offset := time.Duration((i*37)%SyntheticFixtureCount) * week / SyntheticFixtureCount
		variant.Timestamp = model.NewTimestamp(now.Add(-offset))
		out = append(out, variant)
	}
	return out
}
