package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/upi-triage/internal/model"
)

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: "UPI20240115000001", SenderVPA: "user1@paytm", ReceiverVPA: "merchant@phonepe", Status: "FAILED", FailureReason: "Insufficient balance", FailureType: model.FailureInsufficientFunds},
		{ID: "UPI20240115000002", SenderVPA: "user2@icici", ReceiverVPA: "invalid@vpa", Status: "FAILED", FailureReason: "Invalid VPA", FailureType: model.FailureInvalidVPA},
		{ID: "UPI20240115000003", SenderVPA: "user3@hdfc", ReceiverVPA: "shop@paytm", Status: "SUCCESS"},
		{ID: "TXN100", SenderVPA: "user0@paytm", ReceiverVPA: "merchant0@phonepe", Status: "pending"},
	}
}

func ids(transactions []model.Transaction) []string {
	out := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		out = append(out, txn.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "zero criteria matches everything",
			criteria: Criteria{},
			want:     []string{"UPI20240115000001", "UPI20240115000002", "UPI20240115000003", "TXN100"},
		},
		{
			name:     "explicit all values match everything",
			criteria: Criteria{Status: All, FailureType: All},
			want:     []string{"UPI20240115000001", "UPI20240115000002", "UPI20240115000003", "TXN100"},
		},
		{
			name:     "search is case insensitive across vpas",
			criteria: Criteria{Search: "PAYTM"},
			want:     []string{"UPI20240115000001", "UPI20240115000003", "TXN100"},
		},
		{
			name:     "search matches failure reason",
			criteria: Criteria{Search: "balance"},
			want:     []string{"UPI20240115000001"},
		},
		{
			name:     "lower case status matches upper case data",
			criteria: Criteria{Status: "failed"},
			want:     []string{"UPI20240115000001", "UPI20240115000002"},
		},
		{
			name:     "upper case status matches lower case data",
			criteria: Criteria{Status: "PENDING"},
			want:     []string{"TXN100"},
		},
		{
			name:     "predicates combine with and",
			criteria: Criteria{Search: "paytm", Status: "failed"},
			want:     []string{"UPI20240115000001"},
		},
		{
			name:     "failure type equality",
			criteria: Criteria{FailureType: "invalid_vpa"},
			want:     []string{"UPI20240115000002"},
		},
		{
			name:     "search whitespace is part of the term",
			criteria: Criteria{Search: " paytm"},
			want:     []string{},
		},
		{
			name:     "search term spanning a space in the reason",
			criteria: Criteria{Search: "t balance"},
			want:     []string{"UPI20240115000001"},
		},
		{
			name:     "no match is an empty result",
			criteria: Criteria{Search: "nothing-like-this"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := sampleTransactions()
			got := Apply(input, tt.criteria)
			assert.Equal(t, tt.want, ids(got))
			assertOrderedSubset(t, ids(input), ids(got))
		})
	}
}

// assertOrderedSubset checks that every id in sub appears in all, in the same order.
func assertOrderedSubset(t *testing.T, all, sub []string) {
	t.Helper()
	next := 0
	for _, id := range sub {
		for next < len(all) && all[next] != id {
			next++
		}
		require.Less(t, next, len(all), "%s is missing or out of order", id)
		next++
	}
}

func TestApply_Idempotent(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
	}{
		{name: "zero", criteria: Criteria{}},
		{name: "search", criteria: Criteria{Search: "PAYTM"}},
		{name: "status", criteria: Criteria{Status: "failed"}},
		{name: "failure type", criteria: Criteria{FailureType: "invalid_vpa"}},
		{name: "combined", criteria: Criteria{Search: "paytm", Status: "failed", FailureType: "insufficient_funds"}},
		{name: "no match", criteria: Criteria{Search: "nothing-like-this"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := Apply(sampleTransactions(), tt.criteria)
			twice := Apply(once, tt.criteria)
			assert.Equal(t, once, twice)
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	input := sampleTransactions()
	_ = Apply(input, Criteria{Status: "success"})
	assert.Equal(t, ids(sampleTransactions()), ids(input))
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.True(t, Criteria{Status: "ALL", FailureType: "all"}.IsZero())
	assert.False(t, Criteria{Search: " "}.IsZero())
	assert.False(t, Criteria{Status: "failed"}.IsZero())
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, "success", NextStatus(""))
	assert.Equal(t, "success", NextStatus(All))
	assert.Equal(t, "failed", NextStatus("success"))
	assert.Equal(t, "pending", NextStatus("FAILED"))
	assert.Equal(t, All, NextStatus("pending"))
	assert.Equal(t, All, NextStatus("reversed"))
}

func TestNextFailureType(t *testing.T) {
	options := FailureTypeOptions()
	require.Len(t, options, 9)

	current := All
	seen := make([]string, 0, len(options))
	for range options {
		current = NextFailureType(current)
		seen = append(seen, current)
	}
	assert.Equal(t, "insufficient_funds", seen[0])
	assert.Equal(t, All, seen[len(seen)-1])
}

func TestView_ApplyResetsPage(t *testing.T) {
	transactions := make([]model.Transaction, 0, 25)
	for i := 0; i < 25; i++ {
		status := model.StatusSuccess
		if i%2 == 0 {
			status = model.StatusFailed
		}
		transactions = append(transactions, model.Transaction{ID: fmt.Sprintf("TXN%03d", i), Status: status})
	}

	view := NewView(transactions, 10)
	assert.Equal(t, 3, view.TotalPages())

	require.True(t, view.NextPage())
	require.True(t, view.NextPage())
	assert.Equal(t, 3, view.CurrentPage())
	assert.Len(t, view.Current(), 5)
	assert.False(t, view.NextPage())

	view.Apply(Criteria{Status: "failed"})
	assert.Equal(t, 1, view.CurrentPage())
	assert.Equal(t, 13, view.Len())
	assert.Equal(t, 2, view.TotalPages())

	view.SetPage(2)
	view.SetSource(transactions[:4])
	assert.Equal(t, 1, view.CurrentPage())
	assert.Equal(t, []string{"TXN000", "TXN002"}, ids(view.Current()))
}

func TestView_PageClamps(t *testing.T) {
	view := NewView(sampleTransactions(), 0)
	assert.Equal(t, DefaultPageSize, view.PageSize())
	assert.Equal(t, 1, view.TotalPages())
	assert.Len(t, view.Page(5), 4)
	assert.Len(t, view.Page(-1), 4)
	assert.False(t, view.PrevPage())

	empty := NewView(nil, 10)
	assert.Equal(t, 0, empty.TotalPages())
	assert.Nil(t, empty.Current())
	assert.Equal(t, 1, empty.CurrentPage())
}
