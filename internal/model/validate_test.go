package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "UPI20240115000001",
		Amount:      1500,
		SenderVPA:   "user1@paytm",
		ReceiverVPA: "merchant@phonepe",
		Status:      StatusSuccess,
		Timestamp:   NewTimestamp(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*Transaction)
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "lower case status", mutate: func(tx *Transaction) { tx.Status = "pending" }},
		{name: "missing id", mutate: func(tx *Transaction) { tx.ID = "" }, wantErr: true, errMsg: "ID failed required"},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = 0 }, wantErr: true, errMsg: "Amount failed gt"},
		{name: "bad sender vpa", mutate: func(tx *Transaction) { tx.SenderVPA = "no-at-sign" }, wantErr: true, errMsg: "SenderVPA failed vpa"},
		{name: "unknown status", mutate: func(tx *Transaction) { tx.Status = "REVERSED" }, wantErr: true, errMsg: "Status failed txn_status"},
		{name: "negative retries", mutate: func(tx *Transaction) { tx.RetryCount = -1 }, wantErr: true, errMsg: "RetryCount failed gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validTransaction()
			tt.mutate(&txn)
			err := txn.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidTransactions(t *testing.T) {
	bad := validTransaction()
	bad.ID = ""
	second := validTransaction()
	second.ID = "UPI20240115000003"

	valid, errs := ValidTransactions([]Transaction{validTransaction(), bad, second})
	require.Len(t, valid, 2)
	assert.Equal(t, "UPI20240115000001", valid[0].ID)
	assert.Equal(t, "UPI20240115000003", valid[1].ID)
	assert.Len(t, errs, 1)
}

func TestIsVPA(t *testing.T) {
	assert.True(t, IsVPA("user.name-1@okhdfcbank"))
	assert.False(t, IsVPA("user@"))
	assert.False(t, IsVPA("@bank"))
	assert.False(t, IsVPA("user@bank@extra"))
}
