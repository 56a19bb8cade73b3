package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/metrics"
	"github.com/Veraticus/upi-triage/internal/model"
)

const sampleTransactionJSON = `{
	"transaction_id": "UPI20240115000001",
	"amount": 1500,
	"sender_vpa": "user1@paytm",
	"receiver_vpa": "merchant@phonepe",
	"sender_bank": "HDFC",
	"receiver_bank": "SBI",
	"timestamp": "2024-01-15T10:30:00",
	"status": "FAILED",
	"failure_reason": "Insufficient balance in account",
	"failure_type": "insufficient_funds",
	"error_code": "U16",
	"retry_count": 0
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "empty uses default", baseURL: "", want: DefaultBaseURL},
		{name: "trailing slash trimmed", baseURL: "https://api.example.com/", want: "https://api.example.com"},
		{name: "unsupported scheme", baseURL: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.BaseURL())
			assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
		})
	}
}

func TestListTransactions(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		gotQuery = r.URL.RawQuery

		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id should be a uuid")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[`+sampleTransactionJSON+`, {"transaction_id": "", "amount": -5, "sender_vpa": "x", "receiver_vpa": "y", "status": "FAILED"}]`)
	})

	transactions, err := client.ListTransactions(context.Background(), ListOptions{Limit: 50, FailureType: "insufficient_funds"})
	require.NoError(t, err)
	require.Len(t, transactions, 1, "invalid records are dropped")
	assert.Equal(t, "UPI20240115000001", transactions[0].ID)
	assert.Equal(t, model.FailureInsufficientFunds, transactions[0].FailureType)
	assert.Equal(t, "failure_type=insufficient_funds&limit=50", gotQuery)
}

func TestListTransactions_UndecodableRecordsDropped(t *testing.T) {
	tests := []struct {
		name string
		bad  string
	}{
		{name: "unknown timestamp layout", bad: `{"transaction_id":"BAD1","amount":10,"sender_vpa":"a@b","receiver_vpa":"c@d","status":"FAILED","timestamp":"15/01/2024"}`},
		{name: "non-numeric amount", bad: `{"transaction_id":"BAD2","amount":"ten","sender_vpa":"a@b","receiver_vpa":"c@d","status":"FAILED"}`},
		{name: "not an object", bad: `"garbage"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `[`+tt.bad+`,`+sampleTransactionJSON+`]`)
			})

			transactions, err := client.ListTransactions(context.Background(), ListOptions{})
			require.NoError(t, err)
			require.Len(t, transactions, 1)
			assert.Equal(t, "UPI20240115000001", transactions[0].ID)
		})
	}
}

func TestListTransactions_DefaultLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("failure_type"))
		_, _ = io.WriteString(w, `[]`)
	})

	transactions, err := client.ListTransactions(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestDiagnose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/diagnose", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var txn model.Transaction
		require.NoError(t, json.NewDecoder(r.Body).Decode(&txn))
		assert.Equal(t, "UPI20240115000001", txn.ID)

		_, _ = io.WriteString(w, `{
			"transaction_id": "UPI20240115000001",
			"failure_type": "insufficient_funds",
			"diagnosis": "The payer's account lacked funds.",
			"user_guidance": "Add money and retry.",
			"technical_details": "U16 from remitter bank",
			"confidence_score": 0.92,
			"resolution_steps": ["Check balance", "Retry payment"],
			"retry_recommended": true,
			"contact_support": false,
			"estimated_resolution_time": "Immediate"
		}`)
	})

	var txn model.Transaction
	require.NoError(t, json.Unmarshal([]byte(sampleTransactionJSON), &txn))

	diagnosis, err := client.Diagnose(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceHigh, diagnosis.Confidence())
	assert.Equal(t, []string{"Check balance", "Retry payment"}, diagnosis.ResolutionSteps)
	assert.True(t, diagnosis.RetryRecommended)
}

func TestGetTransaction_EscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/UPI%2F1", r.URL.EscapedPath())
		_, _ = io.WriteString(w, sampleTransactionJSON)
	})

	txn, err := client.GetTransaction(context.Background(), "UPI/1")
	require.NoError(t, err)
	assert.Equal(t, "UPI20240115000001", txn.ID)
}

func TestFailureTypes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"timeout": 2, "insufficient_funds": 7, "invalid_vpa": 2}`)
	})

	counts, err := client.FailureTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []FailureTypeCount{
		{Type: model.FailureInsufficientFunds, Count: 7},
		{Type: model.FailureInvalidVPA, Count: 2},
		{Type: model.FailureTimeout, Count: 2},
	}, counts)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","service":"upi-diagnosis-api"}`)
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, "upi-diagnosis-api", health.Service)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantMessage string
		wantStatus  int
		wantData    bool
	}{
		{
			name: "server detail is surfaced",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"detail":"Transaction not found"}`)
			},
			wantMessage: "Transaction not found",
			wantStatus:  http.StatusNotFound,
			wantData:    true,
		},
		{
			name: "server error without detail",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":"boom"}`)
			},
			wantMessage: MessageServer,
			wantStatus:  http.StatusInternalServerError,
			wantData:    true,
		},
		{
			name: "server error with non json body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, `<html>bad gateway</html>`)
			},
			wantMessage: MessageServer,
			wantStatus:  http.StatusBadGateway,
		},
		{
			name: "undecodable success body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `not json`)
			},
			wantStatus: StatusUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GetTransaction(context.Background(), "UPI1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, apiErr.Message)
			}
			assert.Equal(t, tt.wantData, apiErr.Data != nil)
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	m := metrics.New()
	client, err := New(addr, WithMetrics(m), WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = client.Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNetwork())
	assert.Equal(t, MessageNetwork, apiErr.Message)
	assert.Nil(t, apiErr.Data)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `triage_api_requests_total{endpoint="health",status="network_error"} 1`)
}

func TestCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Health(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBearerTokenAndUnauthorized(t *testing.T) {
	creds := NewStaticCredentials("secret-token")
	var authHeaders []string
	resetCalled := false

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Token expired"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"healthy","service":"upi-diagnosis-api"}`)
	}, WithCredentials(creds), OnUnauthorized(func() { resetCalled = true }))

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.True(t, resetCalled)
	assert.Empty(t, creds.Token(), "credential is cleared after a 401")

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())

	assert.Equal(t, []string{"Bearer secret-token", ""}, authHeaders)
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	plain := Normalize(errors.New("something odd"))
	assert.Equal(t, StatusUnexpected, plain.Status)
	assert.Equal(t, "something odd", plain.Message)

	existing := &APIError{Message: "x", Status: 500}
	assert.Same(t, existing, Normalize(existing))

	assert.True(t, strings.Contains(existing.Error(), "HTTP 500"))
}
