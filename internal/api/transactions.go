package api

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"

	"github.com/Veraticus/upi-triage/internal/model"
)

// DefaultListLimit matches the backend's default page of transactions.
const DefaultListLimit = 100

// ListOptions narrows a transaction listing on the server side.
type ListOptions struct {
	FailureType string
	Search      string
	Limit       int
	Skip        int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	limit := o.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.FailureType != "" {
		q.Set("failure_type", o.FailureType)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// ListTransactions fetches transactions. Records that fail validation are
// dropped and logged rather than failing the whole call.
func (c *Client) ListTransactions(ctx context.Context, opts ListOptions) ([]model.Transaction, error) {
	var records []json.RawMessage
	if err := c.getJSON(ctx, "list_transactions", "/transactions", opts.values(), &records); err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, 0, len(records))
	for i, raw := range records {
		var txn model.Transaction
		if err := json.Unmarshal(raw, &txn); err != nil {
			c.logger.Warn("Dropping undecodable transaction from backend", "index", i, "error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	valid, errs := model.ValidTransactions(transactions)
	for _, err := range errs {
		c.logger.Warn("Dropping invalid transaction from backend", "error", err)
	}
	return valid, nil
}

// GetTransaction fetches one transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	var txn model.Transaction
	if err := c.getJSON(ctx, "get_transaction", "/transactions/"+url.PathEscape(id), nil, &txn); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// Diagnose asks the backend to explain a failed transaction.
func (c *Client) Diagnose(ctx context.Context, txn model.Transaction) (*model.Diagnosis, error) {
	var diagnosis model.Diagnosis
	if err := c.postJSON(ctx, "diagnose", "/diagnose", nil, txn, &diagnosis); err != nil {
		return nil, err
	}
	return &diagnosis, nil
}

// FailureTypeCount is one entry of the backend's failure distribution.
type FailureTypeCount struct {
	Type  model.FailureType
	Count int
}

// FailureTypes returns the failure distribution, most frequent first.
func (c *Client) FailureTypes(ctx context.Context) ([]FailureTypeCount, error) {
	var distribution map[string]int
	if err := c.getJSON(ctx, "failure_types", "/failure-types", nil, &distribution); err != nil {
		return nil, err
	}

	counts := make([]FailureTypeCount, 0, len(distribution))
	for name, count := range distribution {
		counts = append(counts, FailureTypeCount{Type: model.FailureType(name), Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type < counts[j].Type
	})
	return counts, nil
}

// HealthStatus is the backend's liveness report.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "health", "/health", nil, &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}
