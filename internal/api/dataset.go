package api

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultSpeedMultiplier is the replay speed used when none is given.
const DefaultSpeedMultiplier = 100.0

// DatasetReport is the reply to the dataset management endpoints.
type DatasetReport struct {
	Statistics       map[string]any `json:"statistics,omitempty"`
	Status           string         `json:"status"`
	Message          string         `json:"message,omitempty"`
	InsertedCount    int            `json:"inserted_count,omitempty"`
	TransactionCount int            `json:"transaction_count,omitempty"`
}

// DatasetInfo describes the source dataset and how its issue types map to
// failure types.
type DatasetInfo struct {
	Fields      map[string]string            `json:"fields"`
	Mapping     map[string]map[string]string `json:"mapping"`
	DatasetName string                       `json:"dataset_name"`
	Description string                       `json:"description"`
	Source      string                       `json:"source"`
	Status      string                       `json:"status"`
}

// LoadDataset asks the backend to load the public dataset.
func (c *Client) LoadDataset(ctx context.Context) (DatasetReport, error) {
	var report DatasetReport
	err := c.postJSON(ctx, "dataset_load", "/dataset/load-huggingface", nil, nil, &report)
	return report, err
}

// IngestDataset asks the backend to persist the loaded dataset.
func (c *Client) IngestDataset(ctx context.Context) (DatasetReport, error) {
	var report DatasetReport
	err := c.postJSON(ctx, "dataset_ingest", "/dataset/ingest-to-mongodb", nil, nil, &report)
	return report, err
}

// DatasetStatistics returns statistics about the loaded dataset.
func (c *Client) DatasetStatistics(ctx context.Context) (DatasetReport, error) {
	var report DatasetReport
	err := c.getJSON(ctx, "dataset_statistics", "/dataset/statistics", nil, &report)
	return report, err
}

// DatasetInfo describes the dataset.
func (c *Client) DatasetInfo(ctx context.Context) (DatasetInfo, error) {
	var info DatasetInfo
	err := c.getJSON(ctx, "dataset_info", "/dataset/info", nil, &info)
	return info, err
}

// SimulateRealtime starts a replay of the dataset at speed times real time.
// Non-positive speeds use DefaultSpeedMultiplier.
func (c *Client) SimulateRealtime(ctx context.Context, speed float64) (DatasetReport, error) {
	if speed <= 0 {
		speed = DefaultSpeedMultiplier
	}
	q := url.Values{}
	q.Set("speed_multiplier", strconv.FormatFloat(speed, 'f', -1, 64))

	var report DatasetReport
	err := c.postJSON(ctx, "dataset_simulate", "/dataset/simulate-realtime", q, nil, &report)
	return report, err
}
