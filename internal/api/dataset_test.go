package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetEndpoints(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/dataset/load-huggingface":
			_, _ = io.WriteString(w, `{"status":"success","message":"Successfully loaded and processed 500 transactions","statistics":{"total":500}}`)
		case "/dataset/ingest-to-mongodb":
			_, _ = io.WriteString(w, `{"status":"success","message":"ok","inserted_count":500}`)
		case "/dataset/statistics":
			_, _ = io.WriteString(w, `{"status":"no_data","message":"No dataset loaded. Use /dataset/load-huggingface first."}`)
		case "/dataset/simulate-realtime":
			_, _ = io.WriteString(w, `{"status":"started","message":"Real-time simulation started with 100x speed","transaction_count":500}`)
		case "/dataset/info":
			_, _ = io.WriteString(w, `{"dataset_name":"mock-upi-txn-data","source":"Hugging Face Datasets","status":"loaded","fields":{"Amount":"Transaction amount"},"mapping":{"issue_types_to_failure_types":{"invalid vpa":"invalid_vpa"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	loaded, err := client.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "success", loaded.Status)
	assert.InDelta(t, 500.0, loaded.Statistics["total"], 0.001)

	ingested, err := client.IngestDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, ingested.InsertedCount)

	stats, err := client.DatasetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "no_data", stats.Status)

	sim, err := client.SimulateRealtime(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 500, sim.TransactionCount)

	info, err := client.DatasetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "invalid_vpa", info.Mapping["issue_types_to_failure_types"]["invalid vpa"])

	assert.Equal(t, []string{
		"POST /dataset/load-huggingface",
		"POST /dataset/ingest-to-mongodb",
		"GET /dataset/statistics",
		"POST /dataset/simulate-realtime?speed_multiplier=100",
		"GET /dataset/info",
	}, paths)
}
