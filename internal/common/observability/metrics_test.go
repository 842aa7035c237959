package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatch_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("forge-test", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	obs.RecordBatch(context.Background(), "http", "success", 25, 3*time.Millisecond)

	// names are escaped to the Prometheus form at scrape time
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	scrape := string(body)
	assert.Contains(t, scrape, "# TYPE forge_batches_total counter")
	assert.Contains(t, scrape, "# TYPE forge_records_total counter")
	assert.Contains(t, scrape, "forge_batch_duration")
	assert.Contains(t, scrape, `source="http"`)
}

func TestRecordBatch_NilSafe(t *testing.T) {
	var obs *Observability
	obs.RecordBatch(context.Background(), "cli", "success", 1, time.Millisecond)
	assert.NoError(t, obs.Shutdown(context.Background()))

	(&Observability{}).RecordBatch(context.Background(), "cli", "success", 1, time.Millisecond)
}
