package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	require.Contains(t, bodyStr, "go_goroutines")
	require.Contains(t, bodyStr, "go_memstats")
}

func TestCustomMetricsRecorded(t *testing.T) {
	RecordOperation("put", 100*time.Millisecond, nil)
	RecordOperation("get", 50*time.Millisecond, nil)
	RecordOperation("get", 200*time.Millisecond, errors.New("not found"))
	RecordTransaction("bolt", "commit", 150*time.Millisecond)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, _ := http.Get(srv.URL)
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	require.Contains(t, bodyStr, "recordstore_operations_total")
	require.Contains(t, bodyStr, "recordstore_operation_duration_seconds")
	require.Contains(t, bodyStr, "recordstore_transactions_total")
	require.Contains(t, bodyStr, `op="put"`)
}

func TestMetricsContentType(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, _ := http.Get(srv.URL)
	contentType := resp.Header.Get("Content-Type")

	require.True(t,
		strings.Contains(contentType, "text/plain") ||
			strings.Contains(contentType, "application/openmetrics-text"),
	)
}

func TestOperationDurationHistogramExposed(t *testing.T) {
	durations := []time.Duration{
		1 * time.Millisecond,
		10 * time.Millisecond,
		100 * time.Millisecond,
		1 * time.Second,
	}

	for _, d := range durations {
		RecordOperation("lookup_secondary", d, nil)
	}

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, _ := http.Get(srv.URL)
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	require.Contains(t, bodyStr, "recordstore_operation_duration_seconds_bucket")
	require.Contains(t, bodyStr, "recordstore_operation_duration_seconds_count")
	require.Contains(t, bodyStr, "recordstore_operation_duration_seconds_sum")
}
