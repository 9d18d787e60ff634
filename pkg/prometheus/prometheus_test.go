package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_jobs_total",
		Help: "Count of test jobs",
	}, []string{"job"})
	counter.WithLabelValues("elimination").Add(2)

	server := httptest.NewServer(NewHandler(counter))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `test_jobs_total{job="elimination"} 2`)
	require.Contains(t, string(body), "go_goroutines")

	// Registries are not shared, the same collector can be served twice.
	require.NotPanics(t, func() { NewHandler(counter) })
}
