package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/auth"
	"github.com/mmynk/tripledger/internal/config"
	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/service"
	memstore "github.com/mmynk/tripledger/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             8080,
		StorageBackend:   config.BackendMemory,
		LogLevel:         "info",
		LogFormat:        "text",
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		AuthRequired:     true,
		RateLimit:        "1000-M",
		BalanceCacheSize: 16,
		ShutdownTimeout:  time.Second,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	recorder, err := metrics.NewPrometheusRecorder("tripledger")
	require.NoError(t, err)
	l, err := ledger.New(memstore.New(), ledger.WithMetrics(recorder))
	require.NoError(t, err)

	handler, err := newHandler(cfg, service.NewLedgerService(l, cfg.AuthRequired), recorder)
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func send(t *testing.T, method, url, token, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestHandlerRoutes(t *testing.T) {
	cfg := testConfig()
	server := newTestServer(t, cfg)

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).Generate("planner", nil)
	require.NoError(t, err)

	status, body := send(t, http.MethodGet, server.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "ok")

	// REST requires a token.
	status, _ = send(t, http.MethodPost, server.URL+"/trips", "", `{"name":"Kyoto","currency":"JPY"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = send(t, http.MethodPost, server.URL+"/trips", token, `{"name":"Kyoto","currency":"JPY"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, `"currency":"JPY"`)

	// The Connect surface serves the same data.
	status, body = send(t, http.MethodPost, server.URL+"/tripledger.v1.LedgerService/ListTrips", token, `{}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Kyoto")

	status, _ = send(t, http.MethodPost, server.URL+"/tripledger.v1.LedgerService/ListTrips", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = send(t, http.MethodGet, server.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "tripledger_ledger_operations_total")
}

func TestHandlerRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "2-M"
	server := newTestServer(t, cfg)

	var last int
	for i := 0; i < 3; i++ {
		last, _ = send(t, http.MethodGet, server.URL+"/healthz", "", "")
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestTokenCommand(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--subject", "alice", "--trip", "t1"})
	require.NoError(t, rootCmd.Execute())

	claims, err := auth.NewJWTManager("cli-secret", time.Hour).Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"t1"}, claims.Trips)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
