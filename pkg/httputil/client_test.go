package httputil

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goapi-io/goapi-idx/pkg/config"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Env:      "development",
		LogLevel: "error",
		GoAPI: config.GoAPIConfig{
			APIKey:  "secret-key",
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig("https://api.goapi.io/")
	client := New(cfg, logger.Nop())

	require.NotNil(t, client)
	assert.Equal(t, "https://api.goapi.io", client.baseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.False(t, client.retryConfig.Enabled, "retry is opt-in")
}

func TestWithRetry(t *testing.T) {
	client := New(testConfig("http://localhost"), logger.Nop()).WithRetry(5, 2*time.Second)

	assert.True(t, client.retryConfig.Enabled)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stock/idx/prices", r.URL.Path)
		assert.Equal(t, "BBCA,TLKM", r.URL.Query().Get("symbols"))
		assert.Equal(t, "secret-key", r.Header.Get(APIKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), logger.Nop())

	resp, err := client.Get(context.Background(), "/stock/idx/prices", url.Values{"symbols": {"BBCA,TLKM"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGet_NoParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := New(testConfig(server.URL), logger.Nop()).Get(context.Background(), "/stock/idx/companies", nil)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestGet_DoesNotLogAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	cfg := testConfig(server.URL)
	cfg.LogLevel = "debug"
	client := New(cfg, logger.NewWithWriter(cfg, &buf))

	resp, err := client.Get(context.Background(), "/stock/idx/trending", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), "/stock/idx/trending")
	assert.NotContains(t, buf.String(), "secret-key")
}

func TestGet_LogsPathWithoutQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	cfg := testConfig(server.URL)
	cfg.LogLevel = "debug"
	client := New(cfg, logger.NewWithWriter(cfg, &buf))

	params := url.Values{"symbols": {"BBCA,TLKM"}}
	resp, err := client.Get(context.Background(), "/stock/idx/prices", params)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), `"path":"/stock/idx/prices"`)
	assert.NotContains(t, buf.String(), "symbols=")
	assert.NotContains(t, buf.String(), "TLKM")
}

func TestNew_NilLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)

	assert.NotPanics(t, func() {
		resp, err := client.Get(context.Background(), "/stock/idx/companies", nil)
		require.NoError(t, err)
		resp.Body.Close()
	})
}

func TestGet_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := New(testConfig(server.URL), logger.Nop()).Get(context.Background(), "/stock/idx/companies", nil)
	assert.Error(t, err)
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), "/stock/idx/indices", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestNoRetryByDefault(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resp, err := New(testConfig(server.URL), logger.Nop()).Get(context.Background(), "/stock/idx/indices", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}
