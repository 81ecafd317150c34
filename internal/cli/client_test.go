package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalRooms":2,"totalPlayers":5,"connectedClients":3,"activeRaces":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var result StatsResult
	require.NoError(t, client.Get("/api/v1/stats", &result))
	assert.Equal(t, 2, result.TotalRooms)
	assert.Equal(t, 5, result.TotalPlayers)
	assert.Equal(t, 3, result.ConnectedClients)
	assert.Equal(t, 1, result.ActiveRaces)
}

func TestClientGetAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"QUOTES_NOT_LOADED","message":"Quotes are not loaded"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Get("/api/v1/stats", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quotes are not loaded")
	assert.Contains(t, err.Error(), "QUOTES_NOT_LOADED")
}

func TestClientGetNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.Get("/api/v1/health", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")

	var result HealthResult
	require.NoError(t, client.Get("/api/v1/health", &result))
	assert.Equal(t, "ok", result.Status)
}
