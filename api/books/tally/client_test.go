package tally

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTransactionsSuccess(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "accepted": 1})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	ack, err := client.SendTransactions(context.Background(), "Acme Traders", []WireTransaction{
		{ID: 1, TransactionDate: "2024-01-01", TransactionType: "credit", Amount: 10, BankAccount: "A", AssignedLedger: "L", DedupKey: "k"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/tallyConnector", gotPath)
	assert.Equal(t, "Acme Traders", gotBody["company"])
	assert.Equal(t, "ok", ack["status"])

	data, ok := gotBody["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	row := data[0].(map[string]interface{})
	assert.Equal(t, "credit", row["transaction_type"])
	assert.Equal(t, "k", row["dedup_key"])
}

func TestSendTransactionsNon200IsConnectorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"tally exploded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	ack, err := client.SendTransactions(context.Background(), "Acme", nil)
	require.Error(t, err)
	var ce *ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "status 500")
	assert.Equal(t, "tally exploded", ack["error"])
}

func TestSendTransactionsUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := client.SendTransactions(context.Background(), "Acme", nil)
	require.Error(t, err)
	var ce *ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "offline or unreachable")
}

func TestHealthSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", 5*time.Second)
	body, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", body["status"])
}

func TestHealthDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Health(context.Background())
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:5000/", time.Second)
	assert.Equal(t, "http://localhost:5000", client.BaseURL)
}
