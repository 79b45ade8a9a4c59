package fedapay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		APIURL:      url,
		SecretKey:   "sk_test",
		Timeout:     2 * time.Second,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})
}

func TestCreateTransaction_NestedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CVu1_1700000000", body["reference"])
		assert.Equal(t, map[string]interface{}{"iso": "XOF"}, body["currency"])
		customer := body["customer"].(map[string]interface{})
		assert.Equal(t, "Utilisateur", customer["firstname"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"v1/transaction":{"id":123,"payment_token":"tok","payment_url":"https://pay/123","status":"pending"}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).CreateTransaction(context.Background(), CreateTransactionRequest{
		Description: "Premium",
		Amount:      5000,
		Reference:   "CVu1_1700000000",
		Customer:    Customer{Email: "a@b.bj"},
	})
	require.NoError(t, err)
	assert.Equal(t, "123", res.ID)
	assert.Equal(t, "tok", res.PaymentToken)
	assert.Equal(t, "https://pay/123", res.PaymentURL)
}

func TestCreateTransaction_IncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transaction":{"id":5}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateTransaction(context.Background(), CreateTransactionRequest{})
	assert.ErrorIs(t, err, ErrIncompleteResponse)
}

func TestClient_InvalidAPIKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransactionStatus(context.Background(), "1")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":7,"status":"approved"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).GetTransactionStatus(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "approved", status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransactionStatus(context.Background(), "7")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"amount invalid"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTransactionStatus(context.Background(), "7")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "amount invalid", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).GetTransactionStatus(context.Background(), "1")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestParseTransaction_Root(t *testing.T) {
	res := parseTransaction([]byte(`{"transaction":{},"id":"9","status":"declined"}`))
	assert.Equal(t, "9", res.ID)
	assert.Equal(t, "declined", res.Status)
}

func TestBackoff_Capped(t *testing.T) {
	c := NewClient(Config{BaseBackoff: time.Second, MaxBackoff: 3 * time.Second})
	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 3*time.Second, c.backoff(3))
}
