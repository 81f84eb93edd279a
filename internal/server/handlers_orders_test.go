package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, payload
}

func apiTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestAPI_RequiresToken(t *testing.T) {
	ts, _ := apiTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, ts, http.MethodGet, "/api/v1/orders", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CreateOrder(t *testing.T) {
	ts, _ := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	resp, payload := doRequest(t, ts, http.MethodPost, "/api/v1/orders", token,
		map[string]any{"customer": "Acme", "number": "1001"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.Unmarshal(payload, &order))
	assert.Equal(t, "Acme", order.Customer)
	assert.Equal(t, "1001", order.Number)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestAPI_CreateOrderInvalidStatus(t *testing.T) {
	ts, _ := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/v1/orders", token,
		map[string]any{"customer": "Acme", "status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetOrder(t *testing.T) {
	ts, srv := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	created, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	resp, payload := doRequest(t, ts, http.MethodGet, "/api/v1/orders/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.Unmarshal(payload, &order))
	assert.Equal(t, created.ID, order.ID)
}

func TestAPI_GetOrderNotFound(t *testing.T) {
	ts, _ := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/orders/99", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_GetOrderInvalidID(t *testing.T) {
	ts, _ := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	resp, _ := doRequest(t, ts, http.MethodGet, "/api/v1/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetOrderSnapshot(t *testing.T) {
	ts, srv := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	created, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	resp, payload := doRequest(t, ts, http.MethodGet, "/api/v1/orders/1/latest", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.Unmarshal(payload, &order))
	assert.Equal(t, created.ID, order.ID)
}

func TestAPI_UpdateOrderStatus(t *testing.T) {
	ts, srv := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	_, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	resp, payload := doRequest(t, ts, http.MethodPatch, "/api/v1/orders/1", token,
		map[string]any{"status": "in_production"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.Unmarshal(payload, &order))
	assert.Equal(t, domain.StatusInProduction, order.Status)
}

func TestAPI_FinanceFlagRequiresAdmin(t *testing.T) {
	ts, srv := apiTestServer(t)

	_, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	resp, _ := doRequest(t, ts, http.MethodPatch, "/api/v1/orders/1",
		signToken(t, 7, "alice", false), map[string]any{"finance": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, payload := doRequest(t, ts, http.MethodPatch, "/api/v1/orders/1",
		signToken(t, 1, "admin", true), map[string]any{"finance": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.Unmarshal(payload, &order))
	assert.True(t, order.Finance)
}

func TestAPI_DeleteRequiresAdmin(t *testing.T) {
	ts, srv := apiTestServer(t)

	_, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	resp, _ := doRequest(t, ts, http.MethodDelete, "/api/v1/orders/1",
		signToken(t, 7, "alice", false), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/orders/1",
		signToken(t, 1, "admin", true), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, ts, http.MethodGet, "/api/v1/orders/1",
		signToken(t, 1, "admin", true), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListOrdersByStatus(t *testing.T) {
	ts, srv := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	_, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)
	_, err = srv.orders.Create(context.Background(),
		domain.OrderCreate{Customer: "Beta", Status: domain.StatusReady}, nil)
	require.NoError(t, err)

	resp, payload := doRequest(t, ts, http.MethodGet, "/api/v1/orders/status/ready", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []domain.Order
	require.NoError(t, json.Unmarshal(payload, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Beta", list[0].Customer)

	resp, _ = doRequest(t, ts, http.MethodGet, "/api/v1/orders/status/bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_LatestNotification(t *testing.T) {
	ts, srv := apiTestServer(t)
	token := signToken(t, 7, "alice", false)

	resp, payload := doRequest(t, ts, http.MethodGet, "/api/v1/notifications/latest", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.EqualValues(t, 0, out["latest_order_id"])
	assert.NotEmpty(t, out["timestamp"])

	_, err := srv.orders.Create(context.Background(), domain.OrderCreate{Customer: "Acme"}, nil)
	require.NoError(t, err)

	_, payload = doRequest(t, ts, http.MethodGet, "/api/v1/notifications/latest", token, nil)
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.EqualValues(t, 1, out["latest_order_id"])
}

func TestLiveness(t *testing.T) {
	ts, _ := apiTestServer(t)

	resp, payload := doRequest(t, ts, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestVersionEndpoint(t *testing.T) {
	ts, _ := apiTestServer(t)

	resp, payload := doRequest(t, ts, http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.Contains(t, out, "go_version")
}
