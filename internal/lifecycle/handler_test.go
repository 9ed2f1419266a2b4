package lifecycle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, repo *memoryRepo) *httptest.Server {
	t.Helper()
	engine := NewEngine(repo, stubSuppliers{credit: 300}, stubBanks{}, nil, &stubIdempotency{}, 10)
	handler := NewHandler(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)), engine)
	r := chi.NewRouter()
	r.Route("/api/orders", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandlerAdvance(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusDraft))

	resp, body := postJSON(t, srv.URL+"/api/orders/7/advance", `{
		"fromStatus": "draft",
		"toStatus": "payment_confirmed",
		"actorId": 42,
		"fields": {"exchangeRate": 15.85, "paymentAccountId": 2}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])
}

func TestHandlerAdvanceValidationEnvelope(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusDraft))

	resp, body := postJSON(t, srv.URL+"/api/orders/7/advance", `{
		"fromStatus": "draft",
		"toStatus": "payment_confirmed",
		"fields": {"exchangeRate": 0}
	}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, false, body["ok"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Contains(t, errs, "exchangeRate must be > 0")
}

func TestHandlerAdvanceConflict(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusShippedBD))

	resp, _ := postJSON(t, srv.URL+"/api/orders/7/advance", `{
		"fromStatus": "draft",
		"toStatus": "payment_confirmed",
		"fields": {"exchangeRate": 15.85, "paymentAccountId": 2}
	}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandlerReceive(t *testing.T) {
	repo := newTestRepo(StatusInTransitBogura)
	srv := newTestServer(t, repo)

	resp, body := postJSON(t, srv.URL+"/api/orders/7/receive", `{
		"fromStatus": "in_transit_bogura",
		"extraCost": 120,
		"items": [
			{"itemId": 1, "receivedQuantity": 10},
			{"itemId": 2, "receivedQuantity": 3, "lostQuantity": 2}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])
	require.Equal(t, StatusPartiallyCompleted, repo.order.Status)
}

func TestHandlerReceivePreview(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusInTransitBogura))

	resp, body := postJSON(t, srv.URL+"/api/orders/7/receive-preview", `{
		"fromStatus": "in_transit_bogura",
		"items": [
			{"itemId": 1, "receivedQuantity": 10},
			{"itemId": 2, "receivedQuantity": 5}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "completed", body["status"])
}

func TestHandlerTransitionKind(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusDraft))

	resp, err := http.Get(srv.URL + "/api/orders/7/transition-kind?from=in_transit_bogura&to=received_hub")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "requiresReceiving", body["kind"])
}

func TestHandlerGetOrderNotFound(t *testing.T) {
	srv := newTestServer(t, newTestRepo(StatusDraft))

	resp, err := http.Get(fmt.Sprintf("%s/api/orders/999", srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
