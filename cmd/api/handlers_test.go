package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
	"github.com/nemonet1337/zaiMedLedger/pkg/inventory/storage"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := prometheus.NewRegistry()
	metrics, err := inventory.NewMetrics(registry)
	require.NoError(t, err)

	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	manager := inventory.NewManager(store, nil, zap.NewNop(), nil,
		inventory.WithClock(func() time.Time { return now }),
		inventory.WithMetrics(metrics),
	)
	handlers := NewHandlers(manager, manager.Tracker(), func(r *http.Request) error {
		return store.Ping(r.Context())
	}, zap.NewNop())

	return &testServer{
		t:      t,
		router: setupRouter(handlers, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), zap.NewNop()),
	}
}

// do はリクエストを送信しレスポンスを返す
func (s *testServer) do(method, path string, body interface{}) (int, testResponse) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userHeader, "pharmacist-01")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp testResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (s *testServer) createItem() inventory.Item {
	s.t.Helper()

	code, resp := s.do("POST", "/api/v1/items", map[string]interface{}{
		"category":     "Pain Relievers",
		"subcategory":  "Analgesics",
		"name":         "Paracetamol 500mg",
		"brand_name":   "Biogesic",
		"generic_name": "Paracetamol",
		"dosage_form":  "Tablet",
		"packaging":    "10_per_blister",
		"quantity":     10,
		"unit":         "Each",
	})
	require.Equal(s.t, http.StatusCreated, code, resp.Error)

	var item inventory.Item
	require.NoError(s.t, json.Unmarshal(resp.Data, &item))
	return item
}

func (s *testServer) createLot(itemID string, count int64) inventory.StockLot {
	s.t.Helper()

	code, resp := s.do("POST", "/api/v1/items/"+itemID+"/lots", map[string]interface{}{
		"expiration_date": "2026-03-31",
		"count":           count,
	})
	require.Equal(s.t, http.StatusCreated, code, resp.Error)

	var lot inventory.StockLot
	require.NoError(s.t, json.Unmarshal(resp.Data, &lot))
	return lot
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	h := NewHandlers(nil, nil, func(*http.Request) error { return errors.New("down") }, zap.NewNop())
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do("GET", "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, code)

	var catalog CatalogResponse
	require.NoError(t, json.Unmarshal(resp.Data, &catalog))
	assert.Len(t, catalog.Categories, len(inventory.Categories()))
	assert.NotEmpty(t, catalog.Units)
}

// TestLedgerFlow はAPI経由の台帳操作の流れを確認
func TestLedgerFlow(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem()
	lot := s.createLot(item.ID, 5)
	lotPath := fmt.Sprintf("/api/v1/lots/%d", lot.ID)

	code, resp := s.do("POST", lotPath+"/entries", CreateEntryRequest{Type: inventory.TransactionTypeAdd, Quantity: 5, Reference: "PO-001"})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var add inventory.LedgerEntry
	require.NoError(t, json.Unmarshal(resp.Data, &add))
	assert.Equal(t, "pharmacist-01", add.UserID)

	code, resp = s.do("POST", lotPath+"/entries", CreateEntryRequest{Type: inventory.TransactionTypeRemove, Quantity: 3})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var rm inventory.LedgerEntry
	require.NoError(t, json.Unmarshal(resp.Data, &rm))

	code, _ = s.do("PUT", fmt.Sprintf("/api/v1/entries/%d", add.ID), UpdateEntryRequest{Type: inventory.TransactionTypeAdd, Quantity: 8})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do("DELETE", fmt.Sprintf("/api/v1/entries/%d", rm.ID), nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do("GET", lotPath, nil)
	require.Equal(t, http.StatusOK, code)
	var got inventory.StockLot
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, int64(13), got.Count)

	code, resp = s.do("GET", lotPath+"/entries", nil)
	require.Equal(t, http.StatusOK, code)
	var entries []inventory.LedgerEntry
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	assert.Len(t, entries, 1)

	code, resp = s.do("GET", lotPath+"/audit", nil)
	require.Equal(t, http.StatusOK, code)
	var audit inventory.LotAudit
	require.NoError(t, json.Unmarshal(resp.Data, &audit))
	assert.True(t, audit.Consistent)

	code, resp = s.do("GET", "/api/v1/lots/expiring?days=365", nil)
	require.Equal(t, http.StatusOK, code)
	var expiring []inventory.StockLot
	require.NoError(t, json.Unmarshal(resp.Data, &expiring))
	assert.Len(t, expiring, 1)

	code, _ = s.do("GET", "/api/v1/lots/expired", nil)
	assert.Equal(t, http.StatusOK, code)
}

// TestErrorStatus はエラーとHTTPステータスの対応を確認
func TestErrorStatus(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem()
	lot := s.createLot(item.ID, 2)
	lotPath := fmt.Sprintf("/api/v1/lots/%d", lot.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"在庫不足", "POST", lotPath + "/entries", CreateEntryRequest{Type: inventory.TransactionTypeRemove, Quantity: 3}, http.StatusConflict},
		{"無効なタイプ", "POST", lotPath + "/entries", CreateEntryRequest{Type: "transfer", Quantity: 1}, http.StatusBadRequest},
		{"数量ゼロ", "POST", lotPath + "/entries", CreateEntryRequest{Type: inventory.TransactionTypeAdd, Quantity: 0}, http.StatusBadRequest},
		{"存在しないロット", "GET", "/api/v1/lots/999", nil, http.StatusNotFound},
		{"存在しないエントリ", "DELETE", "/api/v1/entries/999", nil, http.StatusNotFound},
		{"存在しない商品", "GET", "/api/v1/items/no-such-item", nil, http.StatusNotFound},
		{"ロット重複", "POST", "/api/v1/items/" + item.ID + "/lots", map[string]interface{}{"expiration_date": "2026-03-31", "count": 1}, http.StatusConflict},
		{"過去の有効期限", "POST", "/api/v1/items/" + item.ID + "/lots", map[string]interface{}{"expiration_date": "2025-01-01", "count": 1}, http.StatusBadRequest},
		{"無効な日付形式", "POST", "/api/v1/items/" + item.ID + "/lots", map[string]interface{}{"expiration_date": "31/03/2026"}, http.StatusBadRequest},
		{"カタログ外の単位", "POST", "/api/v1/items", map[string]interface{}{"name": "X", "unit": "dozen"}, http.StatusBadRequest},
		{"空の検索", "GET", "/api/v1/items/search?q=", nil, http.StatusBadRequest},
		{"無効な日数", "GET", "/api/v1/lots/expiring?days=abc", nil, http.StatusBadRequest},
		{"負の日数", "GET", "/api/v1/lots/expiring?days=-1", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code, resp.Error)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

// TestUserHeaderTooLong は長すぎるX-User-IDが400で拒否されることを確認
func TestUserHeaderTooLong(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem()
	lot := s.createLot(item.ID, 2)
	lotPath := fmt.Sprintf("/api/v1/lots/%d", lot.ID)

	body := `{"type":"add","quantity":1}`
	req := httptest.NewRequest("POST", lotPath+"/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userHeader, strings.Repeat("u", 1000))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)

	code, entries := s.do("GET", lotPath+"/entries", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(entries.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem()
	lot := s.createLot(item.ID, 1)

	s.do("POST", fmt.Sprintf("/api/v1/lots/%d/entries", lot.ID), CreateEntryRequest{Type: inventory.TransactionTypeAdd, Quantity: 1})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medledger_ledger_operations_total{operation="create",result="success",type="add"} 1`)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusCode(inventory.NewValidationError("x", "y", "z")))
	assert.Equal(t, http.StatusConflict, statusCode(inventory.ErrVersionMismatch))
	assert.Equal(t, http.StatusConflict, statusCode(inventory.ErrDuplicateItem))
	assert.Equal(t, http.StatusNotFound, statusCode(fmt.Errorf("wrap: %w", inventory.ErrEntryNotFound)))
	assert.Equal(t, http.StatusInternalServerError, statusCode(inventory.NewStorageError("op", "msg", errors.New("boom"))))
}

func TestInternalErrorHidesDetails(t *testing.T) {
	h := NewHandlers(nil, nil, nil, zap.NewNop())
	rec := httptest.NewRecorder()

	h.handleError(rec, inventory.NewStorageError("get_lot", "取得に失敗しました", errors.New("connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
