package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiMedLedger/pkg/inventory"
)

// LedgerService is the part of inventory.Manager the API uses
// APIが使用する在庫マネージャーの機能
type LedgerService interface {
	inventory.ItemManager
	inventory.LotManager
	inventory.LedgerManager
}

// Handlers holds HTTP handlers for the ledger API
// 台帳API用のHTTPハンドラーを保持
type Handlers struct {
	manager LedgerService
	tracker inventory.Tracker
	health  func(r *http.Request) error
	logger  *zap.Logger
}

// NewHandlers creates new HTTP handlers
// 新しいHTTPハンドラーを作成
func NewHandlers(manager LedgerService, tracker inventory.Tracker, health func(r *http.Request) error, logger *zap.Logger) *Handlers {
	return &Handlers{
		manager: manager,
		tracker: tracker,
		health:  health,
		logger:  logger,
	}
}

// APIResponse represents standard API response format
// 標準的なAPIレスポンス形式を表現
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateLotRequest represents request to create a stock lot
// ロット作成リクエストを表現
type CreateLotRequest struct {
	ExpirationDate inventory.Date `json:"expiration_date"`
	DeliveryDate   inventory.Date `json:"delivery_date"`
	Count          int64          `json:"count"`
}

// CreateEntryRequest represents request to record a ledger entry
// 台帳エントリ作成リクエストを表現
type CreateEntryRequest struct {
	Type      inventory.TransactionType `json:"type"`
	Quantity  int64                     `json:"quantity"`
	Reference string                    `json:"reference"`
}

// UpdateEntryRequest represents request to edit a ledger entry
// 台帳エントリ更新リクエストを表現
type UpdateEntryRequest struct {
	Type     inventory.TransactionType `json:"type"`
	Quantity int64                     `json:"quantity"`
}

// CatalogResponse lists the item vocabularies
// 商品分類の語彙一覧
type CatalogResponse struct {
	Categories    []inventory.Choice `json:"categories"`
	Subcategories []inventory.Choice `json:"subcategories"`
	Packagings    []inventory.Choice `json:"packagings"`
	Units         []inventory.Choice `json:"units"`
}

// HealthCheck handles health check requests
// ヘルスチェックリクエストを処理
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if h.health != nil {
		if err := h.health(r); err != nil {
			h.logger.Warn("ヘルスチェックに失敗しました", zap.Error(err))
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	h.sendJSON(w, code, APIResponse{
		Success: code == http.StatusOK,
		Data: map[string]interface{}{
			"status":    status,
			"timestamp": time.Now(),
			"service":   "zaiMedLedger",
		},
	})
}

// GetCatalog returns the item vocabularies
// 商品分類の語彙を返す
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.sendSuccess(w, http.StatusOK, CatalogResponse{
		Categories:    inventory.Categories(),
		Subcategories: inventory.Subcategories(),
		Packagings:    inventory.Packagings(),
		Units:         inventory.UnitTypes(),
	})
}

// CreateItem handles create item requests
// 商品作成リクエストを処理
func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item inventory.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	if err := h.manager.CreateItem(r.Context(), &item); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusCreated, item)
}

// ListItems handles list items requests
// 商品一覧リクエストを処理
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.handleError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.handleError(w, err)
		return
	}

	items, err := h.manager.ListItems(r.Context(), offset, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, items)
}

// SearchItems handles item search requests
// 商品検索リクエストを処理
func (h *Handlers) SearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.manager.SearchItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, items)
}

// GetItem handles get item requests
// 商品取得リクエストを処理
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.manager.GetItem(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, item)
}

// UpdateItem handles update item requests
// 商品更新リクエストを処理
func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var item inventory.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}
	item.ID = mux.Vars(r)["itemId"]

	if err := h.manager.UpdateItem(r.Context(), &item); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, item)
}

// DeleteItem handles delete item requests
// 商品削除リクエストを処理
func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteItem(r.Context(), mux.Vars(r)["itemId"]); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, map[string]string{
		"message": "商品を削除しました",
	})
}

// CreateLot handles create lot requests
// ロット作成リクエストを処理
func (h *Handlers) CreateLot(w http.ResponseWriter, r *http.Request) {
	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	lot, err := h.manager.CreateLot(r.Context(), inventory.NewLot{
		ItemID:         mux.Vars(r)["itemId"],
		ExpirationDate: req.ExpirationDate,
		DeliveryDate:   req.DeliveryDate,
		Count:          req.Count,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusCreated, lot)
}

// ListLotsByItem handles requests for an item's lots
// 商品のロット一覧リクエストを処理
func (h *Handlers) ListLotsByItem(w http.ResponseWriter, r *http.Request) {
	lots, err := h.manager.ListLotsByItem(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, lots)
}

// GetLot handles get lot requests
// ロット取得リクエストを処理
func (h *Handlers) GetLot(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	lot, err := h.manager.GetLot(r.Context(), lotID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, lot)
}

// UpdateLot handles lot date edits
// ロット日付更新リクエストを処理
func (h *Handlers) UpdateLot(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req inventory.LotUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	lot, err := h.manager.UpdateLot(r.Context(), lotID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, lot)
}

// DeleteLot handles delete lot requests
// ロット削除リクエストを処理
func (h *Handlers) DeleteLot(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.manager.DeleteLot(r.Context(), lotID); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, map[string]string{
		"message": "ロットを削除しました",
	})
}

// GetExpiringLots handles requests for lots expiring soon
// 期限切れ間近ロット取得リクエストを処理
func (h *Handlers) GetExpiringLots(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		h.handleError(w, err)
		return
	}

	lots, err := h.tracker.ExpiringLots(r.Context(), days)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, lots)
}

// GetExpiredLots handles requests for expired lots
// 期限切れロット取得リクエストを処理
func (h *Handlers) GetExpiredLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.tracker.ExpiredLots(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, lots)
}

// AuditLot handles lot audit requests
// ロット監査リクエストを処理
func (h *Handlers) AuditLot(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	audit, err := h.tracker.VerifyLot(r.Context(), lotID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, audit)
}

// CreateEntry handles ledger entry creation
// 台帳エントリ作成リクエストを処理
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	entry, err := h.manager.CreateEntry(r.Context(), lotID, inventory.Posting{Type: req.Type, Quantity: req.Quantity}, req.Reference)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusCreated, entry)
}

// ListEntries handles requests for a lot's ledger entries
// ロットの台帳エントリ一覧リクエストを処理
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	lotID, err := pathID(r, "lotId")
	if err != nil {
		h.handleError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.handleError(w, err)
		return
	}

	entries, err := h.manager.ListEntriesByLot(r.Context(), lotID, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, entries)
}

// GetEntry handles get entry requests
// 台帳エントリ取得リクエストを処理
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "entryId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	entry, err := h.manager.GetEntry(r.Context(), entryID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, entry)
}

// UpdateEntry handles ledger entry edits
// 台帳エントリ更新リクエストを処理
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "entryId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	entry, err := h.manager.UpdateEntry(r.Context(), entryID, inventory.Posting{Type: req.Type, Quantity: req.Quantity})
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, entry)
}

// DeleteEntry handles ledger entry deletion
// 台帳エントリ削除リクエストを処理
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "entryId")
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.manager.DeleteEntry(r.Context(), entryID); err != nil {
		h.handleError(w, err)
		return
	}
	h.sendSuccess(w, http.StatusOK, map[string]string{
		"message": "台帳エントリを削除しました",
	})
}

// pathID parses a numeric path variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, inventory.NewValidationError(name, "IDは整数である必要があります", raw)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, inventory.NewValidationError(name, "整数である必要があります", raw)
	}
	return v, nil
}

// statusCode maps a manager error to an HTTP status
// エラーをHTTPステータスに変換
func statusCode(err error) int {
	switch {
	case errors.Is(err, inventory.ErrValidation),
		errors.Is(err, inventory.ErrInvalidTransactionType):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrItemNotFound),
		errors.Is(err, inventory.ErrLotNotFound),
		errors.Is(err, inventory.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrDuplicateItem),
		errors.Is(err, inventory.ErrDuplicateLot),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrVersionMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleError sends err with its mapped status. Internal errors are logged
// and their details are not returned to the client.
// エラーレスポンスを送信
func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("リクエスト処理に失敗しました", zap.Error(err))
		h.sendError(w, code, "内部エラーが発生しました")
		return
	}
	h.sendError(w, code, err.Error())
}

// sendSuccess sends a successful API response
// 成功APIレスポンスを送信
func (h *Handlers) sendSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	h.sendJSON(w, statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error API response
// エラーAPIレスポンスを送信
func (h *Handlers) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *Handlers) sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("レスポンス送信に失敗しました", zap.Error(err))
	}
}
