package inventory

import (
	"errors"
	"fmt"
)

// Common inventory errors
// 共通の在庫エラー定義

var (
	// ErrItemNotFound is returned when an item doesn't exist
	// 商品が存在しない場合のエラー
	ErrItemNotFound = errors.New("商品が見つかりません")

	// ErrLotNotFound is returned when a stock lot doesn't exist
	// ロットが存在しない場合のエラー
	ErrLotNotFound = errors.New("ロットが見つかりません")

	// ErrEntryNotFound is returned when a ledger entry doesn't exist
	// 台帳エントリが存在しない場合のエラー
	ErrEntryNotFound = errors.New("台帳エントリが見つかりません")

	// ErrInsufficientStock is returned when there's not enough stock
	// 在庫不足の場合のエラー
	ErrInsufficientStock = errors.New("在庫が不足しています")

	// ErrInvalidTransactionType is returned for a type other than add/remove
	// 入庫・出庫以外のトランザクションタイプの場合のエラー
	ErrInvalidTransactionType = errors.New("無効なトランザクションタイプです")

	// ErrValidation is matched by every input validation failure
	// 入力バリデーション失敗全般
	ErrValidation = errors.New("バリデーションエラー")

	// ErrInvalidEnumValue is returned when a catalog value is unknown
	// カタログに存在しない値の場合のエラー
	ErrInvalidEnumValue = errors.New("カタログに存在しない値です")

	// ErrPastExpiration is returned when a new lot has already expired
	// 過去の有効期限でロットを作成しようとした場合のエラー
	ErrPastExpiration = errors.New("有効期限が過去の日付です")

	// ErrDuplicateLot is returned when a lot with the same item and expiration exists
	// 同じ商品・有効期限のロットが既に存在する場合のエラー
	ErrDuplicateLot = errors.New("同じ有効期限のロットが既に存在します")

	// ErrDuplicateItem is returned when trying to create an item that already exists
	// 既に存在する商品を作成しようとした場合のエラー
	ErrDuplicateItem = errors.New("商品は既に存在します")

	// ErrVersionMismatch is returned when optimistic locking fails
	// 楽観的ロック失敗時のエラー
	ErrVersionMismatch = errors.New("バージョンが一致しません。他のユーザーによって更新されています")
)

// ValidationError represents a validation error with details
// 詳細付きバリデーションエラーを表現
type ValidationError struct {
	Field   string `json:"field"`   // エラーフィールド
	Message string `json:"message"` // エラーメッセージ
	Value   string `json:"value"`   // 無効な値
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("バリデーションエラー [%s]: %s (値: %s)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidEnumValueError is returned by catalog validation
// カタログ外の値を表現
type InvalidEnumValueError struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("無効な%s: %q", e.Field, e.Value)
}

func (e *InvalidEnumValueError) Is(target error) bool {
	return target == ErrInvalidEnumValue || target == ErrValidation
}

// PastExpirationError is returned when a new lot expires before today
// 過去の有効期限エラーを表現
type PastExpirationError struct {
	ExpirationDate Date `json:"expiration_date"`
	Today          Date `json:"today"`
}

func (e *PastExpirationError) Error() string {
	return fmt.Sprintf("有効期限が過去の日付のロットは作成できません (有効期限: %s, 本日: %s)", e.ExpirationDate, e.Today)
}

func (e *PastExpirationError) Is(target error) bool {
	return target == ErrPastExpiration || target == ErrValidation
}

// DuplicateLotError is returned when (item, expiration date) is already taken
// ロット重複エラーを表現
type DuplicateLotError struct {
	ItemID         string `json:"item_id"`
	ExpirationDate Date   `json:"expiration_date"`
}

func (e *DuplicateLotError) Error() string {
	return fmt.Sprintf("%s (商品ID: %s, 有効期限: %s)", ErrDuplicateLot.Error(), e.ItemID, e.ExpirationDate)
}

func (e *DuplicateLotError) Is(target error) bool {
	return target == ErrDuplicateLot
}

// InsufficientStockError is returned when a ledger change would drive a lot negative
// 在庫不足エラーを表現
type InsufficientStockError struct {
	LotID     int64 `json:"lot_id"`
	Available int64 `json:"available"` // 利用可能数量
	Requested int64 `json:"requested"` // 要求数量
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s (ロット: %d, 利用可能: %d, 要求: %d)", ErrInsufficientStock.Error(), e.LotID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransactionTypeError is returned for a type outside {add, remove}
// 無効なトランザクションタイプを表現
type InvalidTransactionTypeError struct {
	Type TransactionType `json:"type"`
}

func (e *InvalidTransactionTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidTransactionType.Error(), string(e.Type))
}

func (e *InvalidTransactionTypeError) Is(target error) bool {
	return target == ErrInvalidTransactionType
}

// StorageError represents a storage layer error
// ストレージ層のエラーを表現
type StorageError struct {
	Operation string `json:"operation"` // 操作名
	Message   string `json:"message"`   // エラーメッセージ
	Cause     error  `json:"cause"`     // 原因エラー
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ストレージエラー [%s]: %s (原因: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("ストレージエラー [%s]: %s", e.Operation, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
// 新しいバリデーションエラーを作成
func NewValidationError(field, message, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewInvalidEnumValueError creates a new catalog validation error
func NewInvalidEnumValueError(field, value string) *InvalidEnumValueError {
	return &InvalidEnumValueError{Field: field, Value: value}
}

// NewStorageError creates a new storage error
// 新しいストレージエラーを作成
func NewStorageError(operation, message string, cause error) *StorageError {
	return &StorageError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// wrapStorageError passes domain errors through untouched and wraps
// everything else in a StorageError.
func wrapStorageError(operation, message string, err error) error {
	if isDomainError(err) {
		return err
	}
	return NewStorageError(operation, message, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrItemNotFound,
		ErrLotNotFound,
		ErrEntryNotFound,
		ErrDuplicateItem,
		ErrDuplicateLot,
		ErrVersionMismatch,
		ErrInsufficientStock,
		ErrInvalidTransactionType,
		ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
