// Package inventory provides the medicine stock-lot ledger: items, stock lots
// and the ledger entries that keep each lot's count consistent.
package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a medicine product definition
// 医薬品の商品定義を表現
type Item struct {
	ID              string      `json:"id" db:"id"`                               // 商品ID (UUID)
	Category        Category    `json:"category" db:"category"`                   // カテゴリ
	Subcategory     Subcategory `json:"subcategory" db:"subcategory"`             // サブカテゴリ
	Name            string      `json:"name" db:"name"`                           // 商品名
	BrandName       string      `json:"brand_name" db:"brand_name"`               // ブランド名
	GenericName     string      `json:"generic_name" db:"generic_name"`           // 一般名
	DosageForm      string      `json:"dosage_form" db:"dosage_form"`             // 剤形
	StrengthPerSize *string     `json:"strength_per_size" db:"strength_per_size"` // 含量・規格（任意）
	Packaging       Packaging   `json:"packaging" db:"packaging"`                 // 包装
	Quantity        int64       `json:"quantity" db:"quantity"`                   // 包装単位あたりの数量
	Unit            UnitType    `json:"unit" db:"unit"`                           // 単位
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`               // 作成日時
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`               // 更新日時
}

// StockLot represents a batch of one item with its own expiration date
// 有効期限ごとの在庫ロットを表現
type StockLot struct {
	ID             int64     `json:"id" db:"id"`                           // ロットID
	ItemID         string    `json:"item_id" db:"item_id"`                 // 商品ID
	DeliveryDate   Date      `json:"delivery_date" db:"delivery_date"`     // 納品日
	ExpirationDate Date      `json:"expiration_date" db:"expiration_date"` // 有効期限
	Count          int64     `json:"count" db:"count"`                     // 現在在庫数（台帳から導出）
	InitialCount   int64     `json:"initial_count" db:"initial_count"`     // 作成時の在庫数
	Version        int64     `json:"version" db:"version"`                 // 楽観的ロック用バージョン
	CreatedAt      time.Time `json:"created_at" db:"created_at"`           // 作成日時
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`           // 更新日時
}

// IsExpired reports whether the lot expired before the given day.
// Expired lots stay editable; nothing is zeroed automatically.
func (l *StockLot) IsExpired(today Date) bool {
	return l.ExpirationDate.Before(today)
}

// IsExpiringWithin reports whether the lot expires between today and today+days
// 指定日数以内に期限切れになるかチェック
func (l *StockLot) IsExpiringWithin(today Date, days int) bool {
	if l.ExpirationDate.Before(today) {
		return false
	}
	return !l.ExpirationDate.After(today.AddDays(days))
}

// LedgerEntry represents one Add or Remove transaction against a lot
// ロットに対する入出庫トランザクションを表現
type LedgerEntry struct {
	ID        int64           `json:"id" db:"id"`                 // エントリID
	LotID     int64           `json:"lot_id" db:"lot_id"`         // ロットID
	UserID    string          `json:"user_id" db:"user_id"`       // 登録者
	Quantity  int64           `json:"quantity" db:"quantity"`     // 数量（正の値）
	Type      TransactionType `json:"type" db:"type"`             // トランザクションタイプ
	Reference string          `json:"reference" db:"reference"`   // 参照番号（伝票番号など）
	CreatedAt time.Time       `json:"created_at" db:"created_at"` // 作成日時
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"` // 更新日時
	UpdatedBy string          `json:"updated_by" db:"updated_by"` // 更新者
}

// Posting returns the entry's type and quantity as a ledger posting
func (e *LedgerEntry) Posting() Posting {
	return Posting{Type: e.Type, Quantity: e.Quantity}
}

// TransactionType defines the direction of a ledger entry
// 台帳エントリの方向を定義
type TransactionType string

const (
	TransactionTypeAdd    TransactionType = "add"    // 入庫
	TransactionTypeRemove TransactionType = "remove" // 出庫
)

// Valid reports whether t is add or remove
func (t TransactionType) Valid() bool {
	return t == TransactionTypeAdd || t == TransactionTypeRemove
}

// NewLot describes a stock lot to be created
// 作成するロットの内容を表現
type NewLot struct {
	ItemID         string `json:"item_id"`
	ExpirationDate Date   `json:"expiration_date"`
	DeliveryDate   Date   `json:"delivery_date"` // ゼロ値の場合は本日
	Count          int64  `json:"count"`
}

// LotUpdate holds the editable fields of a stock lot.
// Count is not editable here; it only changes through ledger entries.
type LotUpdate struct {
	DeliveryDate   *Date `json:"delivery_date,omitempty"`
	ExpirationDate *Date `json:"expiration_date,omitempty"`
}

// LotAudit is the result of replaying a lot's ledger
// ロット台帳の再計算結果を表現
type LotAudit struct {
	LotID         int64  `json:"lot_id"`
	StoredCount   int64  `json:"stored_count"`   // 保存されている在庫数
	ReplayedCount int64  `json:"replayed_count"` // 台帳から再計算した在庫数
	EntryCount    int    `json:"entry_count"`    // エントリ数
	Consistent    bool   `json:"consistent"`     // 一致しているか
	Problem       string `json:"problem,omitempty"`
}

// NewItemID generates a new item ID
// 新しい商品IDを生成
func NewItemID() string {
	return uuid.New().String()
}
