package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field length limits, in characters
const (
	maxItemIDLength     = 64
	maxNameLength       = 128
	maxDosageFormLength = 32
	maxStrengthLength   = 32
	maxReferenceLength  = 500
	maxUserIDLength     = 255
	maxQuantity         = 999999999
)

// 英数字、ハイフン、アンダースコアのみ許可
var itemIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateItemID 商品IDの形式をバリデーション
func ValidateItemID(itemID string) error {
	if itemID == "" {
		return NewValidationError("item_id", "商品IDが空です", itemID)
	}
	if len(itemID) > maxItemIDLength {
		return NewValidationError("item_id", "商品IDが長すぎます", itemID)
	}
	if !itemIDPattern.MatchString(itemID) {
		return NewValidationError("item_id", "商品IDに無効な文字が含まれています", itemID)
	}
	return nil
}

// validateText 必須テキスト項目をバリデーション
func validateText(field, label, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, label+"が空です", value)
	}
	if utf8.RuneCountInString(value) > max {
		return NewValidationError(field, fmt.Sprintf("%sは%d文字以内である必要があります", label, max), value)
	}
	return nil
}

// ValidateItemName 商品名をバリデーション
func ValidateItemName(name string) error {
	return validateText("name", "商品名", name, maxNameLength)
}

// ValidateStrength 含量・規格をバリデーション（任意）
func ValidateStrength(strength *string) error {
	if strength == nil {
		return nil
	}
	if utf8.RuneCountInString(*strength) > maxStrengthLength {
		return NewValidationError("strength_per_size", fmt.Sprintf("含量・規格は%d文字以内である必要があります", maxStrengthLength), *strength)
	}
	return nil
}

// ValidatePackageQuantity 包装単位あたりの数量をバリデーション
func ValidatePackageQuantity(quantity int64) error {
	if quantity < -maxQuantity || quantity > maxQuantity {
		return NewValidationError("quantity", "数量が有効範囲を超えています", fmt.Sprintf("%d", quantity))
	}
	return nil
}

// ValidateEntryQuantity 台帳エントリの数量をバリデーション
func ValidateEntryQuantity(quantity int64) error {
	if quantity <= 0 {
		return NewValidationError("quantity", "数量は正の値である必要があります", fmt.Sprintf("%d", quantity))
	}
	if quantity > maxQuantity {
		return NewValidationError("quantity", "数量が有効範囲を超えています", fmt.Sprintf("%d", quantity))
	}
	return nil
}

// ValidateLotCount ロット作成時の在庫数をバリデーション
func ValidateLotCount(count int64) error {
	if count < 0 {
		return NewValidationError("count", "在庫数は0以上である必要があります", fmt.Sprintf("%d", count))
	}
	if count > maxQuantity {
		return NewValidationError("count", "在庫数が有効範囲を超えています", fmt.Sprintf("%d", count))
	}
	return nil
}

// ValidateReference 参照番号の形式をバリデーション
func ValidateReference(reference string) error {
	if reference == "" {
		return nil // 参照番号は任意
	}
	if utf8.RuneCountInString(reference) > maxReferenceLength {
		return NewValidationError("reference", "参照番号が長すぎます", reference)
	}
	return nil
}

// ValidateUserID ユーザーIDをバリデーション
func ValidateUserID(userID string) error {
	if userID == "" {
		return NewValidationError("user_id", "ユーザーIDが空です", userID)
	}
	if len(userID) > maxUserIDLength {
		return NewValidationError("user_id", "ユーザーIDが長すぎます", userID)
	}
	return nil
}

// ValidatePosting ポスティングをバリデーション
func ValidatePosting(p Posting) error {
	if !p.Type.Valid() {
		return &InvalidTransactionTypeError{Type: p.Type}
	}
	return ValidateEntryQuantity(p.Quantity)
}

// ValidateItemFields 商品全体をバリデーション
func ValidateItemFields(item *Item) error {
	if item == nil {
		return NewValidationError("item", "商品が指定されていません", "nil")
	}

	if err := ValidateItemID(item.ID); err != nil {
		return err
	}
	if err := ValidateItem(item.Category, item.Subcategory, item.Packaging, item.Unit); err != nil {
		return err
	}
	if err := ValidateItemName(item.Name); err != nil {
		return err
	}
	if err := validateText("brand_name", "ブランド名", item.BrandName, maxNameLength); err != nil {
		return err
	}
	if err := validateText("generic_name", "一般名", item.GenericName, maxNameLength); err != nil {
		return err
	}
	if err := validateText("dosage_form", "剤形", item.DosageForm, maxDosageFormLength); err != nil {
		return err
	}
	if err := ValidateStrength(item.StrengthPerSize); err != nil {
		return err
	}
	if err := ValidatePackageQuantity(item.Quantity); err != nil {
		return err
	}

	return nil
}
