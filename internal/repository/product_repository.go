package repository

import (
	"context"
	"errors"
	"time"

	"inventory/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 同じバーコードの商品が既に存在する
var ErrDuplicateBarcode = errors.New("duplicate barcode")

// ダッシュボード用の件数まとめ
type DashboardCounts struct {
	Total         int64 `json:"total"`
	LowStock      int64 `json:"low_stock"`
	NearExpiry    int64 `json:"near_expiry"`
	OutOfStock    int64 `json:"out_of_stock"`
	PendingAlerts int64 `json:"pending_alerts"`
}

// 商品の永続化（保存・取得・分類）だけを約束。
type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (model.Product, error)

	// 更新のWHEREは現在のバーコード
	UpdateByBarcode(ctx context.Context, barcode string, p model.Product) (model.Product, error)

	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error

	// 商品と、あればそのreorder行も同一Txで消す
	Delete(ctx context.Context, id string) error

	// nameの部分一致（大文字小文字は区別しない）
	Search(ctx context.Context, term string) ([]model.Product, error)

	ListAll(ctx context.Context) ([]model.Product, error)
	ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error)
	ListNearExpiry(ctx context.Context, now time.Time, horizon time.Duration) ([]model.Product, error)
	ListOutOfStock(ctx context.Context) ([]model.Product, error)
	ListInStock(ctx context.Context) ([]model.Product, error)

	Counts(ctx context.Context, threshold int64, now time.Time, horizon time.Duration) (DashboardCounts, error)
}

// 在庫直接調整の履歴保存を約束。
type StockAdjustmentRepository interface {
	CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error
	ListAdjustments(ctx context.Context, productID string) ([]model.StockAdjustment, error)
}
