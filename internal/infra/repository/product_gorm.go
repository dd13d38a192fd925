package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 商品の作成。barcodeのunique indexに当たったらErrDuplicateBarcode。
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Product{}, repo.ErrDuplicateBarcode
		}
		return model.Product{}, err
	}
	return p, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// バーコードで商品を取得
func (r *ProductGormRepository) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新。WHEREは現在のバーコード。
func (r *ProductGormRepository) UpdateByBarcode(ctx context.Context, barcode string, p model.Product) (model.Product, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("barcode = ?", barcode).Updates(map[string]interface{}{
		"name":           p.Name,
		"barcode":        p.Barcode,
		"quantity":       p.Quantity,
		"expires_at":     p.ExpiresAt,
		"quantity_notif": p.QuantityNotif,
		"updated_at":     p.UpdatedAt,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return model.Product{}, repo.ErrDuplicateBarcode
		}
		return model.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Product{}, repo.ErrNotFound
	}
	return r.FindByBarcode(ctx, p.Barcode)
}

// 在庫数だけ更新
func (r *ProductGormRepository) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 賞味期限だけ更新
func (r *ProductGormRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除。reorder行が残らないよう同一Txで消す。
func (r *ProductGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ReorderRequest{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// nameの部分一致検索
func (r *ProductGormRepository) Search(ctx context.Context, term string) ([]model.Product, error) {
	var products []model.Product
	like := "%" + strings.TrimSpace(term) + "%"
	if err := r.db.WithContext(ctx).
		Where("name ILIKE ?", like).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// 全商品（新しい順）
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// 0 < quantity <= threshold を少ない順に
func (r *ProductGormRepository) ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("quantity > 0 AND quantity <= ?", threshold).
		Order("quantity asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// 期限が(now, now+horizon]かつ在庫ありを期限の近い順に
func (r *ProductGormRepository) ListNearExpiry(ctx context.Context, now time.Time, horizon time.Duration) ([]model.Product, error) {
	var products []model.Product
	limit := now.Add(horizon)
	if err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ? AND quantity > 0", now, limit).
		Order("expires_at asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// 在庫切れ（新しい順）
func (r *ProductGormRepository) ListOutOfStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("quantity = 0").
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// 在庫あり（新しい順）
func (r *ProductGormRepository) ListInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("quantity > 0").
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ダッシュボード用の件数まとめ
func (r *ProductGormRepository) Counts(ctx context.Context, threshold int64, now time.Time, horizon time.Duration) (repo.DashboardCounts, error) {
	var c repo.DashboardCounts

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Product{})
	}

	if err := base().Count(&c.Total).Error; err != nil {
		return repo.DashboardCounts{}, err
	}
	if err := base().Where("quantity > 0 AND quantity <= ?", threshold).Count(&c.LowStock).Error; err != nil {
		return repo.DashboardCounts{}, err
	}
	limit := now.Add(horizon)
	if err := base().
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ? AND quantity > 0", now, limit).
		Count(&c.NearExpiry).Error; err != nil {
		return repo.DashboardCounts{}, err
	}
	if err := base().Where("quantity = 0").Count(&c.OutOfStock).Error; err != nil {
		return repo.DashboardCounts{}, err
	}
	if err := base().Where("quantity_notif = ?", true).Count(&c.PendingAlerts).Error; err != nil {
		return repo.DashboardCounts{}, err
	}

	return c, nil
}

// 調整履歴作成
func (r *ProductGormRepository) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}

// 商品の調整履歴（新しい順）
func (r *ProductGormRepository) ListAdjustments(ctx context.Context, productID string) ([]model.StockAdjustment, error) {
	var adjs []model.StockAdjustment
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Find(&adjs).Error; err != nil {
		return nil, err
	}
	return adjs, nil
}

// postgresのunique違反（23505）か
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
