package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	adjRepo     repo.StockAdjustmentRepository
	auditRepo   repo.AuditLogRepository
	idGen       IDGenerator
	clock       Clock

	// 在庫アラートのしきい値（全クエリでこれに統一）
	threshold int64
	// 期限切れ間近の判定幅
	horizon time.Duration
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	adjRepo repo.StockAdjustmentRepository,
	auditRepo repo.AuditLogRepository,
	idGen IDGenerator,
	clock Clock,
	threshold int64,
	nearExpiryDays int,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		adjRepo:     adjRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
		threshold:   threshold,
		horizon:     time.Duration(nearExpiryDays) * 24 * time.Hour,
	}
}

type AddProductInput struct {
	ProductName    string
	Barcode        string
	Quantity       int64
	ExpirationDate *time.Time
}

// AddProductは新しい商品を登録する。
// 同じバーコードが既にあればDUPLICATE_BARCODE。
func (u *ProductUsecase) AddProduct(ctx context.Context, in AddProductInput) (model.Product, error) {
	if strings.TrimSpace(in.ProductName) == "" {
		return model.Product{}, errValidation("product name required")
	}
	if strings.TrimSpace(in.Barcode) == "" {
		return model.Product{}, errValidation("barcode required")
	}
	if in.Quantity < 1 || in.Quantity > 1000 {
		return model.Product{}, errValidation("quantity must be between 1 and 1000")
	}

	// 先に存在チェックして分かりやすいエラーを返す。
	// 同時addの競合はbarcodeのunique indexが最終的に防ぐ。
	_, err := u.productRepo.FindByBarcode(ctx, in.Barcode)
	if err == nil {
		return model.Product{}, NewHTTPError(http.StatusConflict, TagDuplicateBarcode, "A product with this barcode already exists")
	}
	if err != repo.ErrNotFound {
		return model.Product{}, errServer("Failed to add product")
	}

	now := u.clock.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		ID:            u.idGen.NewID(),
		Name:          strings.TrimSpace(in.ProductName),
		Barcode:       strings.TrimSpace(in.Barcode),
		Quantity:      in.Quantity,
		ExpiresAt:     in.ExpirationDate,
		QuantityNotif: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err == repo.ErrDuplicateBarcode {
		return model.Product{}, NewHTTPError(http.StatusConflict, TagDuplicateBarcode, "A product with this barcode already exists")
	}
	if err != nil {
		return model.Product{}, errServer("Failed to add product")
	}

	return p, nil
}

// 未指定フィールドは現状維持のパッチ
type UpdateProductInput struct {
	ProductName    *string
	Quantity       *int64
	ExpirationDate *time.Time
	NewBarcode     *string
}

// UpdateProductはパッチを既存レコードへマージして保存する。
// quantityNotifは結果の数量から再計算。WHEREは現在のバーコード。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID string, barcode string, in UpdateProductInput) (model.Product, error) {
	existing, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, errNotFound("No product found")
	}
	if err != nil {
		return model.Product{}, errServer("Failed to update product")
	}

	merged := existing
	if in.ProductName != nil && strings.TrimSpace(*in.ProductName) != "" {
		merged.Name = strings.TrimSpace(*in.ProductName)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return model.Product{}, errValidation("quantity must be >= 0")
		}
		merged.Quantity = *in.Quantity
	}
	if in.ExpirationDate != nil {
		merged.ExpiresAt = in.ExpirationDate
	}
	if in.NewBarcode != nil && strings.TrimSpace(*in.NewBarcode) != "" {
		merged.Barcode = strings.TrimSpace(*in.NewBarcode)
	}

	merged.QuantityNotif = merged.Quantity < u.threshold
	merged.UpdatedAt = u.clock.Now()

	updated, err := u.productRepo.UpdateByBarcode(ctx, barcode, merged)
	if err == repo.ErrNotFound {
		return model.Product{}, errNotFound("No product found")
	}
	if err == repo.ErrDuplicateBarcode {
		return model.Product{}, NewHTTPError(http.StatusConflict, TagDuplicateBarcode, "A product with this barcode already exists")
	}
	if err != nil {
		return model.Product{}, errServer("Failed to update product")
	}

	return updated, nil
}

// DeleteProductは商品をハード削除する（reorder行も一緒に消える）。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID string) error {
	err := u.productRepo.Delete(ctx, productID)
	if err == repo.ErrNotFound {
		return errNotFound("No product found")
	}
	if err != nil {
		return errServer("Failed to delete product")
	}
	return nil
}

// SearchProductsはname部分一致。空の検索語・0件はnilを返す。
func (u *ProductUsecase) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}

	products, err := u.productRepo.Search(ctx, term)
	if err != nil {
		return nil, errServer("Failed to search products")
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products, nil
}

// UpdateQuantityはアラート対応用の数量だけの更新。調整履歴と監査ログを残す。
func (u *ProductUsecase) UpdateQuantity(ctx context.Context, actorUserID string, productID string, newQuantity int64) error {
	if newQuantity < 0 {
		return errValidation("quantity must be >= 0")
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return errNotFound("No product found")
	}
	if err != nil {
		return errServer("Failed to update quantity")
	}

	if err := u.productRepo.UpdateQuantity(ctx, productID, newQuantity); err != nil {
		if err == repo.ErrNotFound {
			return errNotFound("No product found")
		}
		return errServer("Failed to update quantity")
	}

	adj := model.StockAdjustment{
		ProductID: productID,
		UserID:    actorUserID,
		Delta:     newQuantity - before.Quantity,
		Reason:    "alert resolution",
		CreatedAt: u.clock.Now(),
	}
	if err := u.adjRepo.CreateAdjustment(ctx, adj); err != nil {
		return errServer("Failed to update quantity")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   fmt.Sprintf(`{"quantity":%d}`, before.Quantity),
		AfterJSON:    fmt.Sprintf(`{"quantity":%d}`, newQuantity),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errServer("Failed to update quantity")
	}

	return nil
}

// UpdateExpiryはアラート対応用の期限だけの更新。
func (u *ProductUsecase) UpdateExpiry(ctx context.Context, actorUserID string, productID string, newExpiry time.Time) error {
	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return errNotFound("No product found")
	}
	if err != nil {
		return errServer("Failed to update expiry")
	}

	if err := u.productRepo.UpdateExpiry(ctx, productID, newExpiry); err != nil {
		if err == repo.ErrNotFound {
			return errNotFound("No product found")
		}
		return errServer("Failed to update expiry")
	}

	beforeJSON := `{"expires_at":null}`
	if before.ExpiresAt != nil {
		beforeJSON = fmt.Sprintf(`{"expires_at":%q}`, before.ExpiresAt.Format(time.RFC3339))
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateExpiry,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    fmt.Sprintf(`{"expires_at":%q}`, newExpiry.Format(time.RFC3339)),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errServer("Failed to update expiry")
	}

	return nil
}

// AdjustmentHistoryは商品の在庫調整履歴（新しい順）。
func (u *ProductUsecase) AdjustmentHistory(ctx context.Context, productID string) ([]model.StockAdjustment, error) {
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return nil, errNotFound("No product found")
		}
		return nil, errServer("Failed to fetch adjustment history")
	}

	adjs, err := u.adjRepo.ListAdjustments(ctx, productID)
	if err != nil {
		return nil, errServer("Failed to fetch adjustment history")
	}
	return adjs, nil
}

// ListAllは全商品（新しい順）。
func (u *ProductUsecase) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch products")
	}
	return products, nil
}

// LowStockは 0 < quantity <= threshold を少ない順。
func (u *ProductUsecase) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListLowStock(ctx, u.threshold)
	if err != nil {
		return nil, errServer("Failed to fetch low stock products")
	}
	return products, nil
}

// NearExpiryは期限が30日以内（在庫あり）を近い順。
func (u *ProductUsecase) NearExpiry(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListNearExpiry(ctx, u.clock.Now(), u.horizon)
	if err != nil {
		return nil, errServer("Failed to fetch near expiration products")
	}
	return products, nil
}

// OutOfStockは quantity = 0 を新しい順。
func (u *ProductUsecase) OutOfStock(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListOutOfStock(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch out-of-stock products")
	}
	return products, nil
}

// InStockは quantity > 0 を新しい順。
func (u *ProductUsecase) InStock(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.ListInStock(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch in-stock products")
	}
	return products, nil
}

// DashboardSummaryはダッシュボードの件数まとめ。
func (u *ProductUsecase) DashboardSummary(ctx context.Context) (repo.DashboardCounts, error) {
	counts, err := u.productRepo.Counts(ctx, u.threshold, u.clock.Now(), u.horizon)
	if err != nil {
		return repo.DashboardCounts{}, errServer("Failed to fetch dashboard summary")
	}
	return counts, nil
}
