package usecase_test

import (
	"context"
	"testing"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// 共通部品（固定clock・連番ID）
// =====================

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type stubIDGen struct {
	id string
}

func (g *stubIDGen) NewID() string { return g.id }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// =====================
// Mocks（衝突回避の命名）
// =====================

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	args := m.Called(ctx, barcode)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) UpdateByBarcode(ctx context.Context, barcode string, p model.Product) (model.Product, error) {
	args := m.Called(ctx, barcode, p)
	updated, _ := args.Get(0).(model.Product)
	return updated, args.Error(1)
}

func (m *ProdProductRepoMock) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *ProdProductRepoMock) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	args := m.Called(ctx, id, expiresAt)
	return args.Error(0)
}

func (m *ProdProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProdProductRepoMock) Search(ctx context.Context, term string) ([]model.Product, error) {
	args := m.Called(ctx, term)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	args := m.Called(ctx, threshold)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) ListNearExpiry(ctx context.Context, now time.Time, horizon time.Duration) ([]model.Product, error) {
	args := m.Called(ctx, now, horizon)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) ListOutOfStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) ListInStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProdProductRepoMock) Counts(ctx context.Context, threshold int64, now time.Time, horizon time.Duration) (repo.DashboardCounts, error) {
	args := m.Called(ctx, threshold, now, horizon)
	c, _ := args.Get(0).(repo.DashboardCounts)
	return c, args.Error(1)
}

type ProdAdjRepoMock struct{ mock.Mock }

func (m *ProdAdjRepoMock) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *ProdAdjRepoMock) ListAdjustments(ctx context.Context, productID string) ([]model.StockAdjustment, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.StockAdjustment)
	return items, args.Error(1)
}

type ProdAuditRepoMock struct{ mock.Mock }

func (m *ProdAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *ProdAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

func newProductUC(pRepo *ProdProductRepoMock, adjRepo *ProdAdjRepoMock, auditRepo *ProdAuditRepoMock) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(
		pRepo,
		adjRepo,
		auditRepo,
		&stubIDGen{id: "generated-id"},
		&fixedClock{now: testNow},
		10,
		30,
	)
}

func assertTag(t *testing.T, err error, tag string) {
	t.Helper()

	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, tag, he.Tag)
}

// =====================
// AddProduct
// =====================

func TestProductUsecase_AddProduct_DuplicateBarcode(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	// 既に同じバーコードの商品がある
	pRepo.On("FindByBarcode", mock.Anything, "4900000000001").
		Return(model.Product{ID: "p-1", Barcode: "4900000000001"}, nil)

	_, err := uc.AddProduct(ctx, usecase.AddProductInput{
		ProductName: "Milk 1L",
		Barcode:     "4900000000001",
		Quantity:    10,
	})

	assertTag(t, err, usecase.TagDuplicateBarcode)
	// 既存行には触れない（Create/Updateは呼ばれない）
	pRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_AddProduct_QuantityOutOfRange(t *testing.T) {
	uc := newProductUC(new(ProdProductRepoMock), new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	_, err := uc.AddProduct(context.Background(), usecase.AddProductInput{
		ProductName: "Milk 1L",
		Barcode:     "4900000000001",
		Quantity:    0,
	})
	assertTag(t, err, usecase.TagValidationError)

	_, err = uc.AddProduct(context.Background(), usecase.AddProductInput{
		ProductName: "Milk 1L",
		Barcode:     "4900000000001",
		Quantity:    1001,
	})
	assertTag(t, err, usecase.TagValidationError)
}

func TestProductUsecase_AddProduct_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByBarcode", mock.Anything, "4900000000001").
		Return(model.Product{}, repo.ErrNotFound)
	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		// 新規はid採番・quantityNotif=true
		return p.ID == "generated-id" && p.QuantityNotif && p.Quantity == 10
	})).Return(model.Product{ID: "generated-id", Name: "Milk 1L", Quantity: 10, QuantityNotif: true}, nil)

	p, err := uc.AddProduct(ctx, usecase.AddProductInput{
		ProductName: "Milk 1L",
		Barcode:     "4900000000001",
		Quantity:    10,
	})

	assert.NoError(t, err)
	assert.Equal(t, "generated-id", p.ID)
	assert.True(t, p.QuantityNotif)
	pRepo.AssertExpectations(t)
}

// =====================
// UpdateProduct
// =====================

func TestProductUsecase_UpdateProduct_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.UpdateProduct(context.Background(), "missing", "4900000000001", usecase.UpdateProductInput{})
	assertTag(t, err, usecase.TagNotFound)
}

// quantityNotifは結果の数量としきい値から再計算される
func TestProductUsecase_UpdateProduct_RecomputesQuantityNotif(t *testing.T) {
	ctx := context.Background()

	existing := model.Product{
		ID:            "p-1",
		Name:          "Milk 1L",
		Barcode:       "4900000000001",
		Quantity:      50,
		QuantityNotif: false,
	}

	cases := []struct {
		name      string
		quantity  int64
		wantNotif bool
	}{
		{"below threshold", 3, true},
		{"at threshold", 10, false},
		{"above threshold", 50, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pRepo := new(ProdProductRepoMock)
			uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

			pRepo.On("FindByID", mock.Anything, "p-1").Return(existing, nil)
			pRepo.On("UpdateByBarcode", mock.Anything, "4900000000001", mock.MatchedBy(func(p model.Product) bool {
				return p.Quantity == tc.quantity && p.QuantityNotif == tc.wantNotif
			})).Return(model.Product{ID: "p-1", Quantity: tc.quantity, QuantityNotif: tc.wantNotif}, nil)

			q := tc.quantity
			p, err := uc.UpdateProduct(ctx, "p-1", "4900000000001", usecase.UpdateProductInput{Quantity: &q})

			assert.NoError(t, err)
			assert.Equal(t, tc.wantNotif, p.QuantityNotif)
			pRepo.AssertExpectations(t)
		})
	}
}

// 未指定フィールドは現状維持
func TestProductUsecase_UpdateProduct_MergesPatch(t *testing.T) {
	ctx := context.Background()

	exp := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	existing := model.Product{
		ID:        "p-1",
		Name:      "Milk 1L",
		Barcode:   "4900000000001",
		Quantity:  50,
		ExpiresAt: &exp,
	}

	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByID", mock.Anything, "p-1").Return(existing, nil)
	pRepo.On("UpdateByBarcode", mock.Anything, "4900000000001", mock.MatchedBy(func(p model.Product) bool {
		// nameだけ変わり、quantity/expiry/barcodeは元のまま
		return p.Name == "Whole Milk 1L" &&
			p.Quantity == 50 &&
			p.Barcode == "4900000000001" &&
			p.ExpiresAt != nil && p.ExpiresAt.Equal(exp)
	})).Return(existing, nil)

	name := "Whole Milk 1L"
	_, err := uc.UpdateProduct(ctx, "p-1", "4900000000001", usecase.UpdateProductInput{ProductName: &name})

	assert.NoError(t, err)
	pRepo.AssertExpectations(t)
}

// =====================
// Delete / Search
// =====================

func TestProductUsecase_DeleteProduct_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("Delete", mock.Anything, "missing").Return(repo.ErrNotFound)

	err := uc.DeleteProduct(context.Background(), "missing")
	assertTag(t, err, usecase.TagNotFound)
}

func TestProductUsecase_SearchProducts_BlankTermReturnsNil(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	products, err := uc.SearchProducts(context.Background(), "   ")

	assert.NoError(t, err)
	assert.Nil(t, products)
	pRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestProductUsecase_SearchProducts_NoMatchReturnsNil(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("Search", mock.Anything, "zzz").Return([]model.Product{}, nil)

	products, err := uc.SearchProducts(context.Background(), "zzz")

	assert.NoError(t, err)
	assert.Nil(t, products)
}

// =====================
// UpdateQuantity / UpdateExpiry
// =====================

func TestProductUsecase_UpdateQuantity_RecordsAdjustmentAndAudit(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	adjRepo := new(ProdAdjRepoMock)
	auditRepo := new(ProdAuditRepoMock)
	uc := newProductUC(pRepo, adjRepo, auditRepo)

	pRepo.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", Quantity: 3}, nil)
	pRepo.On("UpdateQuantity", mock.Anything, "p-1", int64(30)).Return(nil)
	adjRepo.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(adj model.StockAdjustment) bool {
		return adj.ProductID == "p-1" && adj.UserID == "u-1" && adj.Delta == 27
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionUpdateStock && log.ResourceID == "p-1"
	})).Return(nil)

	err := uc.UpdateQuantity(ctx, "u-1", "p-1", 30)

	assert.NoError(t, err)
	pRepo.AssertExpectations(t)
	adjRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestProductUsecase_UpdateQuantity_NegativeRejected(t *testing.T) {
	uc := newProductUC(new(ProdProductRepoMock), new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	err := uc.UpdateQuantity(context.Background(), "u-1", "p-1", -1)
	assertTag(t, err, usecase.TagValidationError)
}

func TestProductUsecase_UpdateExpiry_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)

	err := uc.UpdateExpiry(context.Background(), "u-1", "missing", testNow.AddDate(0, 1, 0))
	assertTag(t, err, usecase.TagNotFound)
}

func TestProductUsecase_AdjustmentHistory(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	adjRepo := new(ProdAdjRepoMock)
	uc := newProductUC(pRepo, adjRepo, new(ProdAuditRepoMock))

	adjs := []model.StockAdjustment{
		{ID: 2, ProductID: "p-1", UserID: "u-1", Delta: 27},
		{ID: 1, ProductID: "p-1", UserID: "u-1", Delta: -3},
	}
	pRepo.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1"}, nil)
	adjRepo.On("ListAdjustments", mock.Anything, "p-1").Return(adjs, nil)

	got, err := uc.AdjustmentHistory(context.Background(), "p-1")

	assert.NoError(t, err)
	assert.Equal(t, adjs, got)
}

func TestProductUsecase_AdjustmentHistory_UnknownProduct(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AdjustmentHistory(context.Background(), "missing")
	assertTag(t, err, usecase.TagNotFound)
}

// =====================
// 分類クエリ
// =====================

func TestProductUsecase_LowStock_UsesConfiguredThreshold(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	items := []model.Product{
		{ID: "p-1", Quantity: 2},
		{ID: "p-2", Quantity: 9},
	}
	pRepo.On("ListLowStock", mock.Anything, int64(10)).Return(items, nil)

	got, err := uc.LowStock(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, items, got)
	pRepo.AssertExpectations(t)
}

func TestProductUsecase_NearExpiry_Passes30DayHorizon(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	pRepo.On("ListNearExpiry", mock.Anything, testNow, 30*24*time.Hour).Return([]model.Product{}, nil)

	_, err := uc.NearExpiry(context.Background())

	assert.NoError(t, err)
	pRepo.AssertExpectations(t)
}

func TestProductUsecase_DashboardSummary(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	uc := newProductUC(pRepo, new(ProdAdjRepoMock), new(ProdAuditRepoMock))

	counts := repo.DashboardCounts{Total: 12, LowStock: 3, OutOfStock: 1, PendingAlerts: 4}
	pRepo.On("Counts", mock.Anything, int64(10), testNow, 30*24*time.Hour).Return(counts, nil)

	got, err := uc.DashboardSummary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, counts, got)
}
