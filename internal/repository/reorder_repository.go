package repository

import (
	"context"
	"time"

	"inventory/internal/domain/model"
)

// 判断適用の結果。Outcomeで「新規作成/カウント加算/変更なし」を区別する。
type ReorderDecisionResult struct {
	Outcome model.DecisionOutcome
	Request model.ReorderRequest
}

// 商品名をleft joinした履歴1件
type ReorderHistoryEntry struct {
	ReorderID    string               `json:"reorder_id"`
	ProductID    string               `json:"product_id"`
	ProductName  string               `json:"product_name"`
	Status       model.ReorderStatus  `json:"status"`
	Remarks      string               `json:"remarks"`
	ReorderCount int64                `json:"reorder_count"`
	LastReorder  *time.Time           `json:"last_reorder"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// reorder行の永続化と判断適用を約束。
type ReorderRepository interface {
	// 判断を1トランザクションで適用する：
	// 商品のquantity_notifクリア + 既存行の有無チェック + 作成/加算。
	// カウント加算はSQL側の reorder_count + 1 で行う。
	ApplyDecision(ctx context.Context, newID string, productID string, decision model.ReorderStatus, remarks string, now time.Time) (ReorderDecisionResult, error)

	FindByProductID(ctx context.Context, productID string) (model.ReorderRequest, error)

	History(ctx context.Context) ([]ReorderHistoryEntry, error)
	BestSelling(ctx context.Context, minCount int64, since time.Time) ([]ReorderHistoryEntry, error)
	SlowMoving(ctx context.Context, maxCount int64, before time.Time) ([]ReorderHistoryEntry, error)
}
