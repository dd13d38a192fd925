package repository

import (
	"context"
	"errors"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	"gorm.io/gorm"
)

type ReorderGormRepository struct {
	db *gorm.DB
}

// DI
func NewReorderGormRepository(db *gorm.DB) *ReorderGormRepository {
	return &ReorderGormRepository{db: db}
}

// 判断を1トランザクションで適用する。
// notifクリア・既存行チェック・作成/加算がすべて同じTxに入るので
// 同時submitでもカウントのlost updateは起きない。
func (r *ReorderGormRepository) ApplyDecision(ctx context.Context, newID string, productID string, decision model.ReorderStatus, remarks string, now time.Time) (repo.ReorderDecisionResult, error) {
	var result repo.ReorderDecisionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 判断が入った時点でアラートは対応済み扱い
		res := tx.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("quantity_notif", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		var existing model.ReorderRequest
		err := tx.Where("product_id = ?", productID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 初回：行を新規作成
		if errors.Is(err, gorm.ErrRecordNotFound) {
			req := model.NewReorderRequest(newID, productID, decision, remarks, now)
			if err := tx.Create(&req).Error; err != nil {
				return err
			}
			result = repo.ReorderDecisionResult{Outcome: model.OutcomeCreated, Request: req}
			return nil
		}

		// 2回目以降：遷移表に従う
		eff, ok := model.Transition(decision)
		if !ok {
			return repo.ErrNotFound
		}

		if !eff.IncrementCount {
			// 否認はカウンタに触れない（notifクリアのみ）
			result = repo.ReorderDecisionResult{Outcome: eff.Outcome, Request: existing}
			return nil
		}

		// 加算はSQL式で行い、read-then-writeの競合を避ける
		updates := map[string]interface{}{
			"reorder_count": gorm.Expr("reorder_count + ?", 1),
			"status":        decision,
			"updated_at":    now,
		}
		if eff.TouchLastReorder {
			updates["last_reorder"] = now
		}
		if eff.UpdateRemarks {
			updates["remarks"] = remarks
		}

		if err := tx.Model(&model.ReorderRequest{}).
			Where("product_id = ?", productID).
			Updates(updates).Error; err != nil {
			return err
		}

		var updated model.ReorderRequest
		if err := tx.Where("product_id = ?", productID).First(&updated).Error; err != nil {
			return err
		}

		result = repo.ReorderDecisionResult{Outcome: eff.Outcome, Request: updated}
		return nil
	})
	if err != nil {
		return repo.ReorderDecisionResult{}, err
	}

	return result, nil
}

// 商品IDでreorder行を1件取得
func (r *ReorderGormRepository) FindByProductID(ctx context.Context, productID string) (model.ReorderRequest, error) {
	var req model.ReorderRequest
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ReorderRequest{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ReorderRequest{}, err
	}
	return req, nil
}

const historySelect = `reorder_requests.id as reorder_id,
reorder_requests.product_id,
coalesce(products.name, '') as product_name,
reorder_requests.status,
reorder_requests.remarks,
reorder_requests.reorder_count,
reorder_requests.last_reorder,
reorder_requests.created_at,
reorder_requests.updated_at`

// 履歴（商品名left join、新しい順）
func (r *ReorderGormRepository) History(ctx context.Context) ([]repo.ReorderHistoryEntry, error) {
	var entries []repo.ReorderHistoryEntry
	if err := r.db.WithContext(ctx).
		Model(&model.ReorderRequest{}).
		Select(historySelect).
		Joins("LEFT JOIN products ON products.id = reorder_requests.product_id").
		Order("reorder_requests.created_at desc").
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// reorder_count >= minCount かつ lastReorderがsince以降
func (r *ReorderGormRepository) BestSelling(ctx context.Context, minCount int64, since time.Time) ([]repo.ReorderHistoryEntry, error) {
	var entries []repo.ReorderHistoryEntry
	if err := r.db.WithContext(ctx).
		Model(&model.ReorderRequest{}).
		Select(historySelect).
		Joins("LEFT JOIN products ON products.id = reorder_requests.product_id").
		Where("reorder_requests.reorder_count >= ? AND reorder_requests.last_reorder >= ?", minCount, since).
		Order("reorder_requests.created_at desc").
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// reorder_count < maxCount かつ lastReorderがbeforeより古い
func (r *ReorderGormRepository) SlowMoving(ctx context.Context, maxCount int64, before time.Time) ([]repo.ReorderHistoryEntry, error) {
	var entries []repo.ReorderHistoryEntry
	if err := r.db.WithContext(ctx).
		Model(&model.ReorderRequest{}).
		Select(historySelect).
		Joins("LEFT JOIN products ON products.id = reorder_requests.product_id").
		Where("reorder_requests.reorder_count < ? AND reorder_requests.last_reorder < ?", maxCount, before).
		Order("reorder_requests.created_at desc").
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
