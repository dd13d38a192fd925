package usecase

import (
	"context"
	"fmt"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// 「よく売れる」とみなす承認回数
const bestSellingMinCount = 3

type ReorderUsecase struct {
	reorderRepo repo.ReorderRepository
	auditRepo   repo.AuditLogRepository
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewReorderUsecase(
	reorderRepo repo.ReorderRepository,
	auditRepo repo.AuditLogRepository,
	idGen IDGenerator,
	clock Clock,
) *ReorderUsecase {
	return &ReorderUsecase{
		reorderRepo: reorderRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
	}
}

type SubmitDecisionInput struct {
	ProductID string
	Status    string
	Remarks   string
}

// 判断結果。初回作成のときだけRequestが入る。
type SubmitDecisionOutput struct {
	Outcome model.DecisionOutcome `json:"outcome"`
	Request *model.ReorderRequest `json:"request,omitempty"`
}

// SubmitDecisionは発注提案への承認/否認を適用する。
// どちらの判断でも商品のquantityNotifはクリアされる。
// カウンタの加算はrepo側の1トランザクションで行う。
func (u *ReorderUsecase) SubmitDecision(ctx context.Context, actorUserID string, in SubmitDecisionInput) (SubmitDecisionOutput, error) {
	if in.ProductID == "" {
		return SubmitDecisionOutput{}, errValidation("product_id required")
	}

	decision := model.ReorderStatus(in.Status)
	if decision != model.ReorderAccepted && decision != model.ReorderDeclined {
		return SubmitDecisionOutput{}, errValidation("status must be accepted or declined")
	}

	before, err := u.reorderRepo.FindByProductID(ctx, in.ProductID)
	hadExisting := err == nil
	if err != nil && err != repo.ErrNotFound {
		return SubmitDecisionOutput{}, errServer("Failed to add reorder record")
	}

	res, err := u.reorderRepo.ApplyDecision(ctx, u.idGen.NewID(), in.ProductID, decision, in.Remarks, u.clock.Now())
	if err == repo.ErrNotFound {
		return SubmitDecisionOutput{}, errNotFound("No product found")
	}
	if err != nil {
		return SubmitDecisionOutput{}, errServer("Failed to add reorder record")
	}

	beforeJSON := `{}`
	if hadExisting {
		beforeJSON = fmt.Sprintf(`{"status":%q,"reorder_count":%d}`, before.Status, before.ReorderCount)
	}
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionReorderDecision,
		ResourceType: model.AuditResourceReorder,
		ResourceID:   res.Request.ID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    fmt.Sprintf(`{"status":%q,"reorder_count":%d}`, res.Request.Status, res.Request.ReorderCount),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return SubmitDecisionOutput{}, errServer("Failed to add reorder record")
	}

	out := SubmitDecisionOutput{Outcome: res.Outcome}
	if res.Outcome == model.OutcomeCreated {
		req := res.Request
		out.Request = &req
	}
	return out, nil
}

// Historyは全reorder行（商品名join、新しい順）。
func (u *ReorderUsecase) History(ctx context.Context) ([]repo.ReorderHistoryEntry, error) {
	entries, err := u.reorderRepo.History(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch reorder history")
	}
	return entries, nil
}

// BestSellingは直近1ヶ月に3回以上承認された商品。
// POS連携がないので売上ではなく承認回数のヒューリスティック。
func (u *ReorderUsecase) BestSelling(ctx context.Context) ([]repo.ReorderHistoryEntry, error) {
	oneMonthAgo := u.clock.Now().AddDate(0, -1, 0)
	entries, err := u.reorderRepo.BestSelling(ctx, bestSellingMinCount, oneMonthAgo)
	if err != nil {
		return nil, errServer("Failed to fetch best selling products")
	}
	return entries, nil
}

// SlowMovingはその逆：承認3回未満かつ最終承認が1ヶ月より前。
func (u *ReorderUsecase) SlowMoving(ctx context.Context) ([]repo.ReorderHistoryEntry, error) {
	oneMonthAgo := u.clock.Now().AddDate(0, -1, 0)
	entries, err := u.reorderRepo.SlowMoving(ctx, bestSellingMinCount, oneMonthAgo)
	if err != nil {
		return nil, errServer("Failed to fetch slow moving products")
	}
	return entries, nil
}
