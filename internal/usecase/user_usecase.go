package usecase

import (
	"context"
	"fmt"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
)

// ユーザー承認・ロール管理（管理者専用）
type UserUsecase struct {
	userRepo  repo.UserRepository
	auditRepo repo.AuditLogRepository
	clock     Clock
}

// DI
func NewUserUsecase(userRepo repo.UserRepository, auditRepo repo.AuditLogRepository, clock Clock) *UserUsecase {
	return &UserUsecase{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		clock:     clock,
	}
}

// ListAuditLogsは監査ログを新しい順で返す（管理画面用）。
func (u *UserUsecase) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, errServer("Failed to fetch audit logs")
	}
	return logs, nil
}

// ListApprovedは承認済みユーザー（名前の昇順）。
func (u *UserUsecase) ListApproved(ctx context.Context) ([]model.User, error) {
	users, err := u.userRepo.ListApproved(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch users")
	}
	return users, nil
}

// ListPendingApprovalは承認待ちユーザー（登録の新しい順）。
func (u *UserUsecase) ListPendingApproval(ctx context.Context) ([]model.User, error) {
	users, err := u.userRepo.ListPendingApproval(ctx)
	if err != nil {
		return nil, errServer("Failed to fetch users")
	}
	return users, nil
}

// ApproveUserは登録を承認してログイン可能にする。
func (u *UserUsecase) ApproveUser(ctx context.Context, actorUserID string, userID string) error {
	if userID == "" {
		return errValidation("user id required")
	}

	if err := u.userRepo.SetApproved(ctx, userID); err != nil {
		if err == repo.ErrUserNotFound {
			return errNotFound("No user found")
		}
		return errServer("Failed to approve user")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionApproveUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   `{"is_approved":false}`,
		AfterJSON:    `{"is_approved":true}`,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errServer("Failed to approve user")
	}

	return nil
}

// DeclineUserは登録を否認してユーザーを削除する。
func (u *UserUsecase) DeclineUser(ctx context.Context, actorUserID string, userID string) error {
	if userID == "" {
		return errValidation("user id required")
	}
	if userID == actorUserID {
		return errValidation("cannot decline yourself")
	}

	target, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == repo.ErrUserNotFound {
			return errNotFound("No user found")
		}
		return errServer("Failed to decline user")
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		if err == repo.ErrUserNotFound {
			return errNotFound("No user found")
		}
		return errServer("Failed to decline user")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionDeclineUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   fmt.Sprintf(`{"email":%q,"role":%q}`, target.Email, target.Role),
		AfterJSON:    `{}`,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errServer("Failed to decline user")
	}

	return nil
}

// ChangeRoleはロールを変更する。
// 古いJWTに古いroleが残るので、token_versionも+1して失効させる。
func (u *UserUsecase) ChangeRole(ctx context.Context, actorUserID string, userID string, newRole string) error {
	if userID == "" {
		return errValidation("user id required")
	}

	role := model.Role(newRole)
	if role != model.RoleStaff && role != model.RoleAdmin {
		return errValidation("role must be staff or admin")
	}

	target, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == repo.ErrUserNotFound {
			return errNotFound("No user found")
		}
		return errServer("Failed to change role")
	}

	if err := u.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if err == repo.ErrUserNotFound {
			return errNotFound("No user found")
		}
		return errServer("Failed to change role")
	}

	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		return errServer("Failed to change role")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionChangeRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   fmt.Sprintf(`{"role":%q}`, target.Role),
		AfterJSON:    fmt.Sprintf(`{"role":%q}`, role),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errServer("Failed to change role")
	}

	return nil
}
