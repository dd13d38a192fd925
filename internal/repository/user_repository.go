package repository

import (
	"context"
	"errors"

	"inventory/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>最終ログインなど
	Update(ctx context.Context, user *model.User) error

	//承認済みユーザー一覧（名前の昇順）
	ListApproved(ctx context.Context) ([]model.User, error)
	//承認待ちユーザー一覧（登録の新しい順）
	ListPendingApproval(ctx context.Context) ([]model.User, error)

	SetApproved(ctx context.Context, userID string) error
	UpdateRole(ctx context.Context, userID string, role model.Role) error
	Delete(ctx context.Context, userID string) error

	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
}
