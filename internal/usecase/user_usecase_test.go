package usecase_test

import (
	"context"
	"testing"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"
	"inventory/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) ListApproved(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) ListPendingApproval(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) SetApproved(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newUserUC(uRepo *UserRepoMock, auditRepo *ProdAuditRepoMock) *usecase.UserUsecase {
	return usecase.NewUserUsecase(uRepo, auditRepo, &fixedClock{now: testNow})
}

func TestUserUsecase_ApproveUser_Success(t *testing.T) {
	uRepo := new(UserRepoMock)
	auditRepo := new(ProdAuditRepoMock)
	uc := newUserUC(uRepo, auditRepo)

	uRepo.On("SetApproved", mock.Anything, "u-2").Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionApproveUser &&
			log.ActorUserID == "admin-1" &&
			log.ResourceID == "u-2"
	})).Return(nil)

	err := uc.ApproveUser(context.Background(), "admin-1", "u-2")

	assert.NoError(t, err)
	uRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestUserUsecase_ApproveUser_NotFound(t *testing.T) {
	uRepo := new(UserRepoMock)
	uc := newUserUC(uRepo, new(ProdAuditRepoMock))

	uRepo.On("SetApproved", mock.Anything, "missing").Return(repo.ErrUserNotFound)

	err := uc.ApproveUser(context.Background(), "admin-1", "missing")
	assertTag(t, err, usecase.TagNotFound)
}

// 自分自身の否認は禁止
func TestUserUsecase_DeclineUser_SelfRejected(t *testing.T) {
	uRepo := new(UserRepoMock)
	uc := newUserUC(uRepo, new(ProdAuditRepoMock))

	err := uc.DeclineUser(context.Background(), "admin-1", "admin-1")

	assertTag(t, err, usecase.TagValidationError)
	uRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUserUsecase_DeclineUser_DeletesAndAudits(t *testing.T) {
	uRepo := new(UserRepoMock)
	auditRepo := new(ProdAuditRepoMock)
	uc := newUserUC(uRepo, auditRepo)

	target := &model.User{ID: "u-2", Email: "staff@example.com", Role: model.RoleStaff}
	uRepo.On("FindByID", mock.Anything, "u-2").Return(target, nil)
	uRepo.On("Delete", mock.Anything, "u-2").Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionDeclineUser && log.ResourceID == "u-2"
	})).Return(nil)

	err := uc.DeclineUser(context.Background(), "admin-1", "u-2")

	assert.NoError(t, err)
	uRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestUserUsecase_ChangeRole_InvalidRole(t *testing.T) {
	uRepo := new(UserRepoMock)
	uc := newUserUC(uRepo, new(ProdAuditRepoMock))

	err := uc.ChangeRole(context.Background(), "admin-1", "u-2", "superuser")

	assertTag(t, err, usecase.TagValidationError)
	uRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

// ロール変更は既存JWTを失効させるためtoken_versionも上げる
func TestUserUsecase_ChangeRole_BumpsTokenVersion(t *testing.T) {
	uRepo := new(UserRepoMock)
	auditRepo := new(ProdAuditRepoMock)
	uc := newUserUC(uRepo, auditRepo)

	target := &model.User{ID: "u-2", Role: model.RoleStaff}
	uRepo.On("FindByID", mock.Anything, "u-2").Return(target, nil)
	uRepo.On("UpdateRole", mock.Anything, "u-2", model.RoleAdmin).Return(nil)
	uRepo.On("IncrementTokenVersion", mock.Anything, "u-2").Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log model.AuditLog) bool {
		return log.Action == model.AuditActionChangeRole && log.ResourceID == "u-2"
	})).Return(nil)

	err := uc.ChangeRole(context.Background(), "admin-1", "u-2", "admin")

	assert.NoError(t, err)
	uRepo.AssertExpectations(t)
}
