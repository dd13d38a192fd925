package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"inventory/internal/domain/model"
	"inventory/internal/repository"
)

// 無効・期限切れ・使用済みをまとめて1つのエラーに潰す
var ErrRefreshTokenInvalid = errors.New("refresh token invalid")

// RefreshUsecaseはリフレッシュトークンのローテーション。
// 古いトークンをused扱いにして新しいトークンと新しいアクセストークンを返す。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

// DI
func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// リフレッシュ実行
func (u *RefreshUsecase) Execute(ctx context.Context, plainRefresh string, userAgent string) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	if plainRefresh == "" {
		return out, side, ErrRefreshTokenInvalid
	}

	stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrRefreshTokenInvalid
		}
		return out, side, err
	}

	now := u.clock.Now()

	// 使用済みトークンの再提示は盗難の疑いなので全トークンを破棄する
	if stored.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, stored.UserID)
		return out, side, ErrRefreshTokenInvalid
	}
	if stored.RevokedAt != nil || now.After(stored.ExpiresAt) {
		return out, side, ErrRefreshTokenInvalid
	}

	user, err := u.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrRefreshTokenInvalid
		}
		return out, side, err
	}
	if !user.IsApproved {
		return out, side, ErrUserNotApproved
	}

	// 古い方をused扱いに（2重使用はMarkUsedのWHEREが弾く）
	if err := u.rtRepo.MarkUsed(ctx, stored.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrRefreshTokenInvalid
		}
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	plainNext, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}

	next := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(plainNext),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
	}
	if err := u.rtRepo.Create(ctx, next); err != nil {
		return out, side, err
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = plainNext
	return out, side, nil
}

// LogoutUsecaseは提示されたリフレッシュトークンを失効させる。
type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
	clock  Clock
}

// DI
func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository, clock Clock) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo, clock: clock}
}

// ログアウト実行。トークンが見つからなくても成功扱い（冪等）。
func (u *LogoutUsecase) Execute(ctx context.Context, plainRefresh string) error {
	if plainRefresh == "" {
		return nil
	}

	stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}

	if err := u.rtRepo.Revoke(ctx, stored.ID, u.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}
	return nil
}
