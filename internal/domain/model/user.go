package model

import "time"

type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(50);not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`

	// 管理者が承認するまでログイン不可
	IsApproved bool `gorm:"not null;default:false" json:"is_approved"`

	// ロール変更や強制ログアウトで+1（古いJWTを無効化する）
	TokenVersion int `gorm:"not null;default:0" json:"token_version"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
