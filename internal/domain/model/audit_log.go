package model

import "time"

// 管理操作の種類
type AuditAction string

const (
	//在庫数を更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//賞味期限を更新した操作。
	AuditActionUpdateExpiry AuditAction = "UPDATE_EXPIRY"
	//発注提案への判断（承認/否認）。
	AuditActionReorderDecision AuditAction = "REORDER_DECISION"
	//ユーザー登録を承認した操作。
	AuditActionApproveUser AuditAction = "APPROVE_USER"
	//ユーザー登録を否認（削除）した操作。
	AuditActionDeclineUser AuditAction = "DECLINE_USER"
	//ユーザーのロールを変更した操作。
	AuditActionChangeRole AuditAction = "CHANGE_ROLE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceReorder AuditResourceType = "reorder"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ。「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID string `gorm:"type:uuid;not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。
	ResourceID string `gorm:"type:uuid;not null;index" json:"resource_id"`

	//変更前後をJSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
