package model

import "time"

type Product struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(50);not null" json:"name"`
	Barcode  string `gorm:"type:varchar(50);not null;uniqueIndex" json:"barcode"`
	Quantity int64  `gorm:"not null" json:"quantity"`

	// 賞味期限（無い商品はnull）
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`

	// 未対応の在庫アラートがあるか。reorder判断が入るとfalseに戻る。
	QuantityNotif bool `gorm:"column:quantity_notif;not null" json:"quantity_notif"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
