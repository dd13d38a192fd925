package model

import "time"

//アラート解消などで在庫数を直接動かしたときの履歴

type StockAdjustment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	Delta     int64  `gorm:"not null" json:"delta"`
	Reason    string `gorm:"type:varchar(255);not null" json:"reason"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
