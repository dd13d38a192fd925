package model

import "time"

type ReorderStatus string

const (
	ReorderPending  ReorderStatus = "pending"
	ReorderAccepted ReorderStatus = "accepted"
	ReorderDeclined ReorderStatus = "declined"
)

// 商品ごとに1行だけ保持する（再申請は同じ行を上書き）
type ReorderRequest struct {
	ID        string        `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID string        `gorm:"type:uuid;not null;uniqueIndex" json:"product_id"`
	Status    ReorderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Remarks   string        `gorm:"type:text" json:"remarks"`

	// 承認された回数。承認以外では増えない。
	ReorderCount int64 `gorm:"column:reorder_count;not null" json:"reorder_count"`

	// 最後に承認された時刻。否認では更新しない。
	LastReorder *time.Time `gorm:"column:last_reorder" json:"last_reorder"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 判断の適用結果タグ
type DecisionOutcome string

const (
	OutcomeCreated      DecisionOutcome = "CREATED"
	OutcomeCountUpdated DecisionOutcome = "REORDER_COUNT_UPDATED"
	OutcomeNoUpdate     DecisionOutcome = "ALREADY_EXISTS_NO_UPDATE"
)

// 既存行に対する判断の効果
type TransitionEffect struct {
	Outcome          DecisionOutcome
	IncrementCount   bool
	TouchLastReorder bool
	UpdateRemarks    bool
}

// 既存行 × 判断 の遷移表。
// 「承認済みの後の否認はカウンタに触れない」はここの1行で決まる。
var transitions = map[ReorderStatus]TransitionEffect{
	ReorderAccepted: {
		Outcome:          OutcomeCountUpdated,
		IncrementCount:   true,
		TouchLastReorder: true,
		UpdateRemarks:    true,
	},
	ReorderDeclined: {
		Outcome: OutcomeNoUpdate,
	},
}

// Transitionは既存のReorderRequestへ判断を適用したときの効果を返す。
// 行の状態によらず判断のみで決まる（承認だけがカウンタを進める）。
func Transition(decision ReorderStatus) (TransitionEffect, bool) {
	eff, ok := transitions[decision]
	return eff, ok
}

// NewReorderRequestは商品に対する最初の判断から行を作る。
// 承認ならcount=1・lastReorder=now、否認ならcount=0・lastReorderなし。
func NewReorderRequest(id, productID string, decision ReorderStatus, remarks string, now time.Time) ReorderRequest {
	r := ReorderRequest{
		ID:        id,
		ProductID: productID,
		Status:    decision,
		Remarks:   remarks,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if decision == ReorderAccepted {
		r.ReorderCount = 1
		r.LastReorder = &now
	}
	return r
}
