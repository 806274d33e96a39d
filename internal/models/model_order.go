package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/petalmall/membership/pkg/types"
)

// OrderExtra carries the plan snapshot taken at creation time. Orders
// must stay resolvable even if the plan is later edited.
type OrderExtra struct {
	// PlanSnapshot 下单时的套餐快照
	PlanSnapshot *MembershipPlan `json:"plan_snapshot"`
}

// Order is one purchase attempt linking a user to a plan snapshot.
// Status only moves along the lifecycle edges enforced by the order
// service; Amount/Currency are copied from the plan at creation and
// never recomputed.
type Order struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement;index:idx_user_id_id,priority:2,sort:desc" json:"id"`
	OrderNo string `gorm:"column:order_no;type:varchar(64);not null;uniqueIndex" json:"order_no"`
	UserID  int64  `gorm:"column:user_id;not null;index:idx_user_id_id,priority:1" json:"user_id"`
	PlanID  int64  `gorm:"column:plan_id;not null" json:"plan_id"`
	// Amount 订单金额，单位：最小货币单位
	Amount         int64                `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency       string               `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	Status         types.OrderStatus    `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	PaymentChannel types.PaymentChannel `gorm:"column:payment_channel;type:varchar(32);not null" json:"payment_channel"`
	// PaidAt is set exactly once, by the payment-confirmation edge.
	PaidAt    *time.Time                      `gorm:"column:paid_at;default:null" json:"paid_at"`
	Extra     datatypes.JSONType[*OrderExtra] `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) GetPlanSnapshot() *MembershipPlan {
	if o == nil || o.Extra.Data() == nil {
		return nil
	}
	return o.Extra.Data().PlanSnapshot
}
