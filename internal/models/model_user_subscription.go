package models

import (
	"time"

	"github.com/petalmall/membership/pkg/types"
)

// UserSubscription is an entitlement period granted by a paid order.
// Use ActiveAt to determine whether it currently blocks user deletion.
type UserSubscription struct {
	ID        int64                    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64                    `gorm:"column:user_id;not null;index" json:"user_id"`
	PlanID    int64                    `gorm:"column:plan_id;not null" json:"plan_id"`
	Status    types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	StartAt   time.Time                `gorm:"column:start_at;not null" json:"start_at"`
	EndAt     time.Time                `gorm:"column:end_at;not null" json:"end_at"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func (UserSubscription) TableName() string {
	return "user_subscription"
}

// ActiveAt reports whether the subscription is ACTIVE with a strictly
// future expiry at the given instant.
func (s *UserSubscription) ActiveAt(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.EndAt.After(now)
}
