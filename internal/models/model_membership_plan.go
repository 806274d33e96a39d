package models

import (
	"time"

	"github.com/petalmall/membership/pkg/types"
)

// MembershipPlan is a purchasable offering. Orders copy Price/Currency
// at creation; later plan edits never touch existing orders.
type MembershipPlan struct {
	ID           int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string             `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Price        int64              `gorm:"column:price;type:bigint;not null" json:"price"`
	Currency     string             `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	BillingCycle types.BillingCycle `gorm:"column:billing_cycle;type:varchar(16);not null" json:"billing_cycle"`
	Description  *string            `gorm:"column:description;type:text" json:"description"`
	// IsActive gates purchasability, not visibility to admins.
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MembershipPlan) TableName() string {
	return "membership_plan"
}
