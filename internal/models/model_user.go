package models

import (
	"time"

	"github.com/petalmall/membership/pkg/types"
)

// User is an account in the membership mall. Role gates the admin API.
type User struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         *string    `gorm:"column:name;type:varchar(255)" json:"name"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         types.Role `gorm:"column:role;type:varchar(16);not null;default:'USER'" json:"role"`
	// CreatedAt/UpdatedAt are managed by GORM.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
