package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile record looked up for ownership and operator checks.
type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email      string    `gorm:"column:email;not null;uniqueIndex"`
	Name       string    `gorm:"column:name"`
	IsOperator bool      `gorm:"column:is_operator;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
