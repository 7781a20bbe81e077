package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/content"
)

// LovePage is the permanent, publicly servable artifact produced from a paid
// draft. DraftID is unique: a draft can only ever materialize one page.
type LovePage struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DraftID   uuid.UUID           `gorm:"column:draft_id;type:uuid;not null;uniqueIndex:ux_love_pages_draft_id"`
	OwnerID   uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index"`
	Content   content.PageContent `gorm:"column:content;type:jsonb;serializer:json"`
	PaymentID string              `gorm:"column:payment_id;not null"`
	ExpiresAt *time.Time          `gorm:"column:expires_at"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (LovePage) TableName() string { return "love_pages" }
