package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

// Draft is the mutable payment intent for an in-progress page. Once Status is
// completed the row is read-only except for audit timestamps; the transition
// itself happens through a conditional update so concurrent finalizers cannot
// both win.
type Draft struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID    uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index"`
	Content    content.PageContent `gorm:"column:content;type:jsonb;serializer:json"`
	Status     enums.DraftStatus   `gorm:"column:status;type:draft_status;not null;default:'pending'"`
	PaymentID  *string             `gorm:"column:payment_id"`
	LovePageID *uuid.UUID          `gorm:"column:love_page_id;type:uuid"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Draft) TableName() string { return "drafts" }

// Completed reports whether the draft has already produced a page.
func (d *Draft) Completed() bool {
	return d != nil && d.Status == enums.DraftStatusCompleted
}
