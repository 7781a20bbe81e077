package models

import (
	"time"

	"github.com/google/uuid"
)

// PageIndexEntry is the lightweight pointer kept under an owner for listing
// their pages without loading full content snapshots.
type PageIndexEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	PageID    uuid.UUID `gorm:"column:page_id;type:uuid;not null;uniqueIndex:ux_page_index_page_id"`
	Title     string    `gorm:"column:title;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PageIndexEntry) TableName() string { return "page_index_entries" }
