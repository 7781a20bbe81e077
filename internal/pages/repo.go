package pages

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
)

// Repository handles permanent page persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, page *models.LovePage) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LovePage, error)
	FindByDraftID(ctx context.Context, draftID uuid.UUID) (*models.LovePage, error)
	AppendIndexEntry(ctx context.Context, entry *models.PageIndexEntry) error
	ListIndexByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PageIndexEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pages repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, page *models.LovePage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LovePage, error) {
	var page models.LovePage
	if err := r.db.WithContext(ctx).First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// FindByDraftID returns the page already minted for a draft, or nil when none
// exists. The unique index on draft_id makes at most one row possible.
func (r *repository) FindByDraftID(ctx context.Context, draftID uuid.UUID) (*models.LovePage, error) {
	var page models.LovePage
	err := r.db.WithContext(ctx).First(&page, "draft_id = ?", draftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *repository) AppendIndexEntry(ctx context.Context, entry *models.PageIndexEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListIndexByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PageIndexEntry, error) {
	var entries []models.PageIndexEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
