package drafts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

// Repository handles draft persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, draft *models.Draft) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	UpdateContent(ctx context.Context, id uuid.UUID, c content.PageContent) error
	SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, paymentID string, pageID uuid.UUID) (bool, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Draft, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a drafts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, draft *models.Draft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	var draft models.Draft
	if err := r.db.WithContext(ctx).First(&draft, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *repository) UpdateContent(ctx context.Context, id uuid.UUID, c content.PageContent) error {
	return r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ?", id).
		Update("content", c).Error
}

func (r *repository) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ?", id).
		UpdateColumn("payment_id", paymentID).Error
}

// MarkCompleted flips a draft to completed with a single conditional update.
// The status guard in the WHERE clause makes the transition first-wins under
// concurrency: exactly one caller sees true, everyone else false.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, paymentID string, pageID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("id = ? AND status <> ?", id, enums.DraftStatusCompleted).
		Updates(map[string]any{
			"status":       enums.DraftStatusCompleted,
			"payment_id":   paymentID,
			"love_page_id": pageID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListStalePending returns pending drafts untouched since before cutoff,
// oldest first. Used by the retention sweep.
func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Draft, error) {
	var stale []models.Draft
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.DraftStatusPending, cutoff).
		Order("updated_at asc").
		Limit(limit).
		Find(&stale).Error
	if err != nil {
		return nil, err
	}
	return stale, nil
}
