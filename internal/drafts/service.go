package drafts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

// ServiceParams groups dependencies for the drafts service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service owns the mutable side of the draft lifecycle: creation and
// autosave. Finalization lives elsewhere and is the only writer of the
// completed status.
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds a drafts service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logger: params.Logger}, nil
}

// Create opens a new pending draft for the owner. Content is sanitized and
// dates normalized before it touches storage, so malformed builder payloads
// never round trip back out.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, c content.PageContent) (*models.Draft, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if c.PlanTier != "" && !c.PlanTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier").WithDetails(map[string]any{"tier": c.PlanTier.String()})
	}

	content.NormalizeDates(&c)
	content.SanitizeExtra(&c)

	draft := &models.Draft{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Content: c,
		Status:  enums.DraftStatusPending,
	}
	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create draft")
	}
	return draft, nil
}

// Autosave replaces the draft's content snapshot. Writes against a completed
// draft are refused so a finalized page can never drift from what was paid
// for.
func (s *Service) Autosave(ctx context.Context, ownerID, draftID uuid.UUID, c content.PageContent) (*models.Draft, error) {
	draft, err := s.getOwned(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Completed() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft is already finalized").WithDetails(map[string]any{
			"draft_id": draftID.String(),
		})
	}
	if c.PlanTier != "" && !c.PlanTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier").WithDetails(map[string]any{"tier": c.PlanTier.String()})
	}

	content.NormalizeDates(&c)
	content.SanitizeExtra(&c)

	if err := s.repo.UpdateContent(ctx, draftID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save draft content")
	}
	draft.Content = c
	return draft, nil
}

// Get loads an owner's draft.
func (s *Service) Get(ctx context.Context, ownerID, draftID uuid.UUID) (*models.Draft, error) {
	return s.getOwned(ctx, ownerID, draftID)
}

func (s *Service) getOwned(ctx context.Context, ownerID, draftID uuid.UUID) (*models.Draft, error) {
	draft, err := s.repo.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load draft")
	}
	// Cross-owner access reads as not found so draft ids cannot be probed.
	if draft.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	return draft, nil
}
