package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/api/middleware"
	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/api/validators"
	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

type DraftsService interface {
	Create(ctx context.Context, ownerID uuid.UUID, c content.PageContent) (*models.Draft, error)
	Autosave(ctx context.Context, ownerID, draftID uuid.UUID, c content.PageContent) (*models.Draft, error)
	Get(ctx context.Context, ownerID, draftID uuid.UUID) (*models.Draft, error)
}

type autosaveRequest struct {
	DraftID *uuid.UUID          `json:"draft_id"`
	Content content.PageContent `json:"content"`
}

type draftResponse struct {
	ID         uuid.UUID           `json:"id"`
	Status     string              `json:"status"`
	Content    content.PageContent `json:"content"`
	LovePageID *uuid.UUID          `json:"love_page_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func newDraftResponse(d *models.Draft) draftResponse {
	return draftResponse{
		ID:         d.ID,
		Status:     d.Status.String(),
		Content:    d.Content,
		LovePageID: d.LovePageID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// SaveDraft creates a draft on the first call and autosaves on subsequent
// calls carrying a draft_id.
func SaveDraft(svc DraftsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req autosaveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var draft *models.Draft
		if req.DraftID == nil {
			draft, err = svc.Create(ctx, ownerID, req.Content)
		} else {
			draft, err = svc.Autosave(ctx, ownerID, *req.DraftID, req.Content)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusOK
		if req.DraftID == nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, newDraftResponse(draft))
	}
}

// GetDraft fetches an owned draft for resume-edit.
func GetDraft(svc DraftsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draftID, err := parseUUIDParam(r, "draftID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft, err := svc.Get(ctx, ownerID, draftID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDraftResponse(draft))
	}
}

func requireOwner(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.OwnerIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials")
	}
	return ownerID, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
