package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/api/validators"
	"github.com/lovepage-app/lovepage-backend/internal/payments"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

type ChargeAdapter interface {
	Name() string
	CreateCharge(ctx context.Context, draftID uuid.UUID, tier enums.PlanTier) (*payments.Charge, error)
}

type checkoutRequest struct {
	DraftID uuid.UUID `json:"draft_id" validate:"required"`
}

// chargeableDraft loads the owned draft and rejects drafts that already
// produced a page. The plan tier always comes from the stored draft, never
// from the request.
func chargeableDraft(ctx context.Context, svc DraftsService, ownerID, draftID uuid.UUID) (*models.Draft, error) {
	draft, err := svc.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Completed() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft is already completed")
	}
	return draft, nil
}

// CreateCheckoutSession starts a Stripe hosted checkout for the draft and
// returns the redirect URL.
func CreateCheckoutSession(drafts DraftsService, adapter ChargeAdapter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft, err := chargeableDraft(ctx, drafts, ownerID, req.DraftID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		charge, err := adapter.CreateCharge(ctx, draft.ID, draft.Content.PlanTier)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"redirect_url": charge.RedirectURL,
		})
	}
}
