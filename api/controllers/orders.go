package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/api/validators"
	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/payments"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

type OrderCapturer interface {
	Capture(ctx context.Context, orderID string) (*payments.CaptureProof, error)
}

type Finalizer interface {
	Finalize(ctx context.Context, draftID uuid.UUID, paymentID, trigger string) (*finalize.Result, error)
}

// CreateOrder starts a PayPal order for the draft. The client approves it in
// the PayPal popup and then calls the capture endpoint.
func CreateOrder(drafts DraftsService, adapter ChargeAdapter, logg *logger.Logger) http.HandlerFunc {
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
			"order_id": charge.OrderID,
		})
	}
}

// CaptureOrder captures an approved PayPal order and finalizes the draft the
// capture proves payment for. The capture response is the proof, no webhook
// round trip is involved.
func CaptureOrder(capturer OrderCapturer, finalizer Finalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, err := requireOwner(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		if orderID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		proof, err := capturer.Capture(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := finalizer.Finalize(ctx, proof.DraftID, proof.PaymentID, finalize.TriggerCapture)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"success": true,
			"page_id": result.PageID,
		})
	}
}
