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

type ChargeStatusFetcher interface {
	GetStatus(ctx context.Context, paymentID string) (*payments.PaymentStatus, error)
}

// CreateCharge starts a Mercado Pago pix charge and returns the QR payload
// plus the provider payment id the client polls with.
func CreateCharge(drafts DraftsService, adapter ChargeAdapter, logg *logger.Logger) http.HandlerFunc {
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
			"payment_id":     charge.PaymentID,
			"qr_code":        charge.QRCode,
			"qr_code_base64": charge.QRCodeImage,
		})
	}
}

// GetChargeStatus is the pix poll endpoint. The status is re-read from the
// provider on every call and the draft id asserted against the query so one
// owner cannot finalize another owner's draft by guessing payment ids.
func GetChargeStatus(drafts DraftsService, fetcher ChargeStatusFetcher, finalizer Finalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		paymentID := strings.TrimSpace(chi.URLParam(r, "paymentID"))
		if paymentID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required"))
			return
		}

		draftID, err := uuid.Parse(r.URL.Query().Get("draft_id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "draft_id query parameter is required"))
			return
		}

		// Ownership check before anything provider-side.
		if _, err := drafts.Get(ctx, ownerID, draftID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := fetcher.GetStatus(ctx, paymentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if status.DraftID != draftID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found"))
			return
		}

		if !status.Approved {
			responses.WriteSuccess(w, map[string]any{"status": status.Status})
			return
		}

		result, err := finalizer.Finalize(ctx, draftID, status.PaymentRef, finalize.TriggerPoll)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":  status.Status,
			"page_id": result.PageID,
		})
	}
}
