package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

type OperatorFinalizer interface {
	FinalizeAsOperator(ctx context.Context, callerID, draftID uuid.UUID) (*finalize.Result, error)
}

// AdminFinalizeDraft force-finalizes a draft after out-of-band payment
// confirmation. The service rejects callers without the operator flag.
func AdminFinalizeDraft(svc OperatorFinalizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draftID, err := parseUUIDParam(r, "draftID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.FinalizeAsOperator(ctx, callerID, draftID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"success":           true,
			"page_id":           result.PageID,
			"already_completed": result.AlreadyCompleted,
		})
	}
}
