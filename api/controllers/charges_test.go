package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/payments"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/types"
)

type stubStatusFetcher struct {
	status *payments.PaymentStatus
	err    error

	lastPayment string
}

func (s *stubStatusFetcher) GetStatus(ctx context.Context, paymentID string) (*payments.PaymentStatus, error) {
	s.lastPayment = paymentID
	return s.status, s.err
}

func chargeStatusRouter(drafts DraftsService, fetcher ChargeStatusFetcher, finalizer Finalizer) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/charges/{paymentID}/status", GetChargeStatus(drafts, fetcher, finalizer, nil))
	return r
}

func TestGetChargeStatus_PendingReturnsStatusOnly(t *testing.T) {
	ownerID := uuid.New()
	draftID := uuid.New()
	drafts := &stubDraftsService{fetched: &models.Draft{ID: draftID, OwnerID: ownerID, Status: enums.DraftStatusPending}}
	fetcher := &stubStatusFetcher{status: &payments.PaymentStatus{DraftID: draftID, Status: "pending"}}
	finalizer := &stubFinalizer{}

	r := chargeStatusRouter(drafts, fetcher, finalizer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/charges/42/status?draft_id="+draftID.String(), nil, ownerID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if finalizer.lastPayment != "" {
		t.Fatalf("pending payment must not finalize")
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["status"] != "pending" {
		t.Fatalf("status = %v", data["status"])
	}
	if _, ok := data["page_id"]; ok {
		t.Fatalf("pending response must not carry a page id")
	}
}

func TestGetChargeStatus_ApprovedFinalizes(t *testing.T) {
	ownerID := uuid.New()
	draftID := uuid.New()
	pageID := uuid.New()
	drafts := &stubDraftsService{fetched: &models.Draft{ID: draftID, OwnerID: ownerID, Status: enums.DraftStatusPending}}
	fetcher := &stubStatusFetcher{status: &payments.PaymentStatus{
		DraftID:    draftID,
		Approved:   true,
		Status:     "approved",
		PaymentRef: "mp_42",
	}}
	finalizer := &stubFinalizer{result: &finalize.Result{PageID: pageID}}

	r := chargeStatusRouter(drafts, fetcher, finalizer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/charges/42/status?draft_id="+draftID.String(), nil, ownerID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if fetcher.lastPayment != "42" {
		t.Fatalf("fetched payment %q, want 42", fetcher.lastPayment)
	}
	if finalizer.lastDraft != draftID || finalizer.lastPayment != "mp_42" {
		t.Fatalf("finalize got draft=%s payment=%s", finalizer.lastDraft, finalizer.lastPayment)
	}
	if finalizer.lastTrigger != finalize.TriggerPoll {
		t.Fatalf("trigger = %q, want %q", finalizer.lastTrigger, finalize.TriggerPoll)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["page_id"] != pageID.String() {
		t.Fatalf("page_id = %v, want %s", data["page_id"], pageID)
	}
}

func TestGetChargeStatus_DraftMismatchReadsAsNotFound(t *testing.T) {
	ownerID := uuid.New()
	draftID := uuid.New()
	drafts := &stubDraftsService{fetched: &models.Draft{ID: draftID, OwnerID: ownerID, Status: enums.DraftStatusPending}}
	fetcher := &stubStatusFetcher{status: &payments.PaymentStatus{
		DraftID:  uuid.New(),
		Approved: true,
		Status:   "approved",
	}}
	finalizer := &stubFinalizer{}

	r := chargeStatusRouter(drafts, fetcher, finalizer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/charges/42/status?draft_id="+draftID.String(), nil, ownerID))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on draft mismatch, got %d", rec.Code)
	}
	if finalizer.lastPayment != "" {
		t.Fatalf("mismatched payment must not finalize")
	}
}

func TestGetChargeStatus_MissingDraftIDRejected(t *testing.T) {
	r := chargeStatusRouter(&stubDraftsService{}, &stubStatusFetcher{}, &stubFinalizer{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/charges/42/status", nil, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without draft_id, got %d", rec.Code)
	}
}
