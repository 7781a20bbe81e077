package mpwebhook

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/webhooks"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/mercadopago"
)

type stubPayments struct {
	payments map[string]*mercadopago.Payment
	err      error
}

func (s *stubPayments) GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.payments[paymentID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	return p, nil
}

type stubFinalizer struct {
	calls []string
	err   error
}

func (s *stubFinalizer) Finalize(ctx context.Context, draftID uuid.UUID, paymentID, trigger string) (*finalize.Result, error) {
	s.calls = append(s.calls, draftID.String()+"|"+paymentID)
	if s.err != nil {
		return nil, s.err
	}
	return &finalize.Result{PageID: uuid.New()}, nil
}

type memStore struct {
	keys map[string]bool
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) { return "", errors.New("nil") }

func (s *memStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (s *memStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.keys, k)
	}
	return nil
}

func newTestService(t *testing.T, payments *stubPayments, fin *stubFinalizer) *Service {
	t.Helper()
	guard, err := webhooks.NewIdempotencyGuard(&memStore{keys: map[string]bool{}}, time.Hour, "mercadopago")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Payments:  payments,
		Finalizer: fin,
		Guard:     guard,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestHandleFinalizesApprovedPayment(t *testing.T) {
	draftID := uuid.New()
	payments := &stubPayments{payments: map[string]*mercadopago.Payment{
		"42": {ID: 42, Status: "approved", DraftID: draftID.String()},
	}}
	fin := &stubFinalizer{}
	svc := newTestService(t, payments, fin)

	outcome, err := svc.Handle(context.Background(), "42")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeFinalized {
		t.Fatalf("outcome = %s, want finalized", outcome)
	}
	if len(fin.calls) != 1 || fin.calls[0] != draftID.String()+"|mp_42" {
		t.Fatalf("unexpected finalize calls %v", fin.calls)
	}
}

func TestHandleNotApprovedReleasesGuard(t *testing.T) {
	draftID := uuid.New()
	payments := &stubPayments{payments: map[string]*mercadopago.Payment{
		"42": {ID: 42, Status: "pending", DraftID: draftID.String()},
	}}
	fin := &stubFinalizer{}
	svc := newTestService(t, payments, fin)

	outcome, err := svc.Handle(context.Background(), "42")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeNotApproved {
		t.Fatalf("outcome = %s, want not_approved", outcome)
	}
	if len(fin.calls) != 0 {
		t.Fatal("pending payment must not finalize")
	}

	// Approval arrives later; the guard must not block it.
	payments.payments["42"].Status = "approved"
	outcome, err = svc.Handle(context.Background(), "42")
	if err != nil {
		t.Fatalf("Handle (approved): %v", err)
	}
	if outcome != OutcomeFinalized || len(fin.calls) != 1 {
		t.Fatalf("approval notification must finalize, outcome=%s calls=%d", outcome, len(fin.calls))
	}
}

func TestHandleDeduplicates(t *testing.T) {
	draftID := uuid.New()
	payments := &stubPayments{payments: map[string]*mercadopago.Payment{
		"42": {ID: 42, Status: "approved", DraftID: draftID.String()},
	}}
	fin := &stubFinalizer{}
	svc := newTestService(t, payments, fin)

	if _, err := svc.Handle(context.Background(), "42"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	outcome, err := svc.Handle(context.Background(), "42")
	if err != nil {
		t.Fatalf("Handle (redelivery): %v", err)
	}
	if outcome != OutcomeAlreadyProcessed || len(fin.calls) != 1 {
		t.Fatalf("redelivery must be dropped, outcome=%s calls=%d", outcome, len(fin.calls))
	}
}

func TestHandleUnknownPaymentIgnored(t *testing.T) {
	svc := newTestService(t, &stubPayments{payments: map[string]*mercadopago.Payment{}}, &stubFinalizer{})

	outcome, err := svc.Handle(context.Background(), "404")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeIgnored {
		t.Fatalf("outcome = %s, want ignored", outcome)
	}
}

func TestHandleFinalizeFailureRetryable(t *testing.T) {
	draftID := uuid.New()
	payments := &stubPayments{payments: map[string]*mercadopago.Payment{
		"42": {ID: 42, Status: "approved", DraftID: draftID.String()},
	}}
	fin := &stubFinalizer{err: errors.New("db down")}
	svc := newTestService(t, payments, fin)

	if _, err := svc.Handle(context.Background(), "42"); err == nil {
		t.Fatal("expected finalize failure to surface")
	}

	fin.err = nil
	outcome, err := svc.Handle(context.Background(), "42")
	if err != nil {
		t.Fatalf("Handle retry: %v", err)
	}
	if outcome != OutcomeFinalized || len(fin.calls) != 2 {
		t.Fatalf("retry must reach finalize, outcome=%s calls=%d", outcome, len(fin.calls))
	}
}

func TestExtractPaymentID(t *testing.T) {
	if got := ExtractPaymentID("77", []byte(`{"data":{"id":"99"}}`)); got != "77" {
		t.Fatalf("query param must win, got %q", got)
	}
	if got := ExtractPaymentID("", []byte(`{"type":"payment","data":{"id":"99"}}`)); got != "99" {
		t.Fatalf("body fallback = %q, want 99", got)
	}
	if got := ExtractPaymentID("", []byte(`{"data":{"id":12345}}`)); got != "12345" {
		t.Fatalf("numeric id = %q, want 12345", got)
	}
	if got := ExtractPaymentID("", []byte(`not json`)); got != "" {
		t.Fatalf("unparseable body = %q, want empty", got)
	}
}
