package mpwebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/webhooks"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/mercadopago"
)

// Outcome describes how a notification was handled. All outcomes acknowledge
// with 200; the provider only retries on transport-level failure.
type Outcome string

const (
	OutcomeFinalized        Outcome = "finalized"
	OutcomeNotApproved      Outcome = "not_approved"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored"
)

// PaymentFetcher re-reads payment state from the provider. Notification
// bodies are hints, never trusted.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
}

// Finalizer is the slice of the finalize service the webhook needs.
type Finalizer interface {
	Finalize(ctx context.Context, draftID uuid.UUID, paymentID, trigger string) (*finalize.Result, error)
}

// ServiceParams groups dependencies for the Mercado Pago webhook service.
type ServiceParams struct {
	Payments  PaymentFetcher
	Finalizer Finalizer
	Guard     *webhooks.IdempotencyGuard
	Logger    *logger.Logger
}

// Service reacts to payment notifications. Signature verification happens at
// the controller.
type Service struct {
	payments  PaymentFetcher
	finalizer Finalizer
	guard     *webhooks.IdempotencyGuard
	logger    *logger.Logger
}

// NewService builds the Mercado Pago webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment fetcher required")
	}
	if params.Finalizer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "finalizer required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments:  params.Payments,
		finalizer: params.Finalizer,
		guard:     params.Guard,
		logger:    params.Logger,
	}, nil
}

// notification is the subset of the webhook body the service reads. The
// payment id normally arrives as the data.id query parameter; the body copy
// is the fallback.
type notification struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// ExtractPaymentID pulls the payment id out of a notification, preferring the
// query parameter the signature was computed over.
func ExtractPaymentID(queryDataID string, body []byte) string {
	if id := strings.TrimSpace(queryDataID); id != "" {
		return id
	}
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return ""
	}
	return n.Data.ID.String()
}

// Handle processes one verified notification for the given payment id.
func (s *Service) Handle(ctx context.Context, paymentID string) (Outcome, error) {
	if strings.TrimSpace(paymentID) == "" {
		return OutcomeIgnored, nil
	}
	ctx = s.logger.WithPaymentID(ctx, paymentID)

	seen, err := s.guard.CheckAndMark(ctx, paymentID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook replay guard")
	}
	if seen {
		return OutcomeAlreadyProcessed, nil
	}

	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		s.release(ctx, paymentID)
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			// The provider notified about a payment it will not return.
			s.logger.Warn(ctx, "notification for unknown payment")
			return OutcomeIgnored, nil
		}
		return "", err
	}

	if !payment.Approved() {
		// Pix notifications fire on every state change; release so the
		// approval notification gets processed.
		s.release(ctx, paymentID)
		return OutcomeNotApproved, nil
	}

	draftID, err := uuid.Parse(payment.DraftID)
	if err != nil {
		s.logger.Warn(ctx, "approved payment carries no usable draft reference")
		return OutcomeIgnored, nil
	}

	if _, err := s.finalizer.Finalize(ctx, draftID, mercadopago.PaymentRef(payment.ID), finalize.TriggerWebhook); err != nil {
		s.release(ctx, paymentID)
		return "", err
	}
	return OutcomeFinalized, nil
}

func (s *Service) release(ctx context.Context, paymentID string) {
	if err := s.guard.Release(ctx, paymentID); err != nil {
		s.logger.Warn(ctx, "failed to release webhook replay guard")
	}
}
