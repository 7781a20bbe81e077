package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/webhooks"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

// Finalizer is the slice of the finalize service the webhook needs.
type Finalizer interface {
	Finalize(ctx context.Context, draftID uuid.UUID, paymentID, trigger string) (*finalize.Result, error)
}

// ServiceParams groups dependencies for the Stripe webhook service.
type ServiceParams struct {
	Finalizer Finalizer
	Guard     *webhooks.IdempotencyGuard
	Logger    *logger.Logger
}

// Service reacts to checkout settlement events. Signature verification
// happens at the controller; by the time an event reaches here it is
// authentic.
type Service struct {
	finalizer Finalizer
	guard     *webhooks.IdempotencyGuard
	logger    *logger.Logger
}

// NewService builds the Stripe webhook service.
func NewService(params ServiceParams) (*Service, error) {
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
		finalizer: params.Finalizer,
		guard:     params.Guard,
		logger:    params.Logger,
	}, nil
}

// HandleEvent processes one verified event. Unknown event types and sessions
// without a draft reference are acknowledged and dropped; returning an error
// makes the provider redeliver.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}

	draftID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		// Not a session this service opened; nothing to finalize.
		s.logger.Warn(ctx, "checkout session settled without a draft reference")
		return nil
	}

	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook replay guard")
	}
	if seen {
		return nil
	}

	paymentID := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		paymentID = session.PaymentIntent.ID
	}

	if _, err := s.finalizer.Finalize(ctx, draftID, paymentID, finalize.TriggerWebhook); err != nil {
		// Free the event id so the provider's redelivery gets a clean retry.
		if releaseErr := s.guard.Release(ctx, event.ID); releaseErr != nil {
			s.logger.Warn(ctx, "failed to release webhook replay guard")
		}
		return err
	}
	return nil
}
