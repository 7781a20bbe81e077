package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/plans"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/paypal"
)

// PayPalAdapter implements the client-approval flow: the server opens an
// order, the client SDK collects approval, and the capture response is the
// proof of payment.
type PayPalAdapter struct {
	client   *paypal.Client
	currency string
}

func NewPayPalAdapter(client *paypal.Client, currency string) *PayPalAdapter {
	return &PayPalAdapter{client: client, currency: currency}
}

func (a *PayPalAdapter) Name() string { return "paypal" }

func (a *PayPalAdapter) CreateCharge(ctx context.Context, draftID uuid.UUID, tier enums.PlanTier) (*Charge, error) {
	plan, err := plans.Lookup(tier)
	if err != nil {
		return nil, err
	}
	amount, err := plan.Amount(a.currency)
	if err != nil {
		return nil, err
	}

	order, err := a.client.CreateOrder(ctx, draftID.String(), amount, plan.Description)
	if err != nil {
		return nil, err
	}
	return &Charge{Provider: a.Name(), OrderID: order.ID}, nil
}

// CaptureProof is the payment evidence extracted from a capture response.
type CaptureProof struct {
	DraftID   uuid.UUID
	PaymentID string
}

// Capture settles an approved order and returns the proof needed to
// finalize. A capture that does not come back COMPLETED is a provider error,
// not a payment.
func (a *PayPalAdapter) Capture(ctx context.Context, orderID string) (*CaptureProof, error) {
	order, err := a.client.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Approved() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order capture did not complete").WithDetails(map[string]any{
			"provider":        a.Name(),
			"provider_status": order.Status,
		})
	}
	draftID, err := uuid.Parse(order.DraftID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "capture carries no usable draft reference").WithDetails(map[string]any{
			"provider": a.Name(),
		})
	}

	paymentID := order.CaptureID
	if paymentID == "" {
		paymentID = order.ID
	}
	return &CaptureProof{DraftID: draftID, PaymentID: paymentID}, nil
}
