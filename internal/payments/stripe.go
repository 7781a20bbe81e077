package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/plans"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/stripe"
)

// StripeAdapter implements the hosted-redirect flow: the client is sent to a
// provider-hosted checkout page and proof arrives on the webhook.
type StripeAdapter struct {
	client       *stripe.Client
	currency     string
	returnOrigin string
}

func NewStripeAdapter(client *stripe.Client, currency, returnOrigin string) *StripeAdapter {
	return &StripeAdapter{client: client, currency: currency, returnOrigin: returnOrigin}
}

func (a *StripeAdapter) Name() string { return "stripe" }

func (a *StripeAdapter) CreateCharge(ctx context.Context, draftID uuid.UUID, tier enums.PlanTier) (*Charge, error) {
	plan, err := plans.Lookup(tier)
	if err != nil {
		return nil, err
	}
	amount, err := plan.Amount(a.currency)
	if err != nil {
		return nil, err
	}

	session, err := a.client.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		DraftID:      draftID.String(),
		PlanName:     plan.Name,
		AmountCents:  amount,
		Currency:     a.currency,
		ReturnOrigin: a.returnOrigin,
	})
	if err != nil {
		return nil, err
	}
	return &Charge{Provider: a.Name(), RedirectURL: session.RedirectURL}, nil
}
