package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
)

// CheckoutSessionParams describes one hosted-checkout session. The draft id
// rides in client_reference_id so the webhook can recover it.
type CheckoutSessionParams struct {
	DraftID      string
	PlanName     string
	AmountCents  int64
	Currency     string
	ReturnOrigin string
}

// CheckoutSession is the subset of the provider response callers need.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// CreateCheckoutSession opens a hosted checkout session for a draft. The
// amount is always resolved server-side; client input never reaches here.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client not configured")
	}
	if strings.TrimSpace(params.DraftID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id is required")
	}
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	origin := strings.TrimRight(params.ReturnOrigin, "/")
	if origin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return origin is required")
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(params.DraftID),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/checkout/return?draft=%s", origin, params.DraftID)),
		CancelURL:         stripe.String(fmt.Sprintf("%s/builder?draft=%s", origin, params.DraftID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(params.Currency)),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.PlanName),
					},
				},
			},
		},
	}
	sessionParams.Context = ctx

	created, err := session.New(sessionParams)
	if err != nil {
		return nil, mapStripeError(err, "create checkout session")
	}
	return &CheckoutSession{ID: created.ID, RedirectURL: created.URL}, nil
}

func mapStripeError(err error, op string) error {
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op).WithDetails(map[string]any{
			"provider":      "stripe",
			"provider_code": string(stripeErr.Code),
			"provider_msg":  stripeErr.Msg,
		})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op).WithDetails(map[string]any{
		"provider": "stripe",
	})
}
