package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

// Charge is what a provider hands back when a charge is opened. Exactly one
// of the flow-specific fields is populated, depending on the provider's
// checkout model.
type Charge struct {
	Provider string

	// RedirectURL is set by hosted-redirect providers.
	RedirectURL string

	// OrderID is set by client-approval providers and goes back to the
	// client SDK for the approval step.
	OrderID string

	// PaymentID and the QR fields are set by QR-polling providers.
	PaymentID   string
	QRCode      string
	QRCodeImage string
}

// Adapter opens a provider charge for a draft. Amounts are resolved
// server-side from the plan tier; the client only ever picks the tier.
type Adapter interface {
	Name() string
	CreateCharge(ctx context.Context, draftID uuid.UUID, tier enums.PlanTier) (*Charge, error)
}
