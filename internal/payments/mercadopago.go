package payments

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/plans"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/mercadopago"
)

// MercadoPagoAdapter implements the QR flow: the server opens a pix charge,
// the client renders the QR and polls for settlement.
type MercadoPagoAdapter struct {
	client   *mercadopago.Client
	currency string
}

func NewMercadoPagoAdapter(client *mercadopago.Client, currency string) *MercadoPagoAdapter {
	return &MercadoPagoAdapter{client: client, currency: currency}
}

func (a *MercadoPagoAdapter) Name() string { return "mercadopago" }

func (a *MercadoPagoAdapter) CreateCharge(ctx context.Context, draftID uuid.UUID, tier enums.PlanTier) (*Charge, error) {
	plan, err := plans.Lookup(tier)
	if err != nil {
		return nil, err
	}
	amount, err := plan.Amount(a.currency)
	if err != nil {
		return nil, err
	}

	payment, err := a.client.CreateQRCharge(ctx, draftID.String(), amount, plan.Description, "")
	if err != nil {
		return nil, err
	}
	// The raw provider id goes back to the client; polling round trips it.
	return &Charge{
		Provider:    a.Name(),
		PaymentID:   strconv.FormatInt(payment.ID, 10),
		QRCode:      payment.QRCode,
		QRCodeImage: payment.QRCodeBase64,
	}, nil
}

// PaymentStatus is the poll view of a pix charge. PaymentRef is the stable
// reference recorded on the finalized page.
type PaymentStatus struct {
	DraftID    uuid.UUID
	Approved   bool
	Status     string
	PaymentRef string
}

// GetStatus re-reads a payment from the provider. The draft id comes from the
// provider record, never from the polling client.
func (a *MercadoPagoAdapter) GetStatus(ctx context.Context, paymentID string) (*PaymentStatus, error) {
	payment, err := a.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	status := &PaymentStatus{
		Approved:   payment.Approved(),
		Status:     payment.Status,
		PaymentRef: mercadopago.PaymentRef(payment.ID),
	}
	if draftID, err := uuid.Parse(payment.DraftID); err == nil {
		status.DraftID = draftID
	}
	return status, nil
}
