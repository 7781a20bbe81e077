package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	mpwebhook "github.com/lovepage-app/lovepage-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/mercadopago"
)

type MercadoPagoWebhookService interface {
	Handle(ctx context.Context, paymentID string) (mpwebhook.Outcome, error)
}

type mercadoPagoSecretSource interface {
	WebhookSecret() string
}

// MercadoPagoWebhook verifies the x-signature HMAC and hands the payment id
// to the webhook service. A missing secret is a deployment fault, not a
// caller fault. Signature failures return a generic 401 with no detail.
func MercadoPagoWebhook(svc MercadoPagoWebhookService, secrets mercadoPagoSecretSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if secrets == nil || secrets.WebhookSecret() == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret not configured"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		dataID := r.URL.Query().Get("data.id")
		header := mercadopago.SignatureHeader{
			XSignature: r.Header.Get("x-signature"),
			XRequestID: r.Header.Get("x-request-id"),
			DataID:     dataID,
		}
		if !mercadopago.VerifySignature(secrets.WebhookSecret(), header) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized"))
			return
		}

		paymentID := mpwebhook.ExtractPaymentID(dataID, body)
		outcome, err := svc.Handle(ctx, paymentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"outcome": string(outcome)})
	}
}
