package webhooks

import (
	"io"
	"net/http"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

// PayPalWebhook acknowledges PayPal notifications without acting on them.
// Finalization happens synchronously on the capture response, so webhook
// deliveries carry no new information and only need a 200 to stop retries.
func PayPalWebhook(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		if logg != nil {
			logg.Info(r.Context(), "paypal webhook acknowledged")
		}
		responses.WriteSuccess(w, nil)
	}
}
