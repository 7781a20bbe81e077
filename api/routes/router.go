package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lovepage-app/lovepage-backend/api/controllers"
	webhookcontrollers "github.com/lovepage-app/lovepage-backend/api/controllers/webhooks"
	"github.com/lovepage-app/lovepage-backend/api/middleware"
	"github.com/lovepage-app/lovepage-backend/internal/pages"
	"github.com/lovepage-app/lovepage-backend/internal/payments"
	"github.com/lovepage-app/lovepage-backend/pkg/config"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/redis"
	"github.com/lovepage-app/lovepage-backend/pkg/storage/gcs"
	"github.com/lovepage-app/lovepage-backend/pkg/stripe"
)

type webhookSecretSource interface {
	WebhookSecret() string
}

// Params collects everything the router wires into handlers.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB      db.Pinger
	Redis   redis.Pinger
	Storage gcs.Pinger
	Metrics prometheus.Gatherer

	Drafts    controllers.DraftsService
	Pages     pages.Repository
	Finalizer controllers.Finalizer
	Operator  controllers.OperatorFinalizer

	StripeAdapter      *payments.StripeAdapter
	PayPalAdapter      *payments.PayPalAdapter
	MercadoPagoAdapter *payments.MercadoPagoAdapter

	StripeClient        *stripe.Client
	StripeWebhooks      webhookcontrollers.StripeWebhookService
	MercadoPagoSecrets  webhookSecretSource
	MercadoPagoWebhooks webhookcontrollers.MercadoPagoWebhookService
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis, p.Storage))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhooks, p.StripeClient, logg))
		r.Post("/mercadopago", webhookcontrollers.MercadoPagoWebhook(p.MercadoPagoWebhooks, p.MercadoPagoSecrets, logg))
		r.Post("/paypal", webhookcontrollers.PayPalWebhook(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", controllers.SaveDraft(p.Drafts, logg))
			r.Get("/{draftID}", controllers.GetDraft(p.Drafts, logg))
		})

		r.Get("/pages", controllers.ListPages(p.Pages, logg))

		r.Post("/checkout/sessions", controllers.CreateCheckoutSession(p.Drafts, p.StripeAdapter, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(p.Drafts, p.PayPalAdapter, logg))
			r.Post("/{orderID}/capture", controllers.CaptureOrder(p.PayPalAdapter, p.Finalizer, logg))
		})

		r.Route("/charges", func(r chi.Router) {
			r.Post("/", controllers.CreateCharge(p.Drafts, p.MercadoPagoAdapter, logg))
			r.Get("/{paymentID}/status", controllers.GetChargeStatus(p.Drafts, p.MercadoPagoAdapter, p.Finalizer, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/drafts/{draftID}/finalize", controllers.AdminFinalizeDraft(p.Operator, logg))
	})

	return r
}
