package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lovepage-app/lovepage-backend/pkg/config"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

const defaultBaseURL = "https://api.mercadopago.com"

var errAccessTokenRequired = errors.New("mercadopago access token is required")

// Client talks to the Mercado Pago payments API for Pix QR charges.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	accessToken   string
	currency      string
	webhookSecret string
	logger        *logger.Logger
}

func NewClient(ctx context.Context, cfg config.MercadoPagoConfig, logg *logger.Logger) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		baseURL:       defaultBaseURL,
		accessToken:   token,
		currency:      strings.ToUpper(cfg.Currency),
		webhookSecret: cfg.WebhookSecret,
		logger:        logg,
	}
	if logg != nil {
		logg.Info(ctx, "mercadopago client initialized")
	}
	return c, nil
}

// WebhookSecret returns the shared secret for notification signatures. Empty
// means webhooks are not configured and incoming notifications must be
// rejected as a server misconfiguration.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// Payment is the subset of a payment resource callers need.
type Payment struct {
	ID      int64
	Status  string
	DraftID string
	// QRCode is the copy-paste Pix code, QRCodeBase64 the rendered image.
	QRCode       string
	QRCodeBase64 string
	Raw          json.RawMessage
}

// Approved reports whether the payment settled.
func (p *Payment) Approved() bool {
	return p != nil && strings.EqualFold(p.Status, "approved")
}

// CreateQRCharge opens a Pix payment with the draft id in external_reference
// and returns the QR payload for the client to render.
func (c *Client) CreateQRCharge(ctx context.Context, draftID string, amountCents int64, description, payerEmail string) (*Payment, error) {
	if strings.TrimSpace(draftID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id is required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	amount := decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100))
	body := map[string]any{
		"transaction_amount": amount.InexactFloat64(),
		"description":        description,
		"payment_method_id":  "pix",
		"external_reference": draftID,
		"payer":              map[string]any{"email": payerEmail},
	}

	raw, err := c.do(ctx, http.MethodPost, "/v1/payments", body)
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

// GetPayment fetches a payment by id. Used both for client status polling and
// for webhook verification, where the notification body is never trusted and
// the payment state is re-read from the API.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	raw, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode mercadopago request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build mercadopago request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mercadopago request").WithDetails(map[string]any{"provider": "mercadopago"})
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read mercadopago response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(resp.StatusCode, raw)
	}
	return raw, nil
}

func providerError(status int, raw []byte) error {
	var detail struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &detail)
	return pkgerrors.New(pkgerrors.CodeDependency, "mercadopago call failed").WithDetails(map[string]any{
		"provider":      "mercadopago",
		"provider_code": detail.Error,
		"provider_msg":  detail.Message,
		"http_status":   status,
	})
}

func decodePayment(raw json.RawMessage) (*Payment, error) {
	var parsed struct {
		ID                int64  `json:"id"`
		Status            string `json:"status"`
		ExternalReference string `json:"external_reference"`
		PointOfInteraction struct {
			TransactionData struct {
				QRCode       string `json:"qr_code"`
				QRCodeBase64 string `json:"qr_code_base64"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode mercadopago payment")
	}
	if parsed.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mercadopago payment missing id")
	}
	return &Payment{
		ID:           parsed.ID,
		Status:       parsed.Status,
		DraftID:      parsed.ExternalReference,
		QRCode:       parsed.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: parsed.PointOfInteraction.TransactionData.QRCodeBase64,
		Raw:          raw,
	}, nil
}

// PaymentRef formats a payment id the way it is stored on drafts.
func PaymentRef(id int64) string {
	return fmt.Sprintf("mp_%d", id)
}
